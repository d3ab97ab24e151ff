package auth

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"github.com/dmitrymomot/webauth/pkg/profile"
)

// Provider names understood by NewClientFromConfig.
const (
	ProviderGoogle  = "google"
	ProviderGitHub  = "github"
	ProviderGeneric = "oauth2"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	githubAPIURL      = "https://api.github.com"
)

// GoogleFetcher reads the Google user info endpoint.
func GoogleFetcher() ProfileFetcher {
	return UserInfoFetcher(googleUserInfoURL, "id")
}

// GitHubFetcher reads the GitHub user and, when the user hides it, picks
// the primary verified address from the emails endpoint.
// apiURL defaults to https://api.github.com.
func GitHubFetcher(apiURL string) ProfileFetcher {
	if apiURL == "" {
		apiURL = githubAPIURL
	}
	apiURL = strings.TrimSuffix(apiURL, "/")
	user := UserInfoFetcher(apiURL+"/user", "id")

	return ProfileFetcherFunc(func(ctx context.Context, client *http.Client) (*profile.Profile, error) {
		p, err := user.FetchProfile(ctx, client)
		if err != nil {
			return nil, err
		}
		if email, ok := p.StringAttribute("email"); ok && email != "" {
			return p, nil
		}

		var emails []ghEmail
		if err := getJSON(ctx, client, apiURL+"/user/emails", &emails); err != nil {
			return nil, err
		}
		if email, ok := pickGitHubEmail(emails); ok {
			p.SetAttribute("email", email)
			p.SetAttribute("email_verified", true)
		}
		return p, nil
	})
}

type ghEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func pickGitHubEmail(emails []ghEmail) (string, bool) {
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, true
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email, true
		}
	}
	return "", false
}

// NewClientFromConfig builds an OAuth2 client for one configured provider.
func NewClientFromConfig(cfg ClientConfig, opts ...OAuth2Option) (*OAuth2Client, error) {
	if cfg.Name == "" || cfg.ClientID == "" {
		return nil, ErrInvalidClient
	}

	conf := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       cfg.Scopes,
	}

	var fetcher ProfileFetcher
	switch strings.ToLower(cfg.Provider) {
	case ProviderGoogle:
		conf.Endpoint = google.Endpoint
		fetcher = GoogleFetcher()
		opts = append([]OAuth2Option{WithAuthCodeOptions(oauth2.AccessTypeOffline)}, opts...)
	case ProviderGitHub:
		conf.Endpoint = github.Endpoint
		fetcher = GitHubFetcher(cfg.UserInfoURL)
	case ProviderGeneric, "":
		if cfg.AuthURL == "" || cfg.TokenURL == "" || cfg.UserInfoURL == "" {
			return nil, ErrInvalidClient
		}
		idField := cfg.IDField
		if idField == "" {
			idField = "sub"
		}
		fetcher = UserInfoFetcher(cfg.UserInfoURL, idField)
	default:
		return nil, ErrUnknownProvider
	}

	if cfg.AuthURL != "" {
		conf.Endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		conf.Endpoint.TokenURL = cfg.TokenURL
	}

	return NewOAuth2Client(cfg.Name, conf, fetcher, opts...), nil
}
