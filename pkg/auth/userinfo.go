package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrymomot/webauth/pkg/profile"
)

// UserInfoFetcher reads a JSON user info document from url and builds a
// profile whose id is the idField member. Every top-level member becomes
// a profile attribute.
func UserInfoFetcher(url, idField string) ProfileFetcher {
	return ProfileFetcherFunc(func(ctx context.Context, client *http.Client) (*profile.Profile, error) {
		var doc map[string]any
		if err := getJSON(ctx, client, url, &doc); err != nil {
			return nil, err
		}

		id, ok := stringify(doc[idField])
		if !ok || id == "" {
			return nil, fmt.Errorf("%w: missing %q in user info", ErrProfileIncomplete, idField)
		}

		p := profile.New("", id)
		for k, v := range doc {
			p.SetAttribute(k, v)
		}
		return p, nil
	})
}

func getJSON(ctx context.Context, client *http.Client, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUserInfo, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUserInfo, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned status %d", ErrUserInfo, url, resp.StatusCode)
	}

	// Provider ids can exceed float64 precision.
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrUserInfo, err)
	}
	return nil
}

func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	default:
		return "", false
	}
}
