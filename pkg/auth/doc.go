// Package auth defines authentication clients and the registry the
// authentication flow looks them up in.
//
// A Client sends the user to an identity provider and turns the callback
// into a *profile.Profile. Anything a client needs to keep between those
// two requests goes through the StateStore carried by the WebContext,
// which is the session-scoped surface of the storage package.
//
// OAuth2Client is the bundled implementation. It delegates the protocol to
// golang.org/x/oauth2 and maps a user info document to a profile:
//
//	conf := &oauth2.Config{ClientID: id, ClientSecret: secret, Endpoint: github.Endpoint}
//	gh := auth.NewOAuth2Client("github", conf, auth.GitHubFetcher(""))
//	clients, err := auth.NewClients("https://app.example.com/auth/callback", gh)
//
// Clients can also be declared in YAML and loaded with LoadClients:
//
//	clients:
//	  - name: google
//	    provider: google
//	    client_id: ${GOOGLE_CLIENT_ID}
//	    client_secret: ${GOOGLE_CLIENT_SECRET}
//	    scopes: [openid, email]
//
// When a login cannot proceed with a redirect, clients return an
// *ActionError carrying the HTTP response to send instead.
package auth
