package auth

import (
	"fmt"
	"net/http"
	"net/url"
	"slices"
)

// ClientNameParameter is the callback query parameter naming the client.
const ClientNameParameter = "client_name"

// CallbackAware clients accept the callback URL computed by Clients.
type CallbackAware interface {
	SetCallbackURL(u string)
}

// Clients is the registry of configured clients sharing one callback URL.
type Clients struct {
	callbackURL string
	clients     map[string]Client
	names       []string
}

// NewClients registers clients under their names. Clients implementing
// CallbackAware get the shared callback URL with their name appended as
// the client_name parameter.
func NewClients(callbackURL string, clients ...Client) (*Clients, error) {
	r := &Clients{
		callbackURL: callbackURL,
		clients:     make(map[string]Client, len(clients)),
	}

	for _, c := range clients {
		if c == nil || c.Name() == "" {
			return nil, fmt.Errorf("%w: client without name", ErrInvalidClient)
		}
		name := c.Name()
		if _, ok := r.clients[name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateClient, name)
		}

		if ca, ok := c.(CallbackAware); ok && callbackURL != "" {
			u, err := r.CallbackURL(name)
			if err != nil {
				return nil, err
			}
			ca.SetCallbackURL(u)
		}

		r.clients[name] = c
		r.names = append(r.names, name)
	}

	return r, nil
}

// CallbackURL returns the callback URL for the named client.
func (r *Clients) CallbackURL(name string) (string, error) {
	u, err := url.Parse(r.callbackURL)
	if err != nil {
		return "", fmt.Errorf("%w: callback url: %w", ErrInvalidClient, err)
	}
	q := u.Query()
	q.Set(ClientNameParameter, name)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Find returns the client registered under name.
func (r *Clients) Find(name string) (Client, error) {
	c, ok := r.clients[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrClientNotFound, name)
	}
	return c, nil
}

// FindFromRequest returns the client named by the client_name parameter.
func (r *Clients) FindFromRequest(req *http.Request) (Client, error) {
	return r.Find(req.URL.Query().Get(ClientNameParameter))
}

// Names lists registered client names in registration order.
func (r *Clients) Names() []string {
	return slices.Clone(r.names)
}
