package session

import (
	"errors"
	"net/http"
	"time"
)

// CompositeTransport reads from the first transport that has a payload and
// writes through all of them. Typical use is header first, cookie second.
type CompositeTransport struct {
	transports []Transport
}

func NewCompositeTransport(transports ...Transport) *CompositeTransport {
	return &CompositeTransport{transports: transports}
}

func (t *CompositeTransport) GetToken(r *http.Request) (string, error) {
	for _, tr := range t.transports {
		if token, err := tr.GetToken(r); err == nil && token != "" {
			return token, nil
		}
	}
	return "", ErrSessionNotFound
}

func (t *CompositeTransport) SetToken(w http.ResponseWriter, token string, ttl time.Duration) error {
	var errs []error
	for _, tr := range t.transports {
		errs = append(errs, tr.SetToken(w, token, ttl))
	}
	return errors.Join(errs...)
}

func (t *CompositeTransport) ClearToken(w http.ResponseWriter) error {
	var errs []error
	for _, tr := range t.transports {
		errs = append(errs, tr.ClearToken(w))
	}
	return errors.Join(errs...)
}
