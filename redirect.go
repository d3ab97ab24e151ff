package webauth

import (
	"net/http"
	"strings"
)

// IsAJAX reports whether the request was issued by script and cannot
// follow a login redirect by itself. HTMX and DataStar requests count,
// except boosted HTMX navigations.
func IsAJAX(r *http.Request) bool {
	if IsHTMX(r) {
		return !IsHTMXBoosted(r)
	}
	if IsDataStar(r) {
		return true
	}
	if strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest") {
		return true
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

// Redirect sends the client to url the way it can follow:
// DataStar gets an SSE redirect, HTMX gets HX-Redirect with 200,
// everything else a 302.
func Redirect(w http.ResponseWriter, r *http.Request, url string) error {
	switch {
	case IsDataStar(r):
		return dataStarRedirect(w, r, url)
	case IsHTMX(r):
		w.Header().Set(HXRedirect, url)
		w.WriteHeader(http.StatusOK)
		return nil
	default:
		http.Redirect(w, r, url, http.StatusFound)
		return nil
	}
}
