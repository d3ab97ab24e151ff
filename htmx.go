package webauth

import "net/http"

// HTMX header names
const (
	HXRequest    = "HX-Request"
	HXBoosted    = "HX-Boosted"
	HXCurrentURL = "HX-Current-URL"
	HXRedirect   = "HX-Redirect"
)

// IsHTMX checks if the request is an HTMX request
func IsHTMX(r *http.Request) bool {
	return r.Header.Get(HXRequest) == "true"
}

// IsHTMXBoosted checks if the request is an HTMX boosted request.
// Boosted requests are regular navigations and can follow redirects.
func IsHTMXBoosted(r *http.Request) bool {
	return r.Header.Get(HXBoosted) == "true"
}

// HTMXCurrentURL returns the URL the browser was on when it issued the request
func HTMXCurrentURL(r *http.Request) string {
	return r.Header.Get(HXCurrentURL)
}
