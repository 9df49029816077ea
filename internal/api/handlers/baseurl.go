package handlers

import (
	"net/http"
	"strings"
)

// RequestBaseURL returns the address clients use to reach the relay. A
// configured public URL wins; otherwise it is rebuilt from the request and
// any X-Forwarded-* headers set by a proxy in front of the relay.
func RequestBaseURL(r *http.Request, publicBaseURL string) string {
	if publicBaseURL != "" {
		return strings.TrimRight(publicBaseURL, "/")
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := firstHeaderValue(r, "X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(proto)
	}

	host := r.Host
	if fwd := firstHeaderValue(r, "X-Forwarded-Host"); fwd != "" {
		host = fwd
	}

	base := scheme + "://" + host
	if prefix := strings.Trim(firstHeaderValue(r, "X-Forwarded-Prefix"), "/"); prefix != "" {
		base += "/" + prefix
	}
	return base
}

// Proxies append to these headers; the first entry is the client-facing one.
func firstHeaderValue(r *http.Request, name string) string {
	v := r.Header.Get(name)
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}
