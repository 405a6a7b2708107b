package scraper

import (
	"net/http"

	"github.com/hktran/coursegrab/internal/domain"
)

// authTransport injects the configured auth cookies and browser-mimicking
// headers on every request.
type authTransport struct {
	Transport http.RoundTripper
	Cookies   map[string]string
	UserAgent string
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Transport == nil {
		t.Transport = http.DefaultTransport
	}
	req.Header.Set("User-Agent", t.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	for name, value := range t.Cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	return t.Transport.RoundTrip(req)
}

// NewHTTPClient builds the HTTP client owned by the extractor. The base
// transport clones http.DefaultTransport to preserve its connection pooling
// settings.
func NewHTTPClient(cfg *domain.Config) *http.Client {
	base := http.DefaultTransport.(*http.Transport).Clone()
	return &http.Client{
		Timeout: cfg.RequestTimeout,
		Transport: &authTransport{
			Transport: base,
			Cookies:   cfg.AuthCookies,
			UserAgent: cfg.UserAgent,
		},
	}
}
