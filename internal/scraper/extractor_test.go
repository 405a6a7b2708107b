package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hktran/coursegrab/internal/domain"
)

// testConfig returns a config pointed at the test server with millisecond
// retry windows so exhaustion tests stay fast.
func testConfig(serverURL string) *domain.Config {
	return &domain.Config{
		BaseURL:              serverURL + "/panel/video/",
		MaxRetries:           3,
		MinHTMLLength:        20,
		RetryMinDelay:        time.Millisecond,
		RetryMaxDelay:        2 * time.Millisecond,
		TimeoutRetryMinDelay: time.Millisecond,
		TimeoutRetryMaxDelay: 2 * time.Millisecond,
		RequestTimeout:       5 * time.Second,
		UserAgent:            "coursegrab-test",
		AuthCookies:          map[string]string{"token": "abc123"},
		URLPatterns:          []string{`https://media\.example\.com/[^"\s]+\.mp4`},
		TitleSelectors:       []string{".video-title", "h1"},
		FilenameReplaceChars: map[string]string{
			":": "_", "/": "_", "?": "_", "|": "_",
		},
		DebugHTMLFormat: "debug_%d.html",
	}
}

type stubReportRepo struct {
	debugPaths []string
}

func (s *stubReportRepo) StoreReport(ctx context.Context, path string, report *domain.ScrapeReport) error {
	return nil
}

func (s *stubReportRepo) StoreDebugHTML(ctx context.Context, path string, body []byte) error {
	s.debugPaths = append(s.debugPaths, path)
	return nil
}

func newTestExtractor(t *testing.T, cfg *domain.Config, repo domain.ReportRepository) Extractor {
	t.Helper()
	if repo == nil {
		repo = &stubReportRepo{}
	}
	ext, err := NewExtractor(zerolog.Nop(), cfg, NewHTTPClient(cfg), repo)
	if err != nil {
		t.Fatalf("NewExtractor() error: %v", err)
	}
	return ext
}

// pageHTML pads the body past the minimum-length check.
func pageHTML(inner string) string {
	return "<html><body>" + inner + strings.Repeat("<!-- pad -->", 5) + "</body></html>"
}

func TestExtractor_FetchVideo_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pageHTML(`<h1> Goroutines: The Basics </h1>
			<video src="https://media.example.com/s6/e01.mp4"></video>`))
	}))
	defer server.Close()

	ext := newTestExtractor(t, testConfig(server.URL), nil)

	info, err := ext.FetchVideo(context.Background(), 5627)
	if err != nil {
		t.Fatalf("FetchVideo() error: %v", err)
	}
	if info.MediaURL != "https://media.example.com/s6/e01.mp4" {
		t.Errorf("MediaURL = %q, want the mp4 asset URL", info.MediaURL)
	}
	if info.Title != "Goroutines_ The Basics" {
		t.Errorf("Title = %q, want sanitized %q", info.Title, "Goroutines_ The Basics")
	}
}

func TestExtractor_FetchVideo_RequestShape(t *testing.T) {
	var gotPath, gotUA, gotCookie string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		if c, err := r.Cookie("token"); err == nil {
			gotCookie = c.Value
		}
		fmt.Fprint(w, pageHTML(`https://media.example.com/a.mp4`))
	}))
	defer server.Close()

	ext := newTestExtractor(t, testConfig(server.URL), nil)
	if _, err := ext.FetchVideo(context.Background(), 42); err != nil {
		t.Fatalf("FetchVideo() error: %v", err)
	}

	if gotPath != "/panel/video/42" {
		t.Errorf("request path = %q, want %q", gotPath, "/panel/video/42")
	}
	if gotUA != "coursegrab-test" {
		t.Errorf("User-Agent = %q, want %q", gotUA, "coursegrab-test")
	}
	if gotCookie != "abc123" {
		t.Errorf("token cookie = %q, want %q", gotCookie, "abc123")
	}
}

func TestExtractor_FetchVideo_PatternPriority(t *testing.T) {
	// The first pattern matches nothing; the second matches twice. The
	// returned URL must be the second pattern's first match.
	body := pageHTML(`<a href="https://cdn-b.example.com/second.mp4">alt</a>
		<a href="https://cdn-b.example.com/third.mp4">alt2</a>`)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.URLPatterns = []string{
		`https://cdn-a\.example\.com/[^"\s]+\.mp4`,
		`https://cdn-b\.example\.com/[^"\s]+\.mp4`,
	}
	ext := newTestExtractor(t, cfg, nil)

	info, err := ext.FetchVideo(context.Background(), 1)
	if err != nil {
		t.Fatalf("FetchVideo() error: %v", err)
	}
	if info.MediaURL != "https://cdn-b.example.com/second.mp4" {
		t.Errorf("MediaURL = %q, want the second pattern's first match", info.MediaURL)
	}
}

func TestExtractor_FetchVideo_RetryExhaustion_ShortBody(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		fmt.Fprint(w, "tiny")
	}))
	defer server.Close()

	ext := newTestExtractor(t, testConfig(server.URL), nil)

	_, err := ext.FetchVideo(context.Background(), 7)
	if err == nil {
		t.Fatal("FetchVideo() succeeded on a permanently short page")
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("server saw %d attempts, want exactly 3", got)
	}
	if !errors.Is(err, &PageTooShortError{}) {
		t.Errorf("error = %v, want PageTooShortError", err)
	}
}

func TestExtractor_FetchVideo_RetryThenSuccess(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			fmt.Fprint(w, "tiny")
			return
		}
		fmt.Fprint(w, pageHTML(`https://media.example.com/ok.mp4`))
	}))
	defer server.Close()

	ext := newTestExtractor(t, testConfig(server.URL), nil)

	info, err := ext.FetchVideo(context.Background(), 7)
	if err != nil {
		t.Fatalf("FetchVideo() error after recovery: %v", err)
	}
	if info.MediaURL != "https://media.example.com/ok.mp4" {
		t.Errorf("MediaURL = %q, want the recovered URL", info.MediaURL)
	}
	if got := atomic.LoadInt32(&attempts); got != 2 {
		t.Errorf("server saw %d attempts, want 2", got)
	}
}

func TestExtractor_FetchVideo_BadStatus(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ext := newTestExtractor(t, testConfig(server.URL), nil)

	_, err := ext.FetchVideo(context.Background(), 9)
	if err == nil {
		t.Fatal("FetchVideo() succeeded on a 503 page")
	}
	if !errors.Is(err, &StatusError{}) {
		t.Errorf("error = %v, want StatusError", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("server saw %d attempts, want 3", got)
	}
}

func TestExtractor_FetchVideo_NoMediaURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pageHTML(`<h1>A page without any video asset</h1>`))
	}))
	defer server.Close()

	ext := newTestExtractor(t, testConfig(server.URL), nil)

	_, err := ext.FetchVideo(context.Background(), 11)
	if err == nil {
		t.Fatal("FetchVideo() succeeded with no pattern match")
	}
	if !errors.Is(err, &MediaURLNotFoundError{}) {
		t.Errorf("error = %v, want MediaURLNotFoundError", err)
	}
}

func TestExtractor_FetchVideo_TitleFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pageHTML(`<p>https://media.example.com/untitled.mp4</p>`))
	}))
	defer server.Close()

	ext := newTestExtractor(t, testConfig(server.URL), nil)

	info, err := ext.FetchVideo(context.Background(), 13)
	if err != nil {
		t.Fatalf("FetchVideo() error: %v", err)
	}
	if info.Title != domain.UnknownTitle {
		t.Errorf("Title = %q, want the %q placeholder", info.Title, domain.UnknownTitle)
	}
}

func TestExtractor_FetchVideo_TitleSelectorOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pageHTML(`<h1>Fallback Heading</h1>
			<div class="video-title">Preferred Title</div>
			<p>https://media.example.com/t.mp4</p>`))
	}))
	defer server.Close()

	ext := newTestExtractor(t, testConfig(server.URL), nil)

	info, err := ext.FetchVideo(context.Background(), 14)
	if err != nil {
		t.Fatalf("FetchVideo() error: %v", err)
	}
	if info.Title != "Preferred Title" {
		t.Errorf("Title = %q, want the first selector's text", info.Title)
	}
}

func TestExtractor_FetchVideo_DebugHTMLOnFinalAttempt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Long enough to pass validation but never matches a pattern, so
		// every attempt fails and the last one triggers the debug artifact.
		fmt.Fprint(w, pageHTML(`<h1>no asset here</h1>`))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.DebugHTML = true
	repo := &stubReportRepo{}
	ext := newTestExtractor(t, cfg, repo)

	if _, err := ext.FetchVideo(context.Background(), 77); err == nil {
		t.Fatal("FetchVideo() succeeded with no pattern match")
	}
	if len(repo.debugPaths) != 1 {
		t.Fatalf("debug HTML saved %d times, want once (final attempt only)", len(repo.debugPaths))
	}
	if repo.debugPaths[0] != "debug_77.html" {
		t.Errorf("debug path = %q, want %q", repo.debugPaths[0], "debug_77.html")
	}
}

func TestNewExtractor_InvalidPattern(t *testing.T) {
	cfg := testConfig("http://unused")
	cfg.URLPatterns = []string{`https://ok\.example\.com/.+`, `(`}

	_, err := NewExtractor(zerolog.Nop(), cfg, NewHTTPClient(cfg), &stubReportRepo{})
	if err == nil {
		t.Fatal("NewExtractor() accepted an invalid regexp")
	}
}
