package scraper

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/hktran/coursegrab/internal/domain"
)

// VideoInfo holds the data extracted from one video page.
type VideoInfo struct {
	MediaURL string
	Title    string
}

// Extractor fetches a single video page and extracts the direct media URL
// and a sanitized title from it.
type Extractor interface {
	FetchVideo(ctx context.Context, videoID int) (*VideoInfo, error)
}

type extractor struct {
	log      zerolog.Logger
	cfg      *domain.Config
	client   *http.Client
	patterns []*regexp.Regexp
	repo     domain.ReportRepository
	retry    retrypolicy.RetryPolicy[*pageBody]
	rng      *rand.Rand
}

// pageBody is the outcome of one successful fetch attempt: the raw body plus
// the first media URL matched in it.
type pageBody struct {
	mediaURL string
	body     string
}

// NewExtractor compiles the configured URL patterns and builds the retry
// policy. Patterns match case-insensitively, in the configured order.
func NewExtractor(log zerolog.Logger, cfg *domain.Config, client *http.Client, repo domain.ReportRepository) (Extractor, error) {
	patterns := make([]*regexp.Regexp, 0, len(cfg.URLPatterns))
	for _, p := range cfg.URLPatterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid url pattern %q", p)
		}
		patterns = append(patterns, re)
	}

	e := &extractor{
		log:      log.With().Str("module", "extractor").Logger(),
		cfg:      cfg,
		client:   client,
		patterns: patterns,
		repo:     repo,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	e.retry = retrypolicy.NewBuilder[*pageBody]().
		WithMaxAttempts(cfg.MaxRetries).
		WithDelayFunc(e.retryDelay).
		OnRetry(func(ev failsafe.ExecutionEvent[*pageBody]) {
			e.log.Warn().Err(ev.LastError()).Int("attempt", ev.Attempts()).Msg("fetch failed, retrying")
		}).
		ReturnLastFailure().
		Build()

	return e, nil
}

// FetchVideo fetches the page for videoID with bounded retries and returns
// the media URL and sanitized title. Every failure kind (bad status, short
// body, no pattern match, timeout, transport error) retries with a jittered
// delay; a missing title does not, it degrades to a placeholder instead.
func (e *extractor) FetchVideo(ctx context.Context, videoID int) (*VideoInfo, error) {
	pageURL := fmt.Sprintf("%s%d", e.cfg.BaseURL, videoID)

	pg, err := failsafe.With[*pageBody](e.retry).
		WithContext(ctx).
		GetWithExecution(func(exec failsafe.Execution[*pageBody]) (*pageBody, error) {
			return e.fetchPage(exec.Context(), videoID, pageURL, exec.Attempts())
		})
	if err != nil {
		return nil, errors.Wrapf(err, "all %d attempts failed for video %d", e.cfg.MaxRetries, videoID)
	}

	title := e.extractTitle(pg.body)
	e.log.Debug().Int("video_id", videoID).Str("title", title).Msg("extracted video")
	return &VideoInfo{MediaURL: pg.mediaURL, Title: title}, nil
}

// fetchPage performs one attempt: GET, validate status and body length, then
// scan the body with the ordered URL patterns.
func (e *extractor) fetchPage(ctx context.Context, videoID int, pageURL string, attempt int) (*pageBody, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create request for video %d", videoID)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "request failed for video %d", videoID)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{VideoID: videoID, Code: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read body for video %d", videoID)
	}
	body := string(raw)

	if len(body) < e.cfg.MinHTMLLength {
		return nil, &PageTooShortError{VideoID: videoID, Length: len(body), Min: e.cfg.MinHTMLLength}
	}

	if attempt >= e.cfg.MaxRetries {
		e.saveDebugHTML(ctx, videoID, raw)
	}

	for _, re := range e.patterns {
		if m := re.FindString(body); m != "" {
			return &pageBody{mediaURL: m, body: body}, nil
		}
	}
	return nil, &MediaURLNotFoundError{VideoID: videoID}
}

// extractTitle tries the configured selectors in order and returns the first
// non-empty trimmed text, sanitized for filesystem use. Selector misses are
// not errors; the title falls back to a placeholder.
func (e *extractor) extractTitle(body string) string {
	title := domain.UnknownTitle
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err == nil {
		for _, selector := range e.cfg.TitleSelectors {
			if text := strings.TrimSpace(doc.Find(selector).First().Text()); text != "" {
				title = text
				break
			}
		}
	}
	return domain.SanitizeTitle(title, e.cfg.FilenameReplaceChars)
}

// retryDelay draws the backoff before the next attempt. Timeouts get the
// longer window; everything else gets the generic one.
func (e *extractor) retryDelay(exec failsafe.ExecutionAttempt[*pageBody]) time.Duration {
	if isTimeout(exec.LastError()) {
		return jitter(e.rng, e.cfg.TimeoutRetryMinDelay, e.cfg.TimeoutRetryMaxDelay)
	}
	return jitter(e.rng, e.cfg.RetryMinDelay, e.cfg.RetryMaxDelay)
}

func (e *extractor) saveDebugHTML(ctx context.Context, videoID int, body []byte) {
	if !e.cfg.DebugHTML {
		return
	}
	path := fmt.Sprintf(e.cfg.DebugHTMLFormat, videoID)
	if err := e.repo.StoreDebugHTML(ctx, path, body); err != nil {
		e.log.Error().Err(err).Str("path", path).Msg("failed to save debug HTML")
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// jitter draws a uniform random duration from [min, max].
func jitter(rng *rand.Rand, min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rng.Int63n(int64(max-min)))
}
