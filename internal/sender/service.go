package sender

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/hktran/coursegrab/internal/domain"
)

// Service hands link-list entries to external consumers: a download-manager
// process, the system clipboard, or the default browser. All operations are
// pure consumers of the artifact; none of them modify it.
type Service interface {
	Dispatch(ctx context.Context, entries []domain.DownloadEntry) error
	CopyToClipboard(entries []domain.DownloadEntry) error
	OpenInBrowser(ctx context.Context, entries []domain.DownloadEntry) error
	List(w io.Writer, entries []domain.DownloadEntry)
}

type service struct {
	log         zerolog.Logger
	manager     string
	destination string

	// pluggable for tests
	runCommand func(ctx context.Context, name string, args ...string) error
	pauseFor   time.Duration
}

// NewService creates a sender for the configured download manager binary and
// destination directory.
func NewService(log zerolog.Logger, manager, destination string) Service {
	return &service{
		log:         log.With().Str("module", "sender").Logger(),
		manager:     manager,
		destination: destination,
		runCommand:  runCommand,
		pauseFor:    500 * time.Millisecond,
	}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// dispatchArgs builds the download-manager invocation for one entry:
// /d adds the URL, /f sets the output filename, /p the destination
// directory, /a queues without starting.
func dispatchArgs(entry domain.DownloadEntry, destination string) []string {
	return []string{"/d", entry.URL, "/f", entry.Filename, "/p", destination, "/a"}
}

// Dispatch queues every entry with the external download manager, then
// issues the final /s that starts the queue.
func (s *service) Dispatch(ctx context.Context, entries []domain.DownloadEntry) error {
	if len(entries) == 0 {
		return errors.New("no download entries to dispatch")
	}

	queued := 0
	for i, entry := range entries {
		if err := s.runCommand(ctx, s.manager, dispatchArgs(entry, s.destination)...); err != nil {
			if errors.Is(err, exec.ErrNotFound) {
				return errors.Wrapf(err, "download manager %q not found in PATH", s.manager)
			}
			s.log.Warn().Err(err).Str("filename", entry.Filename).Msg("failed to queue download")
			continue
		}
		queued++
		s.log.Info().Str("filename", entry.Filename).Msgf("queued %d/%d", i+1, len(entries))

		if err := s.pause(ctx); err != nil {
			return err
		}
	}

	if err := s.runCommand(ctx, s.manager, "/s"); err != nil {
		return errors.Wrap(err, "failed to start download queue")
	}

	s.log.Info().Int("queued", queued).Int("total", len(entries)).Msg("dispatch complete")
	return nil
}

// CopyToClipboard puts all URLs, newline-separated, on the system clipboard.
func (s *service) CopyToClipboard(entries []domain.DownloadEntry) error {
	if len(entries) == 0 {
		return errors.New("no download entries to copy")
	}
	if err := clipboard.WriteAll(clipboardText(entries)); err != nil {
		return errors.Wrap(err, "failed to copy links to clipboard")
	}
	s.log.Info().Int("count", len(entries)).Msg("links copied to clipboard")
	return nil
}

func clipboardText(entries []domain.DownloadEntry) string {
	var b strings.Builder
	for _, entry := range entries {
		b.WriteString(entry.URL)
		b.WriteString("\n")
	}
	return b.String()
}

// OpenInBrowser opens each URL in the default browser, pausing between tabs.
func (s *service) OpenInBrowser(ctx context.Context, entries []domain.DownloadEntry) error {
	if len(entries) == 0 {
		return errors.New("no download entries to open")
	}

	opened := 0
	for _, entry := range entries {
		name, args := browserCommand(entry.URL)
		if err := s.runCommand(ctx, name, args...); err != nil {
			s.log.Warn().Err(err).Str("url", entry.URL).Msg("failed to open in browser")
			continue
		}
		opened++

		if err := s.pause(ctx); err != nil {
			return err
		}
	}

	s.log.Info().Int("opened", opened).Int("total", len(entries)).Msg("browser open complete")
	return nil
}

// browserCommand returns the platform command that opens a URL in the
// default browser.
func browserCommand(url string) (string, []string) {
	switch runtime.GOOS {
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	case "darwin":
		return "open", []string{url}
	default:
		return "xdg-open", []string{url}
	}
}

// List prints a numbered (filename, url) listing.
func (s *service) List(w io.Writer, entries []domain.DownloadEntry) {
	fmt.Fprintf(w, "%d download links\n\n", len(entries))
	for i, entry := range entries {
		fmt.Fprintf(w, "%2d. %s\n    %s\n\n", i+1, entry.Filename, entry.URL)
	}
}

func (s *service) pause(ctx context.Context) error {
	if s.pauseFor <= 0 {
		return nil
	}
	timer := time.NewTimer(s.pauseFor)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
