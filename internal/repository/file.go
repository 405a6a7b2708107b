package repository

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/hktran/coursegrab/internal/domain"
)

// FileRepository implements domain.LinkListRepository and
// domain.ReportRepository using flat-file storage.
type FileRepository struct {
	log zerolog.Logger
}

// NewFileRepository creates a new file-based repository
func NewFileRepository(log zerolog.Logger) *FileRepository {
	return &FileRepository{
		log: log.With().Str("module", "repository").Logger(),
	}
}

// Ensure FileRepository implements both interfaces
var _ domain.LinkListRepository = (*FileRepository)(nil)
var _ domain.ReportRepository = (*FileRepository)(nil)

// StoreLinkList writes the link-list artifact: one block per entry, the
// media URL followed by an indented out= line and a blank separator line.
func (r *FileRepository) StoreLinkList(ctx context.Context, path string, entries []domain.DownloadEntry) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer f.Close()

	var b strings.Builder
	for _, entry := range entries {
		b.WriteString(entry.URL)
		b.WriteString("\n  out=")
		b.WriteString(entry.Filename)
		b.WriteString("\n\n")
	}

	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("failed to write to file %s: %w", path, err)
	}

	r.log.Debug().Str("path", path).Int("count", len(entries)).Msg("stored link list")
	return nil
}

// GetLinkList parses the artifact back into (url, filename) pairs. Lines are
// whitespace-trimmed; an out= line binds to the most recent URL line, so the
// indentation the writer emits is optional on read.
func (r *FileRepository) GetLinkList(ctx context.Context, path string) ([]domain.DownloadEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer f.Close()

	var entries []domain.DownloadEntry
	currentURL := ""

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case strings.HasPrefix(line, "out="):
			if currentURL != "" {
				entries = append(entries, domain.DownloadEntry{
					URL:      currentURL,
					Filename: strings.TrimPrefix(line, "out="),
				})
				currentURL = ""
			}
		default:
			currentURL = line
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	r.log.Debug().Str("path", path).Int("count", len(entries)).Msg("loaded link list")
	return entries, nil
}

// StoreReport saves the YAML run report.
func (r *FileRepository) StoreReport(ctx context.Context, path string, report *domain.ScrapeReport) error {
	b, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(b); err != nil {
		return fmt.Errorf("failed to write to file %s: %w", path, err)
	}

	r.log.Debug().Str("path", path).Msg("stored scrape report")
	return nil
}

// StoreDebugHTML saves a raw page body for diagnostics.
func (r *FileRepository) StoreDebugHTML(ctx context.Context, path string, body []byte) error {
	if err := os.WriteFile(path, body, 0644); err != nil {
		return fmt.Errorf("failed to write debug HTML %s: %w", path, err)
	}
	r.log.Debug().Str("path", path).Int("bytes", len(body)).Msg("stored debug HTML")
	return nil
}
