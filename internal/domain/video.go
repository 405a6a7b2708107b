package domain

import "time"

// VideoRecord is one successfully extracted video.
type VideoRecord struct {
	VideoID  int    `json:"video_id"`
	Season   int    `json:"season"`
	Episode  int    `json:"episode"`
	MediaURL string `json:"url"`
	Title    string `json:"title"`
	Filename string `json:"filename"`
}

// DownloadEntry is one (url, filename) pair of the link-list artifact.
type DownloadEntry struct {
	URL      string
	Filename string
}

// FailedVideo records one identifier that was skipped after retry exhaustion.
// Season and episode hold the cursor position the identifier occupied.
type FailedVideo struct {
	VideoID int    `yaml:"video_id"`
	Season  int    `yaml:"season"`
	Episode int    `yaml:"episode"`
	Reason  string `yaml:"reason"`
}

// ScrapeSummary is the in-memory outcome of one scrape run.
type ScrapeSummary struct {
	RunID      string
	Records    []VideoRecord
	Failed     []FailedVideo
	StartedAt  time.Time
	FinishedAt time.Time
}

// Entries returns the (url, filename) pairs of the accumulated records in
// insertion order.
func (s *ScrapeSummary) Entries() []DownloadEntry {
	entries := make([]DownloadEntry, 0, len(s.Records))
	for _, r := range s.Records {
		entries = append(entries, DownloadEntry{URL: r.MediaURL, Filename: r.Filename})
	}
	return entries
}

// Report converts the summary into the persisted run report.
func (s *ScrapeSummary) Report(cfg *Config) *ScrapeReport {
	return &ScrapeReport{
		RunID:        s.RunID,
		StartedAt:    s.StartedAt,
		FinishedAt:   s.FinishedAt,
		StartVideoID: cfg.StartVideoID,
		EndVideoID:   cfg.EndVideoID,
		Processed:    len(s.Records) + len(s.Failed),
		Extracted:    len(s.Records),
		Failed:       s.Failed,
	}
}

// ScrapeReport is the YAML run report written next to the link list.
type ScrapeReport struct {
	RunID        string        `yaml:"run_id"`
	StartedAt    time.Time     `yaml:"started_at"`
	FinishedAt   time.Time     `yaml:"finished_at"`
	StartVideoID int           `yaml:"start_video_id"`
	EndVideoID   int           `yaml:"end_video_id"`
	Processed    int           `yaml:"processed"`
	Extracted    int           `yaml:"extracted"`
	Failed       []FailedVideo `yaml:"failed,omitempty"`
}
