package domain

import "time"

// Config holds the full configuration for one run. It is loaded once at
// startup and passed by reference into the services; nothing mutates it
// after construction.
type Config struct {
	// Website
	BaseURL         string
	StartVideoID    int
	EndVideoID      int
	SeasonEpisodes  []int
	StartingSeason  int
	StartingEpisode int

	// Artifacts
	OutputPath string
	ReportPath string

	// Pacing and retries
	MinDelay             time.Duration
	MaxDelay             time.Duration
	RetryMinDelay        time.Duration
	RetryMaxDelay        time.Duration
	TimeoutRetryMinDelay time.Duration
	TimeoutRetryMaxDelay time.Duration
	RequestTimeout       time.Duration
	MaxRetries           int

	// Authentication
	AuthCookies map[string]string
	UserAgent   string

	// Extraction
	URLPatterns    []string
	TitleSelectors []string

	// Filenames
	FilenameFormat       string
	FilenameReplaceChars map[string]string

	// Debugging
	MinHTMLLength   int
	DebugHTML       bool
	DebugHTMLFormat string

	// Link-list consumers
	DownloadManager string
	DestinationPath string

	LogLevel string
}
