package domain

import "context"

// LinkListRepository stores and loads the link-list artifact.
type LinkListRepository interface {
	StoreLinkList(ctx context.Context, path string, entries []DownloadEntry) error
	GetLinkList(ctx context.Context, path string) ([]DownloadEntry, error)
}

// ReportRepository stores diagnostic artifacts for a scrape run.
type ReportRepository interface {
	StoreReport(ctx context.Context, path string, report *ScrapeReport) error
	StoreDebugHTML(ctx context.Context, path string, body []byte) error
}
