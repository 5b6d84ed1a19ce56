package entity

import "time"

// Upload is recorded once, when a file has been downloaded and persisted.
type Upload struct {
	ID                string
	FilePath          string
	DownloadSeconds   int64
	FormattedDownload string
	CreatedAt         time.Time
}

// Entry is everything the store knows about one file identifier.
// Either side may be absent: processing is allowed without a prior upload.
type Entry struct {
	ID      string
	Upload  *Upload
	Metrics *Metrics
}
