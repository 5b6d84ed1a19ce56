package entity

import "time"

type Metrics struct {
	UploadedAt time.Time
	Durations  Durations
	Rows       RowCounts
	Outcome    Outcome
}

type Durations struct {
	DownloadSeconds     int64
	ProcessingSeconds   int64
	TotalSeconds        int64
	FormattedDownload   string
	FormattedProcessing string
}

type RowCounts struct {
	Total          int64
	Blank          int64
	Malformed      int64
	EncodingErrors int64
	Duplicated     int64
	Sanitised      int64
	Valid          int64
	Usable         int64
}

type Outcome struct {
	Accepted int64
	Rejected int64
}

// CleaningStats describes how a single cleaning pass altered a dataset.
type CleaningStats struct {
	BlankRows       int64
	DuplicatedCount int64
	SanitisedCount  int64
	MalformedRows   int64
}
