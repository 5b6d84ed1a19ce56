package usecase

import (
	"fmt"
	"time"

	"github.com/Beebbbyy/order-metrics-api/internal/orderitem/entity"
)

const zeroClock = "00:00:00"

// BuildMetrics assembles the report for one processing run. Download timings
// come from upload when it is known and default to zero otherwise.
func BuildMetrics(now time.Time, cleaned entity.Dataset, stats entity.CleaningStats, processing time.Duration, upload *entity.Upload) entity.Metrics {
	total := int64(len(cleaned.Rows))

	downloadSeconds := int64(0)
	formattedDownload := zeroClock
	if upload != nil {
		downloadSeconds = upload.DownloadSeconds
		formattedDownload = upload.FormattedDownload
		if formattedDownload == "" {
			formattedDownload = FormatClock(time.Duration(downloadSeconds) * time.Second)
		}
	}

	processingSeconds := wholeSeconds(processing)

	return entity.Metrics{
		UploadedAt: now.UTC(),
		Durations: entity.Durations{
			DownloadSeconds:     downloadSeconds,
			ProcessingSeconds:   processingSeconds,
			TotalSeconds:        downloadSeconds + processingSeconds,
			FormattedDownload:   formattedDownload,
			FormattedProcessing: FormatClock(processing),
		},
		Rows: entity.RowCounts{
			Total:          total,
			Blank:          stats.BlankRows,
			Malformed:      stats.MalformedRows,
			EncodingErrors: 0,
			Duplicated:     stats.DuplicatedCount,
			Sanitised:      stats.SanitisedCount,
			Valid:          total,
			Usable:         total,
		},
		Outcome: entity.Outcome{
			Accepted: total,
			Rejected: 0,
		},
	}
}

// FormatClock renders d as HH:MM:SS on a 24-hour clock. Durations of a day
// or more wrap around.
func FormatClock(d time.Duration) string {
	secs := wholeSeconds(d) % int64(24*time.Hour/time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
}

func wholeSeconds(d time.Duration) int64 {
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}
