package inbound

import (
	"net/http"

	"github.com/Beebbbyy/order-metrics-api/internal/orderitem/entity"
)

// uploadedAtLayout renders UTC instants with microseconds and a trailing Z.
const uploadedAtLayout = "2006-01-02T15:04:05.000000Z"

type UploadRequest struct {
	URL string `json:"url"`
}

type UploadResponse struct {
	FileID  string `json:"file_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (UploadResponse) StatusCode() int {
	return http.StatusCreated
}

type ProcessingStatsResponse struct {
	UploadedAt string    `json:"uploaded_at"`
	Durations  Durations `json:"durations"`
	Rows       Rows      `json:"rows"`
	Outcome    Outcome   `json:"outcome"`
}

type Durations struct {
	DownloadSeconds   int64              `json:"download_seconds"`
	ProcessingSeconds int64              `json:"processing_seconds"`
	TotalSeconds      int64              `json:"total_seconds"`
	Formatted         FormattedDurations `json:"formatted"`
}

type FormattedDurations struct {
	Download   string `json:"download"`
	Processing string `json:"processing"`
}

type Rows struct {
	Total          int64 `json:"total"`
	Blank          int64 `json:"blank"`
	Malformed      int64 `json:"malformed"`
	EncodingErrors int64 `json:"encoding_errors"`
	Duplicated     int64 `json:"duplicated"`
	Sanitised      int64 `json:"sanitised"`
	Valid          int64 `json:"valid"`
	Usable         int64 `json:"usable"`
}

type Outcome struct {
	Accepted int64 `json:"accepted"`
	Rejected int64 `json:"rejected"`
}

func toProcessingStats(m entity.Metrics) ProcessingStatsResponse {
	return ProcessingStatsResponse{
		UploadedAt: m.UploadedAt.UTC().Format(uploadedAtLayout),
		Durations: Durations{
			DownloadSeconds:   m.Durations.DownloadSeconds,
			ProcessingSeconds: m.Durations.ProcessingSeconds,
			TotalSeconds:      m.Durations.TotalSeconds,
			Formatted: FormattedDurations{
				Download:   m.Durations.FormattedDownload,
				Processing: m.Durations.FormattedProcessing,
			},
		},
		Rows: Rows{
			Total:          m.Rows.Total,
			Blank:          m.Rows.Blank,
			Malformed:      m.Rows.Malformed,
			EncodingErrors: m.Rows.EncodingErrors,
			Duplicated:     m.Rows.Duplicated,
			Sanitised:      m.Rows.Sanitised,
			Valid:          m.Rows.Valid,
			Usable:         m.Rows.Usable,
		},
		Outcome: Outcome{
			Accepted: m.Outcome.Accepted,
			Rejected: m.Outcome.Rejected,
		},
	}
}
