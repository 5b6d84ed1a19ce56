package inbound

import (
	"context"
	"strings"

	"github.com/Beebbbyy/order-metrics-api/internal/orderitem/entity"
	"github.com/Beebbbyy/order-metrics-api/internal/orderitem/usecase"
	"github.com/Beebbbyy/order-metrics-api/internal/pkg/pkgrouter"
)

type uc interface {
	Fetch(ctx context.Context, rawURL string) (usecase.FetchResult, error)
	Process(ctx context.Context, fileID string) (entity.Metrics, error)
}

// RegisterHTTPEndpoint mounts the order item routes under prefix.
func RegisterHTTPEndpoint(r *pkgrouter.Router, uc uc, prefix string) {
	prefix = strings.TrimRight(prefix, "/")
	end := &HTTPEndpoint{uc: uc, prefix: prefix}

	r.POST(prefix+"/upload", end.Upload)
	r.GET(prefix+"/uploads/:file_id/processing-stats", end.ProcessingStats)
}
