package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Beebbbyy/order-metrics-api/internal/pkg/pkgerror"
	"github.com/Beebbbyy/order-metrics-api/internal/pkg/pkgrouter"
	"github.com/Beebbbyy/order-metrics-api/internal/pkg/pkguid"
)

const maxRequestBodyBytes = 1 << 20

type HTTPEndpoint struct {
	uc     uc
	prefix string
}

func (h *HTTPEndpoint) Upload(ctx context.Context, r *http.Request) (any, error) {
	var req UploadRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.URL) == "" {
		return nil, pkgerror.NewInvalidInput(errors.New("url is required"))
	}

	result, err := h.uc.Fetch(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	return UploadResponse{
		FileID: result.FileID,
		Status: "uploaded",
		Message: fmt.Sprintf(
			"File uploaded successfully. Use %s/uploads/%s/processing-stats to get stats.",
			h.prefix, result.FileID,
		),
	}, nil
}

func (h *HTTPEndpoint) ProcessingStats(ctx context.Context, r *http.Request) (any, error) {
	fileID, err := pkguid.Canonical(pkgrouter.GetParam(ctx, "file_id"))
	if err != nil {
		return nil, pkgerror.NewInvalidInput(errors.New("file_id must be a valid UUID"))
	}

	metrics, err := h.uc.Process(ctx, fileID)
	if err != nil {
		return nil, err
	}

	return toProcessingStats(metrics), nil
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return pkgerror.NewInvalidFormat()
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return pkgerror.NewInvalidFormat()
	}

	return nil
}
