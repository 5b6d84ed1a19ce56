package usecase

import (
	"errors"
	"fmt"

	"github.com/Beebbbyy/order-metrics-api/internal/pkg/pkgerror"
)

// FetchError reports that a remote file could not be downloaded or written to storage.
// Its message is the underlying transport or filesystem error.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NotFoundError reports that no file has been persisted for an identifier.
type NotFoundError struct {
	FileID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no file stored for %s", e.FileID)
}

// ParseError reports that a persisted file is not readable as delimited text.
type ParseError struct {
	FileID string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to read CSV: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

const processFailurePrefix = "File not found or cannot be processed: "

// toPkgError maps the usecase error taxonomy onto application error codes.
func toPkgError(err error) error {
	var (
		fetchErr    *FetchError
		notFoundErr *NotFoundError
		parseErr    *ParseError
		perr        *pkgerror.Error
	)

	switch {
	case errors.As(err, &perr):
		return perr
	case errors.As(err, &fetchErr):
		return pkgerror.NewBusinessErr(err, fetchErr.Error(), pkgerror.CodeBadRequest)
	case errors.As(err, &notFoundErr):
		return pkgerror.NewBusinessErr(err, processFailurePrefix+notFoundErr.Error(), pkgerror.CodeNotFound)
	case errors.As(err, &parseErr):
		return pkgerror.NewBusinessErr(err, processFailurePrefix+parseErr.Error(), pkgerror.CodeNotFound)
	default:
		return pkgerror.NewServer(err)
	}
}
