package lister

import (
	"errors"
	"fmt"
	"strings"

	"blogger-lister/internal/blogger"
)

var (
	ErrMissingKey       = errors.New("missing API key")
	ErrNotAuthenticated = errors.New("client not authenticated")
	ErrAuthFailed       = errors.New("authentication failed")
	ErrNotFound         = errors.New("blog id not found")
	ErrBlogNotFound     = errors.New("blog not found")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrResolveFailed    = errors.New("resolve failed")
	ErrListFailed       = errors.New("list failed")
	ErrPageLimit        = errors.New("page limit reached")
)

// Error is a classified failure. Message is what the user sees; Kind is one of
// the sentinel errors above and is matched with errors.Is.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// StatusCode returns the HTTP-like status carried by a remote error, or 0.
func StatusCode(err error) int {
	var apiErr *blogger.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

type messageExtractor func(error) string

// messageExtractors are tried in order; the first non-empty result wins.
var messageExtractors = []messageExtractor{
	detailsMessage,
	resultErrorMessage,
	plainMessage,
	stringified,
}

// ErrorMessage extracts the best user-facing text from err. It never
// returns an empty string for a non-nil error.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	for _, extract := range messageExtractors {
		if msg := strings.TrimSpace(extract(err)); msg != "" {
			return msg
		}
	}
	return "unknown error"
}

func detailsMessage(err error) string {
	var apiErr *blogger.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Details
	}
	return ""
}

func resultErrorMessage(err error) string {
	var apiErr *blogger.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

func plainMessage(err error) string {
	return err.Error()
}

func stringified(err error) string {
	return fmt.Sprintf("%#v", err)
}
