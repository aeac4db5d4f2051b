package blogger

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// APIError is a non-2xx response from a Google API.
type APIError struct {
	StatusCode int    // HTTP status of the response
	Code       int    // error.code from the body, falls back to StatusCode
	Status     string // error.status, e.g. INVALID_ARGUMENT
	Message    string // error.message
	Details    string // free text when the body was not a JSON error envelope
}

func (e *APIError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("blogger: status %d: %s", e.Code, e.Message)
	case e.Details != "":
		return fmt.Sprintf("blogger: status %d: %s", e.Code, e.Details)
	default:
		return fmt.Sprintf("blogger: status %d", e.Code)
	}
}

type errorEnvelope struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Errors  []struct {
			Message string `json:"message"`
			Reason  string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

const maxErrorBody = 64 << 10

func decodeAPIError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{StatusCode: resp.StatusCode, Code: resp.StatusCode}

	var env errorEnvelope
	if err := json.Unmarshal(b, &env); err == nil && env.Error != nil {
		if env.Error.Code != 0 {
			apiErr.Code = env.Error.Code
		}
		apiErr.Status = env.Error.Status
		apiErr.Message = env.Error.Message
		if apiErr.Message == "" && len(env.Error.Errors) > 0 {
			apiErr.Message = env.Error.Errors[0].Message
		}
		return apiErr
	}
	apiErr.Details = strings.TrimSpace(string(b))
	return apiErr
}
