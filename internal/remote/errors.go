package remote

import (
	"errors"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// Machine-readable error codes returned by the document service.
const (
	CodeInvalidParameter = "INVALID_PARAMETER"
	CodeTooManyBlocks    = "TOO_MANY_BLOCKS"
	CodeTooManyChildren  = "TOO_MANY_CHILDREN"
	CodeRateLimited      = "RATE_LIMITED"
	CodePermissionDenied = "PERMISSION_DENIED"
)

var (
	ErrMissingCredentials = errors.New("remote: app id and secret are required")
	ErrMissingBaseURL     = errors.New("remote: base url is required")
	ErrMissingDocumentID  = errors.New("remote: response carried no document id")
)

// APIError carries full diagnostic context for a failed API call: enough to
// tell a configuration mistake from a transient server issue from a
// permanent rejection.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Code       string
	Message    string
	// RetryAfter is the server-supplied rate-limit reset hint, zero when
	// the server sent none.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("remote: %s %s failed: status=%d code=%s message=%s",
		e.Method, e.URL, e.StatusCode, e.Code, e.Message)
}

// IsRateLimited reports whether the call failed on throttling.
func (e *APIError) IsRateLimited() bool {
	return e.Code == CodeRateLimited || e.StatusCode == 429
}

// IsPermissionDenied reports whether the caller lacks access.
func (e *APIError) IsPermissionDenied() bool {
	return e.Code == CodePermissionDenied || e.StatusCode == 403
}

// RateLimitHint extracts the server reset hint from err, if err is a
// rate-limited APIError carrying one.
func RateLimitHint(err error) (time.Duration, bool) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return 0, false
	}
	if !apiErr.IsRateLimited() {
		return 0, false
	}
	return apiErr.RetryAfter, true
}

// IsRetryable reports whether err is worth retrying: rate limits and
// transport-level failures retry, any other API rejection is permanent.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsRateLimited()
	}
	// Non-API errors at this layer are transport failures.
	return true
}

func wrapAPIError(apiErr *APIError) error {
	category := goerrors.CategoryExternal
	switch {
	case apiErr.IsRateLimited():
		category = goerrors.CategoryRateLimit
	case apiErr.Code == CodeInvalidParameter:
		category = goerrors.CategoryValidation
	}
	return goerrors.Wrap(apiErr, category, "document service request failed").
		WithTextCode(apiErr.Code)
}
