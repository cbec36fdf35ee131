package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"

	"github.com/doeshing/nlsh/internal/domain"
)

// maxErrorDetail bounds how much of a provider error body ends up in messages.
const maxErrorDetail = 300

// mapHTTPError converts a non-200 response into the backend failure taxonomy.
func mapHTTPError(statusCode int, body []byte) error {
	detail := fmt.Sprintf("API error %d: %s", statusCode, summarizeBody(body))

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrAuth, detail)
	case statusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrModelUnavailable, detail)
	case statusCode == http.StatusRequestTimeout || statusCode == http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %s", domain.ErrTimeout, detail)
	case statusCode == http.StatusTooManyRequests || statusCode >= 500:
		return fmt.Errorf("%w: %s", domain.ErrNetwork, detail)
	default:
		// Other 4xx: the backend cannot serve this request as configured.
		return fmt.Errorf("%w: %s", domain.ErrModelUnavailable, detail)
	}
}

// mapTransportError classifies a failed round trip. parent is the caller's
// context; if it was cancelled the cancellation is returned untouched.
func mapTransportError(parent context.Context, kind domain.BackendKind, err error) error {
	if parentErr := parent.Err(); parentErr != nil {
		if errors.Is(parentErr, context.Canceled) {
			return parentErr
		}
		return fmt.Errorf("%w: %v", domain.ErrTimeout, parentErr)
	}

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	case kind == domain.BackendLocal && errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("%w: local inference server is not running: %v", domain.ErrModelUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
}

func summarizeBody(body []byte) string {
	text := strings.Join(strings.Fields(string(body)), " ")
	if len(text) > maxErrorDetail {
		return text[:maxErrorDetail] + "..."
	}
	if text == "" {
		return "(empty body)"
	}
	return text
}

func decodeError(err error) error {
	return fmt.Errorf("%w: decode response: %v", domain.ErrNetwork, err)
}
