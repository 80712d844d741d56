package observability

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/seojoon/ipofeed/internal/httpx"
)

const (
	ErrorNetwork   = "network"
	ErrorParsing   = "parsing"
	ErrorRateLimit = "rate_limit"
	ErrorRegistry  = "registry"
	ErrorUnknown   = "unknown"
)

// ClassifyFetchError buckets a failed fetch for the error counters.
func ClassifyFetchError(err error) string {
	if err == nil {
		return ErrorUnknown
	}
	var fe *httpx.FetchError
	if errors.As(err, &fe) {
		if fe.Status == http.StatusTooManyRequests {
			return ErrorRateLimit
		}
		return ErrorNetwork
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorNetwork
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "parse") || strings.Contains(msg, "decode") {
		return ErrorParsing
	}
	return ErrorUnknown
}
