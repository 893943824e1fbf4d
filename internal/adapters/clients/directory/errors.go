package directory

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jsamuelsen11/ramp-pipeline/internal/domain"
)

// maxErrorBodySize limits how much of an error response body we read.
const maxErrorBodySize = 1 << 20 // 1 MB

// problemDetail represents an RFC 7807 Problem Details response.
type problemDetail struct {
	Detail string `json:"detail"`
}

// TranslateHTTPError maps a non-200 directory response to an error wrapping
// domain.ErrSourceUnavailable. The detail comes from an RFC 7807 body when
// the server sends one.
func TranslateHTTPError(resp *http.Response) error {
	detail := parseProblemDetail(resp).Detail
	if detail == "" {
		detail = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return unavailable("area listing not found (status 404): %s", detail)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return unavailable("credentials rejected (status %d): %s", resp.StatusCode, detail)
	case resp.StatusCode == http.StatusTooManyRequests:
		return unavailable("rate limited (status 429): %s", detail)
	case resp.StatusCode >= http.StatusInternalServerError:
		return unavailable("server error (status %d): %s", resp.StatusCode, detail)
	default:
		return unavailable("unexpected status %d: %s", resp.StatusCode, detail)
	}
}

func unavailable(format string, args ...any) error {
	return fmt.Errorf("area directory: %w: %s", domain.ErrSourceUnavailable, fmt.Sprintf(format, args...))
}

// parseProblemDetail attempts to read and parse an RFC 7807 body from the
// response. Returns an empty problemDetail if parsing fails.
func parseProblemDetail(resp *http.Response) problemDetail {
	if resp.Body == nil {
		return problemDetail{}
	}

	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "application/problem+json") {
		return problemDetail{}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err != nil {
		return problemDetail{}
	}

	var pd problemDetail
	if err := json.Unmarshal(body, &pd); err != nil {
		return problemDetail{}
	}
	return pd
}
