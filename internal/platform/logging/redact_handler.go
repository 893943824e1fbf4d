package logging

import (
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/m-mizutani/masq"
)

const redacted = "[REDACTED]"

// credentialHeaders are the outbound directory headers (lowercase) whose
// values never reach a log.
var credentialHeaders = []string{"authorization", "cookie", "x-api-key"}

// credentialFields are attribute and struct field names masked wherever they
// appear, including inside config structs logged with slog.Any.
var credentialFields = []string{"api_key", "APIKey", "password", "secret", "token"}

var credentialPrefixes = []string{"api_key", "secret_"}

// Values that look like credentials are masked even under innocent keys.
// JWT segments need ten characters each so version strings pass.
var credentialValues = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9\-._~+/]+=*`),
	regexp.MustCompile(`[a-zA-Z0-9\-_]{10,}\.[a-zA-Z0-9\-_]{10,}\.[a-zA-Z0-9\-_]{10,}`),
	regexp.MustCompile(`(?i)(api[_\-]?key|apikey)\s*[:=]\s*\S+`),
}

// RedactHeaders flattens h for logging with credential headers masked.
func RedactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		v := strings.Join(values, ", ")
		for _, c := range credentialHeaders {
			if strings.EqualFold(name, c) {
				v = redacted
				break
			}
		}
		out[name] = v
	}
	return out
}

// newRedactAttr builds the masq ReplaceAttr hook installed by New.
func newRedactAttr() func([]string, slog.Attr) slog.Attr {
	n := len(credentialHeaders) + len(credentialFields) + len(credentialPrefixes) + len(credentialValues)
	opts := make([]masq.Option, 0, n)
	for _, name := range credentialHeaders {
		opts = append(opts, masq.WithFieldName(name))
	}
	for _, name := range credentialFields {
		opts = append(opts, masq.WithFieldName(name))
	}
	for _, p := range credentialPrefixes {
		opts = append(opts, masq.WithFieldPrefix(p))
	}
	for _, re := range credentialValues {
		opts = append(opts, masq.WithRegex(re))
	}
	return masq.New(opts...)
}
