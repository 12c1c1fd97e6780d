// Package dburl inspects and rewrites PostgreSQL connection strings. Both
// URL form (postgres://...) and key=value DSN form are accepted.
package dburl

import (
	"net/url"
	"strings"
)

const preparedBinaryParam = "disable_prepared_binary_result"

// Normalize turns off binary results for prepared statements when asked,
// which transaction-mode poolers such as PgBouncer require. An explicit
// value already present in raw wins.
func Normalize(raw string, disablePreparedBinary bool) string {
	if !disablePreparedBinary {
		return raw
	}

	parsed, ok := parseURL(raw)
	if !ok {
		if strings.Contains(raw, preparedBinaryParam+"=") {
			return raw
		}
		return strings.TrimSpace(raw) + " " + preparedBinaryParam + "=yes"
	}

	query := parsed.Query()
	if query.Get(preparedBinaryParam) == "" {
		query.Set(preparedBinaryParam, "yes")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

// Name returns the database name, or "" when raw names none.
func Name(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if parsed, ok := parseURL(trimmed); ok {
		return strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
	}
	return dsnValue(trimmed, "dbname")
}

// Redact masks the password so raw can be logged.
func Redact(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if parsed, ok := parseURL(trimmed); ok {
		return parsed.Redacted()
	}

	fields := strings.Fields(trimmed)
	for i, field := range fields {
		if strings.HasPrefix(field, "password=") {
			fields[i] = "password=xxxxx"
		}
	}
	return strings.Join(fields, " ")
}

func parseURL(raw string) (*url.URL, bool) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed == nil || parsed.Scheme == "" {
		return nil, false
	}
	return parsed, true
}

func dsnValue(dsn, key string) string {
	for _, token := range strings.Fields(dsn) {
		value, ok := strings.CutPrefix(token, key+"=")
		if !ok {
			continue
		}
		return strings.Trim(strings.TrimSpace(value), `"'`)
	}
	return ""
}
