package app

import (
	"net/url"
	"strings"
)

// normalizeDBURL appends disable_prepared_binary_result=yes when the toggle
// is on and the caller has not set the parameter explicitly. Some pgbouncer
// setups choke on binary result prepared statements from lib/pq.
func normalizeDBURL(raw string, disablePreparedBinaryResult bool) string {
	if !disablePreparedBinaryResult {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed == nil {
		return raw
	}

	query := parsed.Query()
	if query.Get("disable_prepared_binary_result") != "" {
		return raw
	}

	query.Set("disable_prepared_binary_result", "yes")
	parsed.RawQuery = query.Encode()

	return parsed.String()
}

// dbNameFromURL extracts the database name from either URL-style or
// key=value DSN-style connection strings, for span attribution.
func dbNameFromURL(raw string) string {
	trimmed := strings.TrimSpace(raw)

	if parsed, err := url.Parse(trimmed); err == nil && parsed != nil && parsed.Scheme != "" {
		if name := strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/")); name != "" {
			return name
		}
	}

	for _, token := range strings.Fields(trimmed) {
		if !strings.HasPrefix(token, "dbname=") {
			continue
		}
		if name := strings.Trim(strings.TrimPrefix(token, "dbname="), `"'`); name != "" {
			return name
		}
	}

	return ""
}
