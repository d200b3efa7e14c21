package postgres

import (
	"database/sql"
	"errors"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func int64sToAny(values []int64) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}
