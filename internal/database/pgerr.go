package database

import "strings"

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func IsUniqueViolation(err error) bool {
	return containsErrorCode(err, "23505")
}

// IsForeignKeyViolation reports whether err is a PostgreSQL foreign key
// violation (SQLSTATE 23503).
func IsForeignKeyViolation(err error) bool {
	return containsErrorCode(err, "23503")
}

// IsNotNullViolation reports whether err is a PostgreSQL not-null violation
// (SQLSTATE 23502).
func IsNotNullViolation(err error) bool {
	return containsErrorCode(err, "23502")
}

func containsErrorCode(err error, code string) bool {
	if err == nil {
		return false
	}
	// pgx wraps driver errors, so match on the message text.
	errStr := err.Error()
	return strings.Contains(errStr, code) || strings.Contains(errStr, "SQLSTATE "+code)
}
