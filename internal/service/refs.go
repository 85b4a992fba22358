package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// newReference builds a human-quotable reference like CS260826A1F0: a prefix,
// the date as yymmdd and n random hex characters. Uniqueness is enforced by
// the database; collisions only cost the caller a retry.
func newReference(prefix string, now time.Time, n int) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return prefix + now.Format("060102") + suffix[:n]
}
