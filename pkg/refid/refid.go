// Package refid mints human-visible booking reference ids in the
// BK<YYYYMMDD>-<6-digit> format, distinct from the internal transaction id.
package refid

import (
	"crypto/rand"
	"fmt"
	"time"
)

// New mints a reference id for the given civil date. Collisions are rare
// (1 in a million per day) but possible; callers retry with a fresh call
// on a unique-constraint violation.
func New(date time.Time) string {
	return fmt.Sprintf("BK%s-%06d", date.Format("20060102"), random6Digits())
}

func random6Digits() int {
	var b [4]byte
	_, _ = rand.Read(b[:])
	n := int(b[0])<<24 | int(b[1])<<16 | int(b[2])<<8 | int(b[3])
	if n < 0 {
		n = -n
	}
	return n % 1_000_000
}
