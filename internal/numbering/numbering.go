// Package numbering generates human-readable order and invoice numbers
// application-side, so the database carries no number-generation procedures.
package numbering

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// OrderNumber returns a number of the form ORD-20260828-1A2B3C4D. The random
// suffix makes collisions under concurrent inserts vanishingly unlikely; the
// unique constraint on orders.order_number turns a collision into a clean
// transaction failure rather than silent reuse.
func OrderNumber(now time.Time) string {
	return numbered("ORD", now)
}

// InvoiceNumber returns a number of the form INV-20260828-1A2B3C4D.
func InvoiceNumber(now time.Time) string {
	return numbered("INV", now)
}

func numbered(prefix string, now time.Time) string {
	buf := make([]byte, 4)
	// rand.Read never fails on supported platforms.
	_, _ = rand.Read(buf)
	suffix := strings.ToUpper(hex.EncodeToString(buf))
	return fmt.Sprintf("%s-%s-%s", prefix, now.UTC().Format("20060102"), suffix)
}
