// Package idgen generates human-readable, collision-resistant identifiers:
// a type prefix, the UTC date, and a short random suffix, e.g.
// ORD-20260107-3F2A1B.
package idgen

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Generator struct{}

func New() Generator { return Generator{} }

func (Generator) OrderID(now time.Time) string  { return stamp("ORD", now) }
func (Generator) DriverID(now time.Time) string { return stamp("DRV", now) }
func (Generator) BatchID(now time.Time) string  { return stamp("BAT", now) }
func (Generator) PayoutID(now time.Time) string { return stamp("PAY", now) }

func stamp(prefix string, now time.Time) string {
	return prefix + "-" + now.UTC().Format("20060102") + "-" + suffix()
}

func suffix() string {
	return strings.ToUpper(uuid.NewString()[:6])
}
