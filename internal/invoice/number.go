// Package invoice mints human-readable sequential invoice numbers.
package invoice

import (
	"fmt"
	"time"
)

// Next returns the invoice number for a company's next voucher given how
// many vouchers the company already has. Format: INV/<YY>-<YY+1>/<NNN>,
// e.g. INV/25-26/004. The sequence is derived from the voucher count at
// creation time, not a stored counter.
func Next(existing int, at time.Time) string {
	return fmt.Sprintf("INV/%s/%03d", FiscalYear(at), existing+1)
}

// FiscalYear returns the short April-March fiscal year label for a point in
// time: August 2025 and February 2026 both yield "25-26".
func FiscalYear(at time.Time) string {
	y := at.Year()
	if at.Month() < time.April {
		y--
	}
	return fmt.Sprintf("%02d-%02d", y%100, (y+1)%100)
}

// Fallback derives a display number for a voucher saved before numbers were
// stored, from its zero-based position among the company's vouchers ordered
// by creation time (ties broken by id). The ordering is stable, so the same
// voucher always displays the same number while the set is unchanged.
func Fallback(position int, createdAt time.Time) string {
	return Next(position, createdAt)
}
