package smsbackup

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"smsledger/internal/domain/transaction"
)

var csvHeader = []string{"date", "type", "amount", "payee", "payment_method", "bank", "account", "category", "balance"}

// WriteCSV writes records sorted by timestamp as a semicolon-separated,
// BOM-prefixed UTF-8 file that spreadsheet tools open without an import step.
func WriteCSV(w io.Writer, records []*transaction.Record, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}

	sorted := make([]*transaction.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("error writing BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}

	for _, rec := range sorted {
		row := []string{
			rec.Time().In(loc).Format("2006-01-02 15:04:05"),
			rec.Type,
			transaction.FormatAmount(rec.Amount),
			deref(rec.Payee),
			rec.PaymentMethod,
			deref(rec.BankName),
			deref(rec.AccountNumber),
			deref(rec.Category),
			"",
		}
		if rec.Balance != nil {
			row[8] = strconv.FormatFloat(*rec.Balance, 'f', 2, 64)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("error writing record %s: %w", rec.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
