package notification

import (
	"fmt"
	"strings"

	"smsledger/internal/domain/transaction"
)

// Formatter renders the user-facing text of a transaction notification.
type Formatter struct {
	CurrencySymbol string
}

// NewFormatter returns a Formatter; an empty symbol uses DefaultCurrencySymbol.
func NewFormatter(symbol string) Formatter {
	if symbol == "" {
		symbol = DefaultCurrencySymbol
	}
	return Formatter{CurrencySymbol: symbol}
}

// Title is e.g. "Sent ₹500.00 to SWIGGY" or "Received ₹1200.00".
func (f Formatter) Title(rec *transaction.Record) string {
	amount := f.CurrencySymbol + transaction.FormatAmount(rec.Amount)
	expense := rec.Type == transaction.TypeExpense

	switch {
	case rec.Payee != nil && expense:
		return fmt.Sprintf("Sent %s to %s", amount, *rec.Payee)
	case rec.Payee != nil:
		return fmt.Sprintf("Received %s from %s", amount, *rec.Payee)
	case expense:
		return fmt.Sprintf("Sent %s via %s", amount, rec.PaymentMethod)
	default:
		return "Received " + amount
	}
}

// Body names the account when both bank and account number are known.
func (f Formatter) Body(rec *transaction.Record) string {
	var b strings.Builder

	bank, account := deref(rec.BankName), deref(rec.AccountNumber)
	if strings.TrimSpace(bank) != "" && strings.TrimSpace(account) != "" {
		direction := "To"
		if rec.Type == transaction.TypeExpense {
			direction = "From"
		}
		fmt.Fprintf(&b, "%s %s XX%s", direction, bank, account)
		if m := rec.PaymentMethod; m != transaction.MethodUnknown && m != transaction.MethodOther {
			b.WriteString(" via " + m)
		}
		b.WriteString(". ")
	}
	b.WriteString("Tap to add.")

	return b.String()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
