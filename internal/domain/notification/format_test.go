package notification

import (
	"testing"

	"smsledger/internal/domain/transaction"
)

func strPtr(s string) *string { return &s }

func TestFormatter_Title(t *testing.T) {
	f := NewFormatter("")

	tests := []struct {
		name string
		rec  transaction.Record
		want string
	}{
		{
			name: "expense with payee",
			rec:  transaction.Record{Type: transaction.TypeExpense, Amount: 500, Payee: strPtr("SWIGGY")},
			want: "Sent ₹500.00 to SWIGGY",
		},
		{
			name: "income with payee",
			rec:  transaction.Record{Type: transaction.TypeIncome, Amount: 1200.5, Payee: strPtr("RAHUL")},
			want: "Received ₹1200.50 from RAHUL",
		},
		{
			name: "expense without payee",
			rec:  transaction.Record{Type: transaction.TypeExpense, Amount: 99.999, PaymentMethod: transaction.MethodCard},
			want: "Sent ₹100.00 via Card",
		},
		{
			name: "income without payee",
			rec:  transaction.Record{Type: transaction.TypeIncome, Amount: 10},
			want: "Received ₹10.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Title(&tt.rec); got != tt.want {
				t.Errorf("Title() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatter_TitleCurrency(t *testing.T) {
	f := NewFormatter("$")
	rec := &transaction.Record{Type: transaction.TypeIncome, Amount: 3}

	if got := f.Title(rec); got != "Received $3.00" {
		t.Errorf("Title() = %q", got)
	}
}

func TestFormatter_Body(t *testing.T) {
	f := NewFormatter("")

	tests := []struct {
		name string
		rec  transaction.Record
		want string
	}{
		{
			name: "expense with account and method",
			rec: transaction.Record{Type: transaction.TypeExpense, BankName: strPtr("HDFC"),
				AccountNumber: strPtr("1234"), PaymentMethod: transaction.MethodUPI},
			want: "From HDFC XX1234 via UPI. Tap to add.",
		},
		{
			name: "income with account",
			rec: transaction.Record{Type: transaction.TypeIncome, BankName: strPtr("SBI"),
				AccountNumber: strPtr("9876"), PaymentMethod: transaction.MethodNetBanking},
			want: "To SBI XX9876 via Net banking. Tap to add.",
		},
		{
			name: "unknown method omitted",
			rec: transaction.Record{Type: transaction.TypeExpense, BankName: strPtr("HDFC"),
				AccountNumber: strPtr("1234"), PaymentMethod: transaction.MethodUnknown},
			want: "From HDFC XX1234. Tap to add.",
		},
		{
			name: "other method omitted",
			rec: transaction.Record{Type: transaction.TypeExpense, BankName: strPtr("HDFC"),
				AccountNumber: strPtr("1234"), PaymentMethod: transaction.MethodOther},
			want: "From HDFC XX1234. Tap to add.",
		},
		{
			name: "bank without account",
			rec:  transaction.Record{Type: transaction.TypeExpense, BankName: strPtr("HDFC"), PaymentMethod: transaction.MethodUPI},
			want: "Tap to add.",
		},
		{
			name: "blank account",
			rec:  transaction.Record{Type: transaction.TypeExpense, BankName: strPtr("HDFC"), AccountNumber: strPtr(" ")},
			want: "Tap to add.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Body(&tt.rec); got != tt.want {
				t.Errorf("Body() = %q, want %q", got, tt.want)
			}
		})
	}
}
