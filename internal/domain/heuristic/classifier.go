// Package heuristic is the keyword-driven fallback classifier used when no
// parsing rule recognises a message.
package heuristic

import (
	"regexp"
	"strings"

	"smsledger/internal/domain/category"
	"smsledger/internal/domain/transaction"
)

var (
	spamPattern    = regexp.MustCompile(`(?i)\b(plan|data|gb|pack|validity|prepaid|postpaid|rollover|upgrade|expires|rewards|otp|verification|code|emi|voucher|gift|convert|split|eligible|limit|win)\b`)
	debitPattern   = regexp.MustCompile(`(?i)\b(debited|spent|paid|sent|withdrawn|purchase|transfer|transferred|dr\.?|debit)\b`)
	creditPattern  = regexp.MustCompile(`(?i)\b(credited|received|deposit|refund|added|salary|reversal|cr\.?|credit)\b`)
	contextPattern = regexp.MustCompile(`(?i)\b(a/c|acct|card|bank|wallet|upi|account|vpa|xx)\b`)

	// A bank token must not touch another letter or digit on either side.
	bankPattern    = regexp.MustCompile(`(?i)(?:^|[^A-Za-z0-9])(SBI|CBOI|HDFC|BANDHAN|ICICI|USFB|UJJIVAN|AU|EQUITAS|JANA|SURYODAY|AXIS|KOTAK|PNB|BOB|CANARA|UNION|IDBI|INDIAN|UCO|CENTRAL|IOB|CITI|HSBC|YES|INDUSIND|PAYTM|GPAY|PHONEPE|CRED)(?:$|[^A-Za-z0-9])`)
	accountPattern = regexp.MustCompile(`(?i)(?:a/c|acct|account)\s*(?:no\.?\s*)?(?:ending\s+)?(?:with\s+)?[0-9]*[x*]+\s*(\d{4})`)
	vpaPattern     = regexp.MustCompile(`(?i)(?:to|from|\bat\b)\s+([a-zA-Z0-9.\-_]+@[a-zA-Z]+)`)
	namePattern    = regexp.MustCompile(`(?i)(?:to|from|\bat\b)\s+([A-Z][A-Za-z\s.]{3,30})(?:\s+on|\s+with|\s+Ref|\s+for|\s*\.)`)

	currencyAmountPattern = regexp.MustCompile(`(?i)(?:\b(?:rs|inr|mrp)\.?|₹)\s*(\d+(?:,\d+)*(?:\.\d{1,2})?)`)
	bareAmountPattern     = regexp.MustCompile(`(?i)(?:rs|inr|mrp)?\.?\s*(\d+(?:,\d+)*(?:\.\d{1,2})?)`)
)

// Classifier recognises transactions from generic debit/credit wording.
// It is stateless and safe for concurrent use.
type Classifier struct {
	builder *transaction.Builder
}

// NewClassifier creates a Classifier that builds records with builder.
func NewClassifier(builder *transaction.Builder) *Classifier {
	return &Classifier{builder: builder}
}

// Classify returns a record for message, or false when the message is
// promotional, has no transaction wording or carries no usable amount.
func (c *Classifier) Classify(message string) (*transaction.Record, bool) {
	if spamPattern.MatchString(message) {
		return nil, false
	}

	isCredit := creditPattern.MatchString(message)
	isDebit := debitPattern.MatchString(message)
	if !isCredit && !isDebit {
		return nil, false
	}

	if !contextPattern.MatchString(message) && !strings.Contains(strings.ToUpper(message), "UPI") {
		return nil, false
	}

	amount, ok := extractAmount(message)
	if !ok {
		return nil, false
	}

	txType := transaction.TypeExpense
	if isCredit {
		txType = transaction.TypeIncome
	}
	lower := strings.ToLower(message)

	rec, err := c.builder.Build(transaction.Fields{
		Type:          txType,
		Amount:        amount,
		PaymentMethod: PaymentMethod(lower),
		BankName:      BankName(message),
		AccountNumber: AccountNumber(message),
		Payee:         Payee(message),
		Category:      category.ClassifyOrOthers(lower, txType),
	})
	if err != nil {
		return nil, false
	}
	return rec, true
}

// extractAmount prefers a currency-prefixed figure and otherwise takes the
// first number in the message.
func extractAmount(message string) (float64, bool) {
	for _, p := range []*regexp.Regexp{currencyAmountPattern, bareAmountPattern} {
		m := p.FindStringSubmatch(message)
		if m == nil {
			continue
		}
		return transaction.ParsePositiveAmount(m[1])
	}
	return 0, false
}

// PaymentMethod infers the channel from a lowercased message.
func PaymentMethod(lower string) string {
	switch {
	case strings.Contains(lower, "upi"):
		return transaction.MethodUPI
	case strings.Contains(lower, "neft"), strings.Contains(lower, "rtgs"), strings.Contains(lower, "imps"):
		return transaction.MethodNetBanking
	case strings.Contains(lower, "card"):
		return transaction.MethodCard
	default:
		return transaction.MethodOther
	}
}

// BankName returns the first known bank token, upper-cased.
func BankName(message string) *string {
	m := bankPattern.FindStringSubmatch(message)
	if m == nil {
		return nil
	}
	bank := strings.ToUpper(m[1])
	return &bank
}

// AccountNumber returns the four digits following a masked account reference.
func AccountNumber(message string) *string {
	m := accountPattern.FindStringSubmatch(message)
	if m == nil {
		return nil
	}
	return &m[1]
}

// Payee returns a VPA when present, else a capitalised name after to/from/at.
func Payee(message string) *string {
	if m := vpaPattern.FindStringSubmatch(message); m != nil {
		return &m[1]
	}
	if m := namePattern.FindStringSubmatch(message); m != nil {
		name := strings.TrimSpace(m[1])
		if name != "" {
			return &name
		}
	}
	return nil
}
