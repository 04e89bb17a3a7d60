// Package category holds the keyword table used to label transactions and
// the classifier shared by the rule engine and the heuristic classifier.
package category

import "strings"

// Category labels
const (
	Refund        = "Refund"
	Salary        = "Salary"
	Loan          = "Loan"
	Grocery       = "Grocery"
	Food          = "Food"
	Fuel          = "Fuel"
	Transport     = "Transport"
	Entertainment = "Entertainment"
	Health        = "Health"
	Shopping      = "Shopping"
	Investment    = "Investment"
	Education     = "Education"
	Rent          = "Rent"
	Utilities     = "Utilities"
	Bills         = "Bills"

	// Others is assigned to income that no keyword list recognised.
	Others = "Others"
)

// Type values the classifier cares about. Mirrors transaction.TypeIncome.
const typeIncome = "income"

// Mapping pairs a label with the keywords that select it.
type Mapping struct {
	Label      string
	Keywords   []string
	IncomeOnly bool
}

// Table is the canonical keyword table, in evaluation order.
// Refund and Salary only apply to income; everything after Loan is unconditioned on type.
var Table = []Mapping{
	{Label: Refund, IncomeOnly: true, Keywords: []string{"refund", "reversal", "reversed"}},
	{Label: Salary, IncomeOnly: true, Keywords: []string{"salary", "payroll", "credit towards salary"}},
	{Label: Loan, Keywords: []string{"loan", "emi", "finance", "bajaj"}},
	{Label: Grocery, Keywords: []string{"bigbasket", "blinkit", "zepto", "instamart", "grofers", "dmart", "reliance fresh", "nature's basket", "kirana", "supermarket", "vegetable", "fruit", "grocery"}},
	{Label: Food, Keywords: []string{"zomato", "swiggy", "ubereats", "domino", "pizza", "burger", "kfc", "mcdonald", "cafe", "coffee", "starbucks", "tea", "dining", "kitchen", "restaurant", "baking", "bakery", "cake", "eats", "bar", "pub"}},
	{Label: Fuel, Keywords: []string{"petrol", "diesel", "shell", "hpcl", "bpcl", "ioc", "pump", "fuel", "gas station"}},
	{Label: Transport, Keywords: []string{"uber", "ola", "rapido", "indrive", "metro", "rail", "irctc", "fastag", "toll", "ticket", "cab", "auto"}},
	{Label: Entertainment, Keywords: []string{"bookmyshow", "pvr", "inox", "netflix", "prime", "hotstar", "spotify", "youtube", "game", "steam", "playstation", "movie", "cinema", "subscription"}},
	{Label: Health, Keywords: []string{"pharmacy", "medplus", "apollo", "1mg", "practo", "hospital", "doctor", "clinic", "lab", "meds", "health", "dr."}},
	{Label: Shopping, Keywords: []string{"amazon", "flipkart", "myntra", "ajio", "meesho", "nykaa", "tata", "reliance trends", "zudio", "pantaloons", "mall", "retail", "store", "mart", "cloth", "fashion", "decathlon", "nike", "adidas"}},
	{Label: Investment, Keywords: []string{"zerodha", "groww", "kite", "sip", "mutual fund", "stock", "angel one", "upstox", "coin", "nps", "ppf", "smallcase"}},
	{Label: Education, Keywords: []string{"school", "college", "fee", "university", "udemy", "coursera", "learning", "class"}},
	{Label: Rent, Keywords: []string{"rent", "nobroker", "nestaway"}},
	{Label: Utilities, Keywords: []string{"electricity", "bescom", "tneb", "discom", "gas", "water", "broadband", "internet", "wifi", "fiber", "dth", "cable"}},
	{Label: Bills, Keywords: []string{"bill", "recharge", "invoice", "premium"}},
}

// Classify returns the first label whose keywords occur in text, or nil.
// text is expected to be lowercased by the caller; txType is "income" or "expense".
func Classify(text, txType string) *string {
	for i := range Table {
		m := &Table[i]
		if m.IncomeOnly && txType != typeIncome {
			continue
		}
		if containsAny(text, m.Keywords) {
			label := m.Label
			return &label
		}
	}
	return nil
}

// ClassifyOrOthers behaves like Classify but falls back to Others for income.
func ClassifyOrOthers(text, txType string) *string {
	if c := Classify(text, txType); c != nil {
		return c
	}
	if txType == typeIncome {
		others := Others
		return &others
	}
	return nil
}

// Labels returns every label in evaluation order, including Others.
func Labels() []string {
	labels := make([]string, 0, len(Table)+1)
	for _, m := range Table {
		labels = append(labels, m.Label)
	}
	return append(labels, Others)
}

// IsValid reports whether label belongs to the closed label set.
func IsValid(label string) bool {
	for _, l := range Labels() {
		if l == label {
			return true
		}
	}
	return false
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
