package lead

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Recalculate sets changed to value on a copy of current and re-derives the
// linked commission field. Percentage is the anchor once set: a loan amount
// change re-derives the amount from it. Out-of-range inputs are stored as
// typed and left for validation.
func Recalculate(changed, value string, current *Draft) *Draft {
	next := current.Clone()
	next.Standard[changed] = value
	if _, ok := next.Dynamic[changed]; ok {
		next.Dynamic[changed] = value
	}

	if strings.TrimSpace(value) == "" {
		return next
	}

	switch changed {
	case KeyCommissionPercentage:
		loan, ok := parseDecimal(current.Standard[KeyLoanAmount])
		if !ok || !loan.IsPositive() {
			return next
		}
		if pct, ok := parseDecimal(value); ok && percentageInRange(pct) {
			next.Standard[KeyCommissionAmount] = commissionAmount(loan, pct)
		}

	case KeyCommissionAmount:
		loan, ok := parseDecimal(current.Standard[KeyLoanAmount])
		if !ok || !loan.IsPositive() {
			return next
		}
		if amount, ok := parseDecimal(value); ok && !amount.IsNegative() {
			next.Standard[KeyCommissionPercentage] = amount.Div(loan).Mul(hundred).StringFixed(2)
		}

	case KeyLoanAmount:
		loan, ok := parseDecimal(value)
		if !ok || !loan.IsPositive() {
			return next
		}
		if pct, ok := parseDecimal(current.Standard[KeyCommissionPercentage]); ok && percentageInRange(pct) {
			next.Standard[KeyCommissionAmount] = commissionAmount(loan, pct)
		}
	}
	return next
}

func commissionAmount(loan, pct decimal.Decimal) string {
	return loan.Mul(pct).Div(hundred).StringFixed(2)
}

func percentageInRange(pct decimal.Decimal) bool {
	return !pct.IsNegative() && pct.LessThanOrEqual(hundred)
}

// ValidPercentage reports whether s parses to a percentage within [0, 100].
func ValidPercentage(s string) bool {
	pct, ok := parseDecimal(s)
	return ok && percentageInRange(pct)
}

// ValidAmount reports whether s parses to a non-negative amount.
func ValidAmount(s string) bool {
	amount, ok := parseDecimal(s)
	return ok && !amount.IsNegative()
}

func parseDecimal(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func formatNumber(f float64) string {
	return decimal.NewFromFloat(f).String()
}

func formatOptional(f *float64) string {
	if f == nil {
		return ""
	}
	return formatNumber(*f)
}

// LimitType says which commission figure a franchise limit caps
type LimitType string

const (
	LimitPercentage LimitType = "percentage"
	LimitAmount     LimitType = "amount"
)

// CommissionLimit is the admin-configured franchise commission cap for a bank
type CommissionLimit struct {
	LimitType          LimitType `json:"limitType" yaml:"limitType"`
	MaxCommissionValue float64   `json:"maxCommissionValue" yaml:"maxCommissionValue"`
}

// CheckCommissionLimit returns the blocking message when the commission exceeds
// limit, or "" when it is within it. Missing values count as zero.
func CheckCommissionLimit(limit *CommissionLimit, percentage, amount string) string {
	if limit == nil {
		return ""
	}
	ceiling := decimal.NewFromFloat(limit.MaxCommissionValue)

	switch limit.LimitType {
	case LimitPercentage:
		pct, _ := parseDecimal(percentage)
		if pct.GreaterThan(ceiling) {
			return fmt.Sprintf("Commission cannot exceed Admin maximum limit of %s%%", ceiling.String())
		}
	case LimitAmount:
		value, _ := parseDecimal(amount)
		if value.GreaterThan(ceiling) {
			return fmt.Sprintf("Commission cannot exceed Admin maximum limit of ₹%s", groupThousands(ceiling))
		}
	}
	return ""
}

func groupThousands(d decimal.Decimal) string {
	s := d.String()
	intPart, frac, _ := strings.Cut(s, ".")
	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String()
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}
