package splitter

import (
	"fmt"

	"github.com/shopspring/decimal"

	"travel-friend/api/models"
)

// Tolerance is the maximum allowed deviation between a caller-supplied split
// total and the expense amount.
const Tolerance = 0.01

// CustomShare is a caller-supplied portion for custom, percentage or shares
// splits. Only the field matching the split method is consulted.
type CustomShare struct {
	UserID     string  `json:"user_id"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
	Shares     int     `json:"shares"`
}

// Compute divides amount between the given participants according to method.
// The payer is always present in the result, at zero owed if not listed, so
// the participant roster is complete. Computed shares sum to amount exactly:
// rounding remainders are absorbed by the last non-payer participant rather
// than left to drift.
func Compute(amount float64, paidBy string, method models.SplitMethod, participants []string, customs []CustomShare) ([]models.SplitShare, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("expense amount must be positive, got %.2f", amount)
	}

	switch method {
	case models.SplitMethodEqual, "":
		return computeEqual(amount, paidBy, participants)
	case models.SplitMethodCustom:
		return computeCustom(amount, paidBy, customs)
	case models.SplitMethodPercentage:
		return computePercentage(amount, paidBy, customs)
	case models.SplitMethodShares:
		return computeShares(amount, paidBy, customs)
	default:
		return nil, fmt.Errorf("unknown split method %q", method)
	}
}

func computeEqual(amount float64, paidBy string, participants []string) ([]models.SplitShare, error) {
	participants = dedupe(participants)
	if len(participants) == 0 {
		return nil, fmt.Errorf("equal split needs at least one participant")
	}

	total := decimal.NewFromFloat(amount)
	n := decimal.NewFromInt(int64(len(participants)))
	each := total.Div(n).Round(2)
	pct := decimal.NewFromInt(100).Div(n).Round(2)

	splits := make([]models.SplitShare, 0, len(participants)+1)
	for _, p := range participants {
		splits = append(splits, models.SplitShare{
			UserID:     p,
			Amount:     each.InexactFloat64(),
			Percentage: pct.InexactFloat64(),
		})
	}
	absorbRemainder(splits, total, paidBy)
	return withPayer(splits, paidBy), nil
}

func computeCustom(amount float64, paidBy string, customs []CustomShare) ([]models.SplitShare, error) {
	if len(customs) == 0 {
		return nil, fmt.Errorf("custom split needs at least one participant amount")
	}

	total := decimal.NewFromFloat(amount)
	sum := decimal.Zero
	splits := make([]models.SplitShare, 0, len(customs)+1)
	for _, c := range customs {
		if c.UserID == "" {
			return nil, fmt.Errorf("custom split entry is missing a user id")
		}
		if c.Amount < 0 {
			return nil, fmt.Errorf("custom split amount for %s cannot be negative", c.UserID)
		}
		share := decimal.NewFromFloat(c.Amount).Round(2)
		sum = sum.Add(share)
		splits = append(splits, models.SplitShare{
			UserID:     c.UserID,
			Amount:     share.InexactFloat64(),
			Percentage: percentOf(share, total),
		})
	}

	if diff := sum.Sub(total).Abs(); diff.GreaterThan(decimal.NewFromFloat(Tolerance)) {
		return nil, fmt.Errorf("custom split total %s does not match expense amount %s",
			sum.StringFixed(2), total.StringFixed(2))
	}
	return withPayer(splits, paidBy), nil
}

func computePercentage(amount float64, paidBy string, customs []CustomShare) ([]models.SplitShare, error) {
	if len(customs) == 0 {
		return nil, fmt.Errorf("percentage split needs at least one participant percentage")
	}

	total := decimal.NewFromFloat(amount)
	hundred := decimal.NewFromInt(100)
	pctSum := decimal.Zero
	splits := make([]models.SplitShare, 0, len(customs)+1)
	for _, c := range customs {
		if c.UserID == "" {
			return nil, fmt.Errorf("percentage split entry is missing a user id")
		}
		if c.Percentage < 0 {
			return nil, fmt.Errorf("percentage for %s cannot be negative", c.UserID)
		}
		pct := decimal.NewFromFloat(c.Percentage)
		pctSum = pctSum.Add(pct)
		share := total.Mul(pct).Div(hundred).Round(2)
		splits = append(splits, models.SplitShare{
			UserID:     c.UserID,
			Amount:     share.InexactFloat64(),
			Percentage: c.Percentage,
		})
	}

	if diff := pctSum.Sub(hundred).Abs(); diff.GreaterThan(decimal.NewFromFloat(Tolerance)) {
		return nil, fmt.Errorf("split percentages sum to %s, expected 100", pctSum.StringFixed(2))
	}
	absorbRemainder(splits, total, paidBy)
	return withPayer(splits, paidBy), nil
}

func computeShares(amount float64, paidBy string, customs []CustomShare) ([]models.SplitShare, error) {
	if len(customs) == 0 {
		return nil, fmt.Errorf("shares split needs at least one participant weight")
	}

	totalWeight := 0
	for _, c := range customs {
		if c.UserID == "" {
			return nil, fmt.Errorf("shares split entry is missing a user id")
		}
		if c.Shares < 1 {
			return nil, fmt.Errorf("share weight for %s must be at least 1", c.UserID)
		}
		totalWeight += c.Shares
	}

	total := decimal.NewFromFloat(amount)
	weightSum := decimal.NewFromInt(int64(totalWeight))
	splits := make([]models.SplitShare, 0, len(customs)+1)
	for _, c := range customs {
		w := decimal.NewFromInt(int64(c.Shares))
		share := total.Mul(w).Div(weightSum).Round(2)
		splits = append(splits, models.SplitShare{
			UserID:     c.UserID,
			Amount:     share.InexactFloat64(),
			Percentage: percentOf(share, total),
			Shares:     c.Shares,
		})
	}
	absorbRemainder(splits, total, paidBy)
	return withPayer(splits, paidBy), nil
}

// Rescale proportionally adjusts existing shares to a new expense amount,
// preserving each participant's fraction of the total. Used for
// administrative amount edits on pending expenses.
func Rescale(splits []models.SplitShare, oldAmount, newAmount float64, paidBy string) ([]models.SplitShare, error) {
	if newAmount <= 0 {
		return nil, fmt.Errorf("expense amount must be positive, got %.2f", newAmount)
	}
	if oldAmount <= 0 {
		return nil, fmt.Errorf("cannot rescale from a non-positive amount")
	}

	oldTotal := decimal.NewFromFloat(oldAmount)
	newTotal := decimal.NewFromFloat(newAmount)
	out := make([]models.SplitShare, len(splits))
	copy(out, splits)
	for i := range out {
		share := decimal.NewFromFloat(out[i].Amount)
		out[i].Amount = share.Mul(newTotal).Div(oldTotal).Round(2).InexactFloat64()
	}
	absorbRemainder(out, newTotal, paidBy)
	return out, nil
}

// absorbRemainder adds total − Σ(shares) to the last non-payer share so the
// splits sum to the expense amount exactly.
func absorbRemainder(splits []models.SplitShare, total decimal.Decimal, paidBy string) {
	sum := decimal.Zero
	for _, s := range splits {
		sum = sum.Add(decimal.NewFromFloat(s.Amount))
	}
	remainder := total.Sub(sum)
	if remainder.IsZero() {
		return
	}

	idx := len(splits) - 1
	for i := len(splits) - 1; i >= 0; i-- {
		if splits[i].UserID != paidBy {
			idx = i
			break
		}
	}
	splits[idx].Amount = decimal.NewFromFloat(splits[idx].Amount).Add(remainder).Round(2).InexactFloat64()
}

// withPayer appends a zero-amount share for the payer when absent.
func withPayer(splits []models.SplitShare, paidBy string) []models.SplitShare {
	if paidBy == "" {
		return splits
	}
	for _, s := range splits {
		if s.UserID == paidBy {
			return splits
		}
	}
	return append(splits, models.SplitShare{UserID: paidBy, Amount: 0, Percentage: 0})
}

func percentOf(share, total decimal.Decimal) float64 {
	if total.IsZero() {
		return 0
	}
	return share.Mul(decimal.NewFromInt(100)).Div(total).Round(2).InexactFloat64()
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
