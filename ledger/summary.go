package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"travel-friend/api/models"
)

// MemberBalance is one member's position across the group's non-cancelled
// expenses. Net balance is total paid minus total owed; positive means the
// member is owed money.
type MemberBalance struct {
	UserID     string  `json:"user_id"`
	TotalPaid  float64 `json:"total_paid"`
	TotalOwed  float64 `json:"total_owed"`
	NetBalance float64 `json:"net_balance"`
}

// DebtEdge is a suggested repayment from one member to another.
type DebtEdge struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

// Summary is the per-request projection of a group's expense state. It is
// recomputed from the full expense set every time; nothing here is cached.
type Summary struct {
	TotalSpent     float64                            `json:"total_spent"`
	Budget         float64                            `json:"budget,omitempty"`
	BudgetUsedPct  float64                            `json:"budget_used_pct,omitempty"`
	Balances       []MemberBalance                    `json:"balances"`
	CategoryTotals map[models.ExpenseCategory]float64 `json:"category_totals"`
	Settlements    []DebtEdge                         `json:"settlements"`
	RecentExpenses []models.Expense                   `json:"recent_expenses"`
}

const recentExpenseCount = 5

// BuildSummary aggregates balances, category totals and simplified debts for
// a group. Cancelled expenses are excluded everywhere. A member's own split
// share on an expense they paid for is not counted as owed.
func BuildSummary(group *models.Group, expenses []models.Expense) Summary {
	paid := make(map[string]decimal.Decimal)
	owed := make(map[string]decimal.Decimal)
	categories := make(map[models.ExpenseCategory]float64)
	totalSpent := decimal.Zero

	for _, m := range group.ApprovedMemberIDs() {
		paid[m] = decimal.Zero
		owed[m] = decimal.Zero
	}

	for _, e := range expenses {
		if e.Status == models.ExpenseStatusCancelled {
			continue
		}
		amount := decimal.NewFromFloat(e.Amount)
		totalSpent = totalSpent.Add(amount)

		category := e.Category
		if category == "" {
			category = models.CategoryOther
		}
		categories[category] += e.Amount

		paid[e.PaidBy] = paid[e.PaidBy].Add(amount)
		for _, s := range e.Splits {
			if s.UserID == e.PaidBy {
				continue
			}
			owed[s.UserID] = owed[s.UserID].Add(decimal.NewFromFloat(s.Amount))
		}
	}

	members := make([]string, 0, len(paid))
	for m := range paid {
		members = append(members, m)
	}
	for m := range owed {
		if _, ok := paid[m]; !ok {
			members = append(members, m)
		}
	}
	sort.Strings(members)

	balances := make([]MemberBalance, 0, len(members))
	for _, m := range members {
		p := paid[m].Round(2)
		o := owed[m].Round(2)
		balances = append(balances, MemberBalance{
			UserID:     m,
			TotalPaid:  p.InexactFloat64(),
			TotalOwed:  o.InexactFloat64(),
			NetBalance: p.Sub(o).InexactFloat64(),
		})
	}

	summary := Summary{
		TotalSpent:     totalSpent.Round(2).InexactFloat64(),
		Budget:         group.Budget,
		Balances:       balances,
		CategoryTotals: categories,
		Settlements:    SimplifyDebts(balances),
		RecentExpenses: recent(expenses),
	}
	if group.Budget > 0 {
		pct := totalSpent.Div(decimal.NewFromFloat(group.Budget)).Mul(decimal.NewFromInt(100))
		summary.BudgetUsedPct = pct.Round(2).InexactFloat64()
	}
	return summary
}

// SimplifyDebts greedily matches members who owe money against members who
// are owed, producing a small set of repayments that clears all net balances.
func SimplifyDebts(balances []MemberBalance) []DebtEdge {
	var debtors, creditors []MemberBalance
	for _, b := range balances {
		switch {
		case b.NetBalance < -0.01:
			debtors = append(debtors, b)
		case b.NetBalance > 0.01:
			creditors = append(creditors, b)
		}
	}

	edges := []DebtEdge{}
	i, j := 0, 0
	debtorLeft := make(map[string]decimal.Decimal)
	creditorLeft := make(map[string]decimal.Decimal)
	for _, d := range debtors {
		debtorLeft[d.UserID] = decimal.NewFromFloat(-d.NetBalance)
	}
	for _, c := range creditors {
		creditorLeft[c.UserID] = decimal.NewFromFloat(c.NetBalance)
	}

	noise := decimal.NewFromFloat(0.01)
	for i < len(debtors) && j < len(creditors) {
		debtor := debtors[i].UserID
		creditor := creditors[j].UserID

		amount := debtorLeft[debtor]
		if creditorLeft[creditor].LessThan(amount) {
			amount = creditorLeft[creditor]
		}
		if amount.GreaterThan(noise) {
			edges = append(edges, DebtEdge{
				From:   debtor,
				To:     creditor,
				Amount: amount.Round(2).InexactFloat64(),
			})
		}

		debtorLeft[debtor] = debtorLeft[debtor].Sub(amount)
		creditorLeft[creditor] = creditorLeft[creditor].Sub(amount)

		if debtorLeft[debtor].LessThan(noise) {
			i++
		}
		if creditorLeft[creditor].LessThan(noise) {
			j++
		}
	}
	return edges
}

func recent(expenses []models.Expense) []models.Expense {
	sorted := make([]models.Expense, len(expenses))
	copy(sorted, expenses)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > recentExpenseCount {
		sorted = sorted[:recentExpenseCount]
	}
	return sorted
}
