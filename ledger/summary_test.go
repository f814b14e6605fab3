package ledger

import (
	"math"
	"testing"
	"time"

	"travel-friend/api/models"
)

func testGroup() *models.Group {
	return &models.Group{
		ID:        "grp-1",
		Name:      "Goa trip",
		CreatorID: "alice",
		Budget:    2000,
		Members: []models.Member{
			{UserID: "bob", Status: models.MemberStatusApproved},
			{UserID: "carol", Status: models.MemberStatusApproved},
		},
	}
}

func balanceFor(t *testing.T, balances []MemberBalance, userID string) MemberBalance {
	t.Helper()
	for _, b := range balances {
		if b.UserID == userID {
			return b
		}
	}
	t.Fatalf("no balance found for %s", userID)
	return MemberBalance{}
}

func TestBuildSummary(t *testing.T) {
	group := testGroup()
	expenses := []models.Expense{
		{
			ID: "e1", Amount: 900, PaidBy: "alice", Category: models.CategoryFood,
			Participants: []string{"alice", "bob", "carol"},
			Splits: []models.SplitShare{
				{UserID: "alice", Amount: 300},
				{UserID: "bob", Amount: 300},
				{UserID: "carol", Amount: 300},
			},
			Status:    models.ExpenseStatusPending,
			CreatedAt: time.Now(),
		},
		{
			ID: "e2", Amount: 300, PaidBy: "bob", Category: models.CategoryTransport,
			Participants: []string{"alice", "bob", "carol"},
			Splits: []models.SplitShare{
				{UserID: "alice", Amount: 100},
				{UserID: "bob", Amount: 100},
				{UserID: "carol", Amount: 100},
			},
			Status:    models.ExpenseStatusPending,
			CreatedAt: time.Now().Add(-time.Hour),
		},
		{
			// Cancelled expenses count nowhere.
			ID: "e3", Amount: 5000, PaidBy: "carol", Category: models.CategoryShopping,
			Participants: []string{"alice", "bob", "carol"},
			Splits: []models.SplitShare{
				{UserID: "alice", Amount: 5000},
			},
			Status:    models.ExpenseStatusCancelled,
			CreatedAt: time.Now().Add(-2 * time.Hour),
		},
	}

	s := BuildSummary(group, expenses)

	if math.Abs(s.TotalSpent-1200) > 0.01 {
		t.Errorf("total spent = %v, want 1200", s.TotalSpent)
	}
	if math.Abs(s.BudgetUsedPct-60) > 0.01 {
		t.Errorf("budget used = %v%%, want 60%%", s.BudgetUsedPct)
	}

	alice := balanceFor(t, s.Balances, "alice")
	if math.Abs(alice.TotalPaid-900) > 0.01 || math.Abs(alice.TotalOwed-100) > 0.01 {
		t.Errorf("alice paid/owed = %v/%v, want 900/100", alice.TotalPaid, alice.TotalOwed)
	}
	if math.Abs(alice.NetBalance-800) > 0.01 {
		t.Errorf("alice net = %v, want 800", alice.NetBalance)
	}

	bob := balanceFor(t, s.Balances, "bob")
	if math.Abs(bob.NetBalance-0) > 0.01 {
		t.Errorf("bob net = %v, want 0 (paid 300, owes 300)", bob.NetBalance)
	}

	carol := balanceFor(t, s.Balances, "carol")
	if math.Abs(carol.NetBalance-(-400)) > 0.01 {
		t.Errorf("carol net = %v, want -400", carol.NetBalance)
	}

	if got := s.CategoryTotals[models.CategoryFood]; math.Abs(got-900) > 0.01 {
		t.Errorf("food total = %v, want 900", got)
	}
	if _, ok := s.CategoryTotals[models.CategoryShopping]; ok {
		t.Error("cancelled expense leaked into category totals")
	}

	if len(s.RecentExpenses) != 3 {
		t.Fatalf("recent expenses = %d, want 3", len(s.RecentExpenses))
	}
	if s.RecentExpenses[0].ID != "e1" {
		t.Errorf("recent[0] = %s, want newest expense e1", s.RecentExpenses[0].ID)
	}
}

func TestBuildSummaryRecentCap(t *testing.T) {
	group := testGroup()
	var expenses []models.Expense
	for i := 0; i < 8; i++ {
		expenses = append(expenses, models.Expense{
			ID: string(rune('a' + i)), Amount: 10, PaidBy: "alice",
			Participants: []string{"alice", "bob"},
			Splits:       []models.SplitShare{{UserID: "bob", Amount: 10}},
			CreatedAt:    time.Now().Add(time.Duration(i) * time.Minute),
		})
	}

	s := BuildSummary(group, expenses)
	if len(s.RecentExpenses) != recentExpenseCount {
		t.Errorf("recent expenses = %d, want %d", len(s.RecentExpenses), recentExpenseCount)
	}
}

func TestSimplifyDebts(t *testing.T) {
	balances := []MemberBalance{
		{UserID: "alice", NetBalance: 800},
		{UserID: "bob", NetBalance: 0},
		{UserID: "carol", NetBalance: -400},
		{UserID: "dave", NetBalance: -400},
	}

	edges := SimplifyDebts(balances)
	if len(edges) != 2 {
		t.Fatalf("edges = %d, want 2", len(edges))
	}
	for _, e := range edges {
		if e.To != "alice" {
			t.Errorf("edge %v should point at alice", e)
		}
		if math.Abs(e.Amount-400) > 0.01 {
			t.Errorf("edge amount = %v, want 400", e.Amount)
		}
	}
}

func TestSimplifyDebtsBalanced(t *testing.T) {
	balances := []MemberBalance{
		{UserID: "alice", NetBalance: 0},
		{UserID: "bob", NetBalance: 0},
	}
	if edges := SimplifyDebts(balances); len(edges) != 0 {
		t.Errorf("balanced group produced edges: %v", edges)
	}
}
