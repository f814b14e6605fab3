package ledger

import (
	"strings"
	"testing"
	"time"

	"travel-friend/api/apperr"
	"travel-friend/api/models"
)

func testExpense() *models.Expense {
	return &models.Expense{
		ID:           "exp-1",
		GroupID:      "grp-1",
		Description:  "Hotel night",
		Amount:       900,
		PaidBy:       "alice",
		Participants: []string{"alice", "bob", "carol", "dave"},
		Splits: []models.SplitShare{
			{UserID: "alice", Amount: 225},
			{UserID: "bob", Amount: 225},
			{UserID: "carol", Amount: 225},
			{UserID: "dave", Amount: 225},
		},
		Status: models.ExpenseStatusPending,
	}
}

func TestSettleProgression(t *testing.T) {
	e := testExpense()
	now := time.Now()

	if err := Settle(e, "bob", now); err != nil {
		t.Fatalf("settling bob failed: %v", err)
	}
	if e.Status != models.ExpenseStatusPartiallySettled {
		t.Errorf("status after one settlement = %s, want partially_settled", e.Status)
	}

	if err := Settle(e, "carol", now); err != nil {
		t.Fatalf("settling carol failed: %v", err)
	}
	if e.Status != models.ExpenseStatusPartiallySettled {
		t.Errorf("status after two of three = %s, want partially_settled", e.Status)
	}

	if err := Settle(e, "dave", now); err != nil {
		t.Fatalf("settling dave failed: %v", err)
	}
	if e.Status != models.ExpenseStatusSettled {
		t.Errorf("status after all non-payers settled = %s, want settled", e.Status)
	}

	for _, s := range e.Splits {
		if s.UserID == "alice" {
			continue
		}
		if !s.Settled || s.SettledAt == nil {
			t.Errorf("split for %s not marked settled", s.UserID)
		}
	}
}

func TestSettleTwiceRejected(t *testing.T) {
	e := testExpense()
	now := time.Now()

	if err := Settle(e, "bob", now); err != nil {
		t.Fatalf("first settlement failed: %v", err)
	}
	before := len(e.SettledUsers)

	err := Settle(e, "bob", now)
	if err == nil {
		t.Fatal("second settlement succeeded, want error")
	}
	if !strings.Contains(err.Error(), "already settled") {
		t.Errorf("error = %q, want an already-settled message", err.Error())
	}
	if len(e.SettledUsers) != before {
		t.Errorf("settled set changed on rejected settlement: %v", e.SettledUsers)
	}
}

func TestSettleErrors(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		mutate   func(e *models.Expense)
		userID   string
		wantKind apperr.Kind
	}{
		{
			name:     "payer cannot settle themselves",
			userID:   "alice",
			wantKind: apperr.Validation,
		},
		{
			name:     "non-participant",
			userID:   "mallory",
			wantKind: apperr.NotFound,
		},
		{
			name:     "cancelled expense",
			mutate:   func(e *models.Expense) { e.Status = models.ExpenseStatusCancelled },
			userID:   "bob",
			wantKind: apperr.Validation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := testExpense()
			if tt.mutate != nil {
				tt.mutate(e)
			}
			err := Settle(e, tt.userID, now)
			if err == nil {
				t.Fatal("Settle succeeded, want error")
			}
			if got := apperr.KindOf(err); got != tt.wantKind {
				t.Errorf("error kind = %v, want %v", got, tt.wantKind)
			}
		})
	}
}

func TestRecomputeStatus(t *testing.T) {
	e := testExpense()
	if got := RecomputeStatus(e); got != models.ExpenseStatusPending {
		t.Errorf("fresh expense status = %s, want pending", got)
	}

	e.SettledUsers = []string{"bob", "carol", "dave"}
	if got := RecomputeStatus(e); got != models.ExpenseStatusSettled {
		t.Errorf("all non-payers settled: status = %s, want settled", got)
	}

	e.SettledUsers = []string{"bob"}
	if got := RecomputeStatus(e); got != models.ExpenseStatusPartiallySettled {
		t.Errorf("one settled: status = %s, want partially_settled", got)
	}

	// A payer-only expense has nobody to collect from.
	solo := &models.Expense{PaidBy: "alice", Participants: []string{"alice"}}
	if got := RecomputeStatus(solo); got != models.ExpenseStatusSettled {
		t.Errorf("solo expense status = %s, want settled", got)
	}
}

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		current models.ExpenseStatus
		next    models.ExpenseStatus
		wantErr bool
	}{
		{models.ExpenseStatusPending, models.ExpenseStatusCancelled, false},
		{models.ExpenseStatusPartiallySettled, models.ExpenseStatusCancelled, false},
		{models.ExpenseStatusSettled, models.ExpenseStatusCancelled, true},
		{models.ExpenseStatusCancelled, models.ExpenseStatusPending, true},
		{models.ExpenseStatusCancelled, models.ExpenseStatusCancelled, false},
		{models.ExpenseStatusPending, "bogus", true},
		{models.ExpenseStatusPending, models.ExpenseStatusSettled, false},
	}

	for _, tt := range tests {
		err := ValidateTransition(tt.current, tt.next)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateTransition(%s, %s) error = %v, wantErr %v", tt.current, tt.next, err, tt.wantErr)
		}
	}
}
