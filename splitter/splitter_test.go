package splitter

import (
	"math"
	"strings"
	"testing"

	"travel-friend/api/models"
)

func shareFor(t *testing.T, splits []models.SplitShare, userID string) models.SplitShare {
	t.Helper()
	for _, s := range splits {
		if s.UserID == userID {
			return s
		}
	}
	t.Fatalf("no split found for %s", userID)
	return models.SplitShare{}
}

func sumOf(splits []models.SplitShare) float64 {
	var sum float64
	for _, s := range splits {
		sum += s.Amount
	}
	return sum
}

func TestComputeEqual(t *testing.T) {
	tests := []struct {
		name         string
		amount       float64
		paidBy       string
		participants []string
		wantErr      bool
		validate     func(t *testing.T, splits []models.SplitShare)
	}{
		{
			name:         "900 between three participants",
			amount:       900,
			paidBy:       "alice",
			participants: []string{"alice", "bob", "carol"},
			validate: func(t *testing.T, splits []models.SplitShare) {
				for _, id := range []string{"alice", "bob", "carol"} {
					if got := shareFor(t, splits, id).Amount; got != 300.00 {
						t.Errorf("%s share = %v, want 300.00", id, got)
					}
				}
			},
		},
		{
			name:         "remainder goes to last non-payer",
			amount:       100,
			paidBy:       "alice",
			participants: []string{"alice", "bob", "carol"},
			validate: func(t *testing.T, splits []models.SplitShare) {
				// 100/3 rounds to 33.33; carol absorbs the extra cent.
				if got := shareFor(t, splits, "bob").Amount; got != 33.33 {
					t.Errorf("bob share = %v, want 33.33", got)
				}
				if got := shareFor(t, splits, "carol").Amount; got != 33.34 {
					t.Errorf("carol share = %v, want 33.34", got)
				}
				if sum := sumOf(splits); math.Abs(sum-100) > 1e-9 {
					t.Errorf("shares sum to %v, want exactly 100", sum)
				}
			},
		},
		{
			name:         "payer not listed gets zero share",
			amount:       60,
			paidBy:       "alice",
			participants: []string{"bob", "carol"},
			validate: func(t *testing.T, splits []models.SplitShare) {
				if len(splits) != 3 {
					t.Fatalf("expected 3 splits including payer, got %d", len(splits))
				}
				if got := shareFor(t, splits, "alice").Amount; got != 0 {
					t.Errorf("payer share = %v, want 0", got)
				}
				if got := shareFor(t, splits, "bob").Amount; got != 30.00 {
					t.Errorf("bob share = %v, want 30.00", got)
				}
			},
		},
		{
			name:         "duplicate participants collapse",
			amount:       50,
			paidBy:       "alice",
			participants: []string{"alice", "bob", "bob"},
			validate: func(t *testing.T, splits []models.SplitShare) {
				if len(splits) != 2 {
					t.Fatalf("expected 2 splits, got %d", len(splits))
				}
				if got := shareFor(t, splits, "bob").Amount; got != 25.00 {
					t.Errorf("bob share = %v, want 25.00", got)
				}
			},
		},
		{
			name:         "zero amount rejected",
			amount:       0,
			paidBy:       "alice",
			participants: []string{"alice", "bob"},
			wantErr:      true,
		},
		{
			name:         "negative amount rejected",
			amount:       -10,
			paidBy:       "alice",
			participants: []string{"alice", "bob"},
			wantErr:      true,
		},
		{
			name:         "no participants rejected",
			amount:       100,
			paidBy:       "alice",
			participants: []string{},
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits, err := Compute(tt.amount, tt.paidBy, models.SplitMethodEqual, tt.participants, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Compute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && tt.validate != nil {
				tt.validate(t, splits)
			}
		})
	}
}

func TestComputeEqualSumsExactly(t *testing.T) {
	// The rounding remainder must never be left to drift, whatever the
	// participant count.
	amounts := []float64{900, 100, 99.99, 0.05, 1234.56}
	for n := 1; n <= 9; n++ {
		participants := make([]string, n)
		for i := range participants {
			participants[i] = string(rune('a' + i))
		}
		for _, amount := range amounts {
			splits, err := Compute(amount, "a", models.SplitMethodEqual, participants, nil)
			if err != nil {
				t.Fatalf("Compute(%v, %d participants) failed: %v", amount, n, err)
			}
			if sum := sumOf(splits); math.Abs(sum-amount) > 1e-9 {
				t.Errorf("amount=%v n=%d: shares sum to %v", amount, n, sum)
			}
		}
	}
}

func TestComputeCustom(t *testing.T) {
	tests := []struct {
		name    string
		amount  float64
		customs []CustomShare
		wantErr string
	}{
		{
			name:   "matching total accepted",
			amount: 1000,
			customs: []CustomShare{
				{UserID: "userA", Amount: 400},
				{UserID: "userB", Amount: 600},
			},
		},
		{
			name:   "mismatched total rejected with both totals",
			amount: 900,
			customs: []CustomShare{
				{UserID: "userA", Amount: 400},
				{UserID: "userB", Amount: 600},
			},
			wantErr: "1000.00 does not match expense amount 900.00",
		},
		{
			name:   "within tolerance accepted",
			amount: 100,
			customs: []CustomShare{
				{UserID: "userA", Amount: 33.33},
				{UserID: "userB", Amount: 33.33},
				{UserID: "userC", Amount: 33.33},
			},
		},
		{
			name:    "empty custom splits rejected",
			amount:  100,
			customs: nil,
			wantErr: "at least one participant",
		},
		{
			name:   "negative share rejected",
			amount: 100,
			customs: []CustomShare{
				{UserID: "userA", Amount: 150},
				{UserID: "userB", Amount: -50},
			},
			wantErr: "cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits, err := Compute(tt.amount, "payer", models.SplitMethodCustom, nil, tt.customs)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("Compute() succeeded, want error containing %q", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Compute() failed: %v", err)
			}
			// Payer gets appended at zero owed.
			if got := shareFor(t, splits, "payer").Amount; got != 0 {
				t.Errorf("payer share = %v, want 0", got)
			}
		})
	}
}

func TestComputePercentage(t *testing.T) {
	splits, err := Compute(200, "alice", models.SplitMethodPercentage, nil, []CustomShare{
		{UserID: "alice", Percentage: 50},
		{UserID: "bob", Percentage: 30},
		{UserID: "carol", Percentage: 20},
	})
	if err != nil {
		t.Fatalf("Compute() failed: %v", err)
	}
	if got := shareFor(t, splits, "alice").Amount; got != 100.00 {
		t.Errorf("alice share = %v, want 100.00", got)
	}
	if got := shareFor(t, splits, "bob").Amount; got != 60.00 {
		t.Errorf("bob share = %v, want 60.00", got)
	}
	if got := shareFor(t, splits, "carol").Amount; got != 40.00 {
		t.Errorf("carol share = %v, want 40.00", got)
	}

	_, err = Compute(200, "alice", models.SplitMethodPercentage, nil, []CustomShare{
		{UserID: "alice", Percentage: 50},
		{UserID: "bob", Percentage: 30},
	})
	if err == nil {
		t.Fatal("expected error for percentages not summing to 100")
	}
}

func TestComputeShares(t *testing.T) {
	splits, err := Compute(90, "alice", models.SplitMethodShares, nil, []CustomShare{
		{UserID: "alice", Shares: 1},
		{UserID: "bob", Shares: 2},
	})
	if err != nil {
		t.Fatalf("Compute() failed: %v", err)
	}
	if got := shareFor(t, splits, "alice").Amount; got != 30.00 {
		t.Errorf("alice share = %v, want 30.00", got)
	}
	if got := shareFor(t, splits, "bob").Amount; got != 60.00 {
		t.Errorf("bob share = %v, want 60.00", got)
	}
	if sum := sumOf(splits); math.Abs(sum-90) > 1e-9 {
		t.Errorf("shares sum to %v, want exactly 90", sum)
	}

	_, err = Compute(90, "alice", models.SplitMethodShares, nil, []CustomShare{
		{UserID: "alice", Shares: 0},
	})
	if err == nil {
		t.Fatal("expected error for zero share weight")
	}
}

func TestComputeUnknownMethod(t *testing.T) {
	if _, err := Compute(10, "a", "random", []string{"a", "b"}, nil); err == nil {
		t.Fatal("expected error for unknown split method")
	}
}
