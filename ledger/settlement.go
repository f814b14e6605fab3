// Package ledger holds the settlement state machine and the balance
// aggregation for a group's expenses. Everything here is pure: handlers load
// documents, call into this package, then persist the result.
package ledger

import (
	"time"

	"travel-friend/api/apperr"
	"travel-friend/api/models"
)

// Settle marks userID as having paid the payer back on the given expense and
// recomputes the expense status. The caller is responsible for checking that
// the requester is the expense payer.
func Settle(e *models.Expense, userID string, now time.Time) error {
	if e.Status == models.ExpenseStatusCancelled {
		return apperr.New(apperr.Validation, "expense %s is cancelled", e.ID)
	}
	if userID == e.PaidBy {
		return apperr.New(apperr.Validation, "payer %s has nothing to settle on their own expense", userID)
	}
	if !e.HasParticipant(userID) {
		return apperr.New(apperr.NotFound, "user %s is not a participant of expense %s", userID, e.ID)
	}
	if e.IsSettledBy(userID) {
		return apperr.New(apperr.Validation, "user %s has already settled expense %s", userID, e.ID)
	}

	e.SettledUsers = append(e.SettledUsers, userID)
	for i := range e.Splits {
		if e.Splits[i].UserID == userID {
			e.Splits[i].Settled = true
			t := now
			e.Splits[i].SettledAt = &t
		}
	}
	e.Status = RecomputeStatus(e)
	e.UpdatedAt = now
	return nil
}

// RecomputeStatus derives the expense status from the settled set: settled
// when every non-payer participant has settled, partially_settled when at
// least one has, pending otherwise.
func RecomputeStatus(e *models.Expense) models.ExpenseStatus {
	nonPayers := e.NonPayerParticipants()
	if len(nonPayers) == 0 {
		return models.ExpenseStatusSettled
	}

	settled := 0
	for _, p := range nonPayers {
		if e.IsSettledBy(p) {
			settled++
		}
	}
	switch {
	case settled == len(nonPayers):
		return models.ExpenseStatusSettled
	case settled > 0:
		return models.ExpenseStatusPartiallySettled
	default:
		return models.ExpenseStatusPending
	}
}

// ValidateTransition checks an explicit status update against the state
// machine: cancelled is terminal, and a settled expense cannot be cancelled.
func ValidateTransition(current, next models.ExpenseStatus) error {
	if !next.Valid() {
		return apperr.New(apperr.Validation, "invalid status %q", next)
	}
	if current == next {
		return nil
	}
	if current == models.ExpenseStatusCancelled {
		return apperr.New(apperr.Validation, "cancelled expenses cannot change status")
	}
	if current == models.ExpenseStatusSettled && next == models.ExpenseStatusCancelled {
		return apperr.New(apperr.Validation, "settled expenses cannot be cancelled")
	}
	return nil
}
