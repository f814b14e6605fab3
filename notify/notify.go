// Package notify fans ledger events out to participants: an in-app
// notification on the user document, a push to any live stream, and a
// best-effort email job on the queue. A failure for one participant is
// recorded in the returned result list and never aborts the caller.
package notify

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"travel-friend/api/kafka"
	"travel-friend/api/logger"
	"travel-friend/api/mailer"
	"travel-friend/api/models"
	"travel-friend/api/mongodb"
	"travel-friend/api/sse"
)

// Result is the delivery outcome for one participant.
type Result struct {
	UserID      string  `json:"user_id"`
	Amount      float64 `json:"amount,omitempty"`
	Notified    bool    `json:"notified"`
	EmailQueued bool    `json:"email_queued"`
	PaymentLink string  `json:"payment_link,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// PaymentLink builds a UPI deep link requesting amount from the recipient.
// Returns "" when the payer has no registered payment handle.
func PaymentLink(handle, payeeName string, amount float64, note string) string {
	if handle == "" {
		return ""
	}
	params := url.Values{}
	params.Set("pa", handle)
	if payeeName != "" {
		params.Set("pn", payeeName)
	}
	params.Set("am", fmt.Sprintf("%.2f", amount))
	params.Set("cu", "INR")
	if note != "" {
		params.Set("tn", note)
	}
	return "upi://pay?" + params.Encode()
}

// PaymentRequestMessage is the human-readable payment request line.
func PaymentRequestMessage(payerName, currency string, amount float64, description string) string {
	if currency == "" {
		currency = "INR"
	}
	return fmt.Sprintf("%s requests %s %.2f for %q", payerName, currency, amount, description)
}

// ExpenseCreated notifies every non-payer participant that they owe their
// share of a newly created expense.
func ExpenseCreated(ctx context.Context, expense *models.Expense) []Result {
	payerName, payerHandle := payerDetails(ctx, expense.PaidBy)

	results := make([]Result, 0, len(expense.Splits))
	for _, split := range expense.Splits {
		if split.UserID == expense.PaidBy {
			continue
		}

		link := PaymentLink(payerHandle, payerName, split.Amount, expense.Description)
		n := models.Notification{
			ID:      uuid.New().String(),
			Type:    models.NotificationPaymentRequest,
			Message: PaymentRequestMessage(payerName, expense.Currency, split.Amount, expense.Description),
			Metadata: models.NotificationMeta{
				ExpenseID:   expense.ID,
				GroupID:     expense.GroupID,
				Amount:      split.Amount,
				PaymentLink: link,
			},
			CreatedAt: time.Now(),
		}

		result := deliver(ctx, split.UserID, n)
		result.Amount = split.Amount
		result.PaymentLink = link
		results = append(results, result)
	}
	return results
}

// SettlementRecorded notifies the payer that a participant settled up, and
// every participant when the expense becomes fully settled.
func SettlementRecorded(ctx context.Context, expense *models.Expense, settledBy string) []Result {
	var results []Result

	received := models.Notification{
		ID:      uuid.New().String(),
		Type:    models.NotificationPaymentReceived,
		Message: fmt.Sprintf("%s settled their share of %q", settledBy, expense.Description),
		Metadata: models.NotificationMeta{
			ExpenseID: expense.ID,
			GroupID:   expense.GroupID,
		},
		CreatedAt: time.Now(),
	}
	results = append(results, deliver(ctx, expense.PaidBy, received))

	if expense.Status != models.ExpenseStatusSettled {
		return results
	}
	for _, p := range expense.Participants {
		n := models.Notification{
			ID:      uuid.New().String(),
			Type:    models.NotificationExpenseSettled,
			Message: fmt.Sprintf("%q is fully settled", expense.Description),
			Metadata: models.NotificationMeta{
				ExpenseID: expense.ID,
				GroupID:   expense.GroupID,
			},
			CreatedAt: time.Now(),
		}
		results = append(results, deliver(ctx, p, n))
	}
	return results
}

// JoinRequested notifies the group creator of a new join request.
func JoinRequested(ctx context.Context, group *models.Group, requesterID string) Result {
	n := models.Notification{
		ID:      uuid.New().String(),
		Type:    models.NotificationJoinRequest,
		Message: fmt.Sprintf("%s wants to join %q", requesterID, group.Name),
		Metadata: models.NotificationMeta{
			GroupID: group.ID,
		},
		CreatedAt: time.Now(),
	}
	return deliver(ctx, group.CreatorID, n)
}

// JoinDecided notifies the requester of the creator's decision.
func JoinDecided(ctx context.Context, group *models.Group, userID string, approved bool) Result {
	kind := models.NotificationJoinApproved
	message := fmt.Sprintf("Your request to join %q was approved", group.Name)
	if !approved {
		kind = models.NotificationJoinRejected
		message = fmt.Sprintf("Your request to join %q was rejected", group.Name)
	}
	n := models.Notification{
		ID:        uuid.New().String(),
		Type:      kind,
		Message:   message,
		Metadata:  models.NotificationMeta{GroupID: group.ID},
		CreatedAt: time.Now(),
	}
	return deliver(ctx, userID, n)
}

// Invited notifies a user they were invited to a group.
func Invited(ctx context.Context, group *models.Group, userID, invitedBy string) Result {
	n := models.Notification{
		ID:        uuid.New().String(),
		Type:      models.NotificationGroupInvite,
		Message:   fmt.Sprintf("%s invited you to %q", invitedBy, group.Name),
		Metadata:  models.NotificationMeta{GroupID: group.ID},
		CreatedAt: time.Now(),
	}
	return deliver(ctx, userID, n)
}

// deliver stores the in-app notification, pushes to a live stream and queues
// an email. Only the store write counts toward Notified; the rest is
// best-effort.
func deliver(ctx context.Context, userID string, n models.Notification) Result {
	result := Result{UserID: userID}

	if err := mongodb.AppendNotification(ctx, userID, n); err != nil {
		logger.Get().Warn("failed to store notification",
			zap.String("user_id", userID),
			zap.String("type", string(n.Type)),
			zap.Error(err))
		result.Error = err.Error()
		return result
	}
	result.Notified = true

	sse.Push(userID, n)

	user, err := mongodb.GetUser(ctx, userID)
	if err != nil || user == nil || user.Email == "" {
		return result
	}
	job := mailer.EmailJob{
		UserID:  userID,
		To:      user.Email,
		Subject: subjectFor(n.Type),
		Body:    n.Message,
	}
	if err := kafka.EnqueueEmail(job); err == nil {
		result.EmailQueued = true
	}
	return result
}

func subjectFor(t models.NotificationType) string {
	switch t {
	case models.NotificationPaymentRequest:
		return "You have a new payment request"
	case models.NotificationPaymentReceived:
		return "A payment was settled"
	case models.NotificationExpenseSettled:
		return "An expense is fully settled"
	case models.NotificationJoinRequest:
		return "New join request for your group"
	case models.NotificationJoinApproved, models.NotificationJoinRejected:
		return "Update on your join request"
	case models.NotificationGroupInvite:
		return "You have a group invitation"
	default:
		return "Travel Friend notification"
	}
}

func payerDetails(ctx context.Context, payerID string) (name, handle string) {
	payer, err := mongodb.GetUser(ctx, payerID)
	if err != nil || payer == nil {
		return payerID, ""
	}
	name = payer.Name
	if name == "" {
		name = payerID
	}
	return name, payer.PaymentHandle
}
