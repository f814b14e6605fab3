package models

import "time"

type NotificationType string

const (
	NotificationPaymentRequest  NotificationType = "payment_request"
	NotificationPaymentReceived NotificationType = "payment_received"
	NotificationExpenseSettled  NotificationType = "expense_settled"
	NotificationJoinRequest     NotificationType = "join_request"
	NotificationJoinApproved    NotificationType = "join_approved"
	NotificationJoinRejected    NotificationType = "join_rejected"
	NotificationGroupInvite     NotificationType = "group_invite"
)

// MaxNotificationsPerUser caps the per-user notification list. The newest
// entry sits at index 0 and the oldest is evicted past the cap.
const MaxNotificationsPerUser = 50

type NotificationMeta struct {
	ExpenseID   string  `json:"expense_id,omitempty" bson:"expense_id,omitempty"`
	GroupID     string  `json:"group_id,omitempty" bson:"group_id,omitempty"`
	Amount      float64 `json:"amount,omitempty" bson:"amount,omitempty"`
	PaymentLink string  `json:"payment_link,omitempty" bson:"payment_link,omitempty"`
}

type Notification struct {
	ID        string           `json:"id" bson:"id"`
	Type      NotificationType `json:"type" bson:"type"`
	Message   string           `json:"message" bson:"message"`
	Metadata  NotificationMeta `json:"metadata,omitempty" bson:"metadata,omitempty"`
	Read      bool             `json:"read" bson:"read"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at"`
}
