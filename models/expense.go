package models

import "time"

type ExpenseStatus string

const (
	ExpenseStatusPending          ExpenseStatus = "pending"
	ExpenseStatusPartiallySettled ExpenseStatus = "partially_settled"
	ExpenseStatusSettled          ExpenseStatus = "settled"
	ExpenseStatusCancelled        ExpenseStatus = "cancelled"
)

func (s ExpenseStatus) Valid() bool {
	switch s {
	case ExpenseStatusPending, ExpenseStatusPartiallySettled, ExpenseStatusSettled, ExpenseStatusCancelled:
		return true
	}
	return false
}

type SplitMethod string

const (
	SplitMethodEqual      SplitMethod = "equal"
	SplitMethodCustom     SplitMethod = "custom"
	SplitMethodPercentage SplitMethod = "percentage"
	SplitMethodShares     SplitMethod = "shares"
)

type ExpenseCategory string

const (
	CategoryFood          ExpenseCategory = "food"
	CategoryTransport     ExpenseCategory = "transport"
	CategoryAccommodation ExpenseCategory = "accommodation"
	CategoryActivities    ExpenseCategory = "activities"
	CategoryShopping      ExpenseCategory = "shopping"
	CategoryOther         ExpenseCategory = "other"
)

func (c ExpenseCategory) Valid() bool {
	switch c {
	case CategoryFood, CategoryTransport, CategoryAccommodation, CategoryActivities, CategoryShopping, CategoryOther:
		return true
	}
	return false
}

// SplitShare is one participant's portion of an expense. Shares are stored as
// a structured array on the expense document, not a serialized string.
type SplitShare struct {
	UserID     string     `json:"user_id" bson:"user_id"`
	Amount     float64    `json:"amount" bson:"amount"`
	Percentage float64    `json:"percentage" bson:"percentage"`
	Shares     int        `json:"shares,omitempty" bson:"shares,omitempty"`
	Settled    bool       `json:"settled" bson:"settled"`
	SettledAt  *time.Time `json:"settled_at,omitempty" bson:"settled_at,omitempty"`
}

// Expense is a single shared cost recorded against a group. The payer always
// appears in Splits with a zero amount so the participant roster is complete.
type Expense struct {
	ID           string          `json:"id" bson:"_id"`
	GroupID      string          `json:"group_id" bson:"group_id"`
	Description  string          `json:"description" bson:"description"`
	Amount       float64         `json:"amount" bson:"amount"`
	Currency     string          `json:"currency" bson:"currency"`
	Category     ExpenseCategory `json:"category" bson:"category"`
	PaidBy       string          `json:"paid_by" bson:"paid_by"`
	Participants []string        `json:"participants" bson:"participants"`
	SplitMethod  SplitMethod     `json:"split_method" bson:"split_method"`
	Splits       []SplitShare    `json:"splits" bson:"splits"`
	Status       ExpenseStatus   `json:"status" bson:"status"`
	SettledUsers []string        `json:"settled_users" bson:"settled_users"`
	CreatedAt    time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" bson:"updated_at"`
}

// NonPayerParticipants returns every participant except the payer.
func (e *Expense) NonPayerParticipants() []string {
	out := make([]string, 0, len(e.Participants))
	for _, p := range e.Participants {
		if p != e.PaidBy {
			out = append(out, p)
		}
	}
	return out
}

// HasParticipant reports whether userID is part of the expense roster.
func (e *Expense) HasParticipant(userID string) bool {
	for _, p := range e.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// IsSettledBy reports whether userID is already in the settled set.
func (e *Expense) IsSettledBy(userID string) bool {
	for _, u := range e.SettledUsers {
		if u == userID {
			return true
		}
	}
	return false
}
