package models

import "time"

type User struct {
	UserID        string         `bson:"_id" json:"user_id"`
	Name          string         `bson:"name" json:"name"`
	Email         string         `bson:"email" json:"email"`
	PaymentHandle string         `bson:"payment_handle,omitempty" json:"payment_handle,omitempty"`
	Notifications []Notification `bson:"notifications" json:"notifications"`
	CreatedAt     time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `bson:"updated_at" json:"updated_at"`
}
