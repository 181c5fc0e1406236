package entity

import "time"

const (
	NotificationTypeOrder  = "order"
	NotificationTypeTicket = "ticket"
	NotificationTypeSystem = "system"
)

type Notification struct {
	ID        string    `json:"id" firestore:"id" validate:"required"`
	UserID    string    `json:"user_id" firestore:"userId" validate:"required"`
	Type      string    `json:"type" firestore:"type" validate:"required,oneof=order ticket system"`
	Title     string    `json:"title" firestore:"title" validate:"required"`
	Message   string    `json:"message" firestore:"message"`
	Read      bool      `json:"read" firestore:"read"`
	RelatedID string    `json:"related_id,omitempty" firestore:"relatedId,omitempty"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}
