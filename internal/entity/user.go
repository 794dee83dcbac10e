package entity

import (
	"context"
	"time"
)

// NotificationService delivers a text message to a single user.
type NotificationService interface {
	SendNotification(ctx context.Context, message string) error
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"` // where Notifier delivers, e.g. a webhook URL
	CreatedAt time.Time `json:"created_at,omitempty"`

	Notifier NotificationService `json:"-"`
}
