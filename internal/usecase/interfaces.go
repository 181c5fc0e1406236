package usecase

import (
	"context"

	"vendora/internal/domain/entity"
	"vendora/internal/infrastructure/firebase"
)

type FirebaseAuthClient interface {
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	DeleteUser(ctx context.Context, uid string) error
	VerifyToken(ctx context.Context, token string) (string, error)
	SignInWithEmailPassword(ctx context.Context, email, password string) (*firebase.TokenPair, error)
	RefreshIDToken(ctx context.Context, refreshToken string) (*firebase.TokenPair, error)
	RevokeSessions(ctx context.Context, uid string) error
}

// RealtimePusher delivers an event to a user's open websocket connections.
type RealtimePusher interface {
	Push(userID, eventType string, data interface{}) error
}

type NotificationPublisher interface {
	PublishNotification(ctx context.Context, notification *entity.Notification) (string, error)
}
