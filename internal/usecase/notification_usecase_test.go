package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendora/internal/domain/entity"
	"vendora/internal/infrastructure/websocket"
	"vendora/pkg/errors"
)

type recordingPublisher struct {
	published []*entity.Notification
	err       error
}

func (p *recordingPublisher) PublishNotification(_ context.Context, n *entity.Notification) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.published = append(p.published, n)
	return fmt.Sprintf("msg-%d", len(p.published)), nil
}

type failingNotifications struct{ memNotifications }

func (f *failingNotifications) Create(context.Context, *entity.Notification) error {
	return fmt.Errorf("firestore unavailable")
}

func TestNotificationUseCase_NotifyFansOut(t *testing.T) {
	repo := &memNotifications{}
	pusher := &fakePusher{}
	publisher := &recordingPublisher{}
	uc := NewNotificationUseCase(repo, pusher, publisher, nil)

	n := uc.Notify(context.Background(), "v1", entity.NotificationTypeOrder, "New order received", "Order o1", "o1")
	require.NotNil(t, n)
	assert.NotEmpty(t, n.ID)

	assert.Len(t, repo.forUser("v1"), 1)
	require.Len(t, pusher.ofType(websocket.EventNotification), 1)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, "o1", publisher.published[0].RelatedID)
}

func TestNotificationUseCase_NotifyNeverFails(t *testing.T) {
	pusher := &fakePusher{}
	uc := NewNotificationUseCase(&failingNotifications{}, pusher, &recordingPublisher{}, nil)

	assert.Nil(t, uc.Notify(context.Background(), "v1", entity.NotificationTypeOrder, "t", "m", ""))
	assert.Empty(t, pusher.events)

	uc = NewNotificationUseCase(&memNotifications{}, nil, &recordingPublisher{err: fmt.Errorf("topic gone")}, nil)
	assert.NotNil(t, uc.Notify(context.Background(), "v1", entity.NotificationTypeOrder, "t", "m", ""))
}

func TestNotificationUseCase_MarkRead(t *testing.T) {
	repo := &memNotifications{}
	uc := NewNotificationUseCase(repo, nil, nil, nil)
	ctx := context.Background()

	first := uc.Notify(ctx, "c1", entity.NotificationTypeOrder, "Order shipped", "", "o1")
	uc.Notify(ctx, "c1", entity.NotificationTypeTicket, "New reply", "", "t1")
	other := uc.Notify(ctx, "c2", entity.NotificationTypeOrder, "Order shipped", "", "o2")

	err := uc.MarkRead(ctx, "c1", other.ID)
	assert.True(t, errors.Is(err, "NOT_FOUND"))

	require.NoError(t, uc.MarkRead(ctx, "c1", first.ID))
	unread, err := uc.List(ctx, "c1", true, 0)
	require.NoError(t, err)
	assert.Len(t, unread, 1)

	count, err := uc.MarkAllRead(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	unread, err = uc.List(ctx, "c1", true, 0)
	require.NoError(t, err)
	assert.Empty(t, unread)
}
