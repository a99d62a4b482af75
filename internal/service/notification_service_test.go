package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/codetrack-go-api/internal/dto"
	"github.com/noah-isme/codetrack-go-api/internal/models"
)

type fakeNotificationRepo struct {
	mu     sync.Mutex
	items  []models.Notification
	nextID uint
}

func (f *fakeNotificationRepo) Create(_ context.Context, notification *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	notification.ID = f.nextID
	notification.CreatedAt = time.Now().UTC()
	notification.UpdatedAt = notification.CreatedAt
	f.items = append(f.items, *notification)
	return nil
}

func (f *fakeNotificationRepo) ListByUser(_ context.Context, userID uint, _, _ int) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []models.Notification
	for _, item := range f.items {
		if item.UserID == userID {
			result = append(result, item)
		}
	}
	return result, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, id, userID uint) (models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.items {
		if f.items[i].ID == id && f.items[i].UserID == userID {
			f.items[i].Read = true
			return f.items[i], nil
		}
	}
	return models.Notification{}, gorm.ErrRecordNotFound
}

func (f *fakeNotificationRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

func newTestNotificationService(repo *fakeNotificationRepo, redisClient *redis.Client) NotificationService {
	return NewNotificationService(repo, redisClient, "codetrack", nil, validator.New(), zerolog.Nop())
}

func TestPublishStripsHTMLFromMessage(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := newTestNotificationService(repo, nil)

	response, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID:  1,
		Type:    "penalty_applied",
		Message: `Great <b>work</b> on <a href="https://evil.example">the test</a>`,
	})
	require.NoError(t, err)
	require.Equal(t, "Great work on the test", response.Message)
	require.Equal(t, uint(1), response.UserID)
	require.NotZero(t, response.ID)
	require.Equal(t, 1, repo.count())
}

func TestPublishRejectsMessageEmptyAfterSanitization(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := newTestNotificationService(repo, nil)

	_, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID:  1,
		Type:    "penalty_applied",
		Message: `<img src="x" onerror="alert(1)">`,
	})
	require.Error(t, err)
	require.Equal(t, 0, repo.count())
}

func TestPublishValidatesPayload(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := newTestNotificationService(repo, nil)

	_, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		Type:    "penalty_applied",
		Message: "missing user",
	})

	var validationErrors validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrors)
	require.Equal(t, 0, repo.count())
}

func TestSubscribeReceivesPublishedNotification(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := newTestNotificationService(repo, nil)

	subscribed, cleanup := svc.Subscribe(7)
	other, otherCleanup := svc.Subscribe(8)
	defer otherCleanup()

	_, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID:  7,
		Type:    "violation_detected",
		Message: "tab switch detected",
	})
	require.NoError(t, err)

	select {
	case received := <-subscribed:
		require.Equal(t, uint(7), received.UserID)
		require.Equal(t, "tab switch detected", received.Message)
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive notification")
	}

	select {
	case unexpected := <-other:
		t.Fatalf("subscriber for another user received %+v", unexpected)
	default:
	}

	cleanup()
	_, open := <-subscribed
	require.False(t, open)
}

func TestListAndMarkRead(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := newTestNotificationService(repo, nil)

	published, err := svc.Publish(context.Background(), dto.NotificationCreateRequest{
		UserID:  3,
		Type:    "penalty_applied",
		Message: "score reduced",
	})
	require.NoError(t, err)

	listed, err := svc.List(context.Background(), 3, 10, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.False(t, listed[0].Read)

	marked, err := svc.MarkRead(context.Background(), published.ID, 3)
	require.NoError(t, err)
	require.True(t, marked.Read)

	// A different user cannot mark someone else's notification.
	_, err = svc.MarkRead(context.Background(), published.ID, 4)
	require.Error(t, err)
}

func TestRedisFanOutReachesOtherNode(t *testing.T) {
	mr := miniredis.RunT(t)
	clientA := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	clientB := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = clientA.Close()
		_ = clientB.Close()
	})

	nodeB := newTestNotificationService(&fakeNotificationRepo{}, clientB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	nodeB.Start(ctx)

	subscribed, cleanup := nodeB.Subscribe(9)
	defer cleanup()

	event := notificationEvent{
		Source: "node-a",
		Notification: dto.NotificationResponse{
			ID:      1,
			UserID:  9,
			Type:    "violation_detected",
			Message: "dev tools opened",
		},
		SentAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	// The consumer goroutine subscribes asynchronously, so republish until
	// the event lands.
	deadline := time.After(2 * time.Second)
	for {
		require.NoError(t, clientA.Publish(ctx, "codetrack:notifications", payload).Err())

		select {
		case received := <-subscribed:
			require.Equal(t, uint(9), received.UserID)
			require.Equal(t, "dev tools opened", received.Message)
			return
		case <-deadline:
			t.Fatal("fan-out event never reached the subscriber")
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestHandleEventIgnoresOwnPublishes(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := newTestNotificationService(repo, nil).(*notificationService)

	subscribed, cleanup := svc.Subscribe(5)
	defer cleanup()

	event := notificationEvent{
		Source: svc.nodeID,
		Notification: dto.NotificationResponse{
			UserID:  5,
			Type:    "penalty_applied",
			Message: "echo from self",
		},
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	svc.handleEvent(payload)

	select {
	case unexpected := <-subscribed:
		t.Fatalf("own event was re-broadcast: %+v", unexpected)
	default:
	}

	event.Source = "another-node"
	payload, err = json.Marshal(event)
	require.NoError(t, err)
	svc.handleEvent(payload)

	select {
	case received := <-subscribed:
		require.Equal(t, "echo from self", received.Message)
	case <-time.After(time.Second):
		t.Fatal("foreign event was not broadcast")
	}
}
