package notify

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cmms-api/internal/domain/entity"
	"github.com/jhoicas/cmms-api/internal/testutil/memrepo"
)

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads [][]byte
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return p.err
}

func sampleNotification() *entity.Notification {
	return &entity.Notification{
		ID:        "n-1",
		UserID:    "admin-1",
		Title:     "Module Expiring Soon",
		Message:   "Your preventive_maintenance module license will expire in 7 days. Please renew to maintain access.",
		Type:      entity.NotificationWarning,
		Link:      "/settings/modules",
		Metadata:  map[string]any{"module_code": "preventive_maintenance", "threshold_days": 7},
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestDispatcher_GuardaYPublica(t *testing.T) {
	store := memrepo.New()
	pub := &recordingPublisher{}
	d := NewDispatcher(store.NotificationsRepo(), pub, zerolog.Nop())

	require.NoError(t, d.Notify(context.Background(), sampleNotification()))

	require.Len(t, store.Notifications(), 1)
	require.Equal(t, []string{SubjectCreated}, pub.subjects)

	var ev Event
	require.NoError(t, json.Unmarshal(pub.payloads[0], &ev))
	assert.Equal(t, "admin-1", ev.UserID)
	assert.Equal(t, "preventive_maintenance", ev.Metadata["module_code"])
}

func TestDispatcher_FalloDePublicacionNoFalla(t *testing.T) {
	store := memrepo.New()
	pub := &recordingPublisher{err: errors.New("nats caído")}
	d := NewDispatcher(store.NotificationsRepo(), pub, zerolog.Nop())

	assert.NoError(t, d.Notify(context.Background(), sampleNotification()))
	assert.Len(t, store.Notifications(), 1)
}

type failingRepo struct{}

func (failingRepo) Create(context.Context, *entity.Notification) error {
	return errors.New("db caída")
}
func (failingRepo) ListByUser(context.Context, string, bool, int) ([]*entity.Notification, error) {
	return nil, nil
}
func (failingRepo) MarkRead(context.Context, string, string) (bool, error) { return false, nil }

func TestDispatcher_FalloDeBandejaDevuelveError(t *testing.T) {
	pub := &recordingPublisher{}
	d := NewDispatcher(failingRepo{}, pub, zerolog.Nop())

	assert.Error(t, d.Notify(context.Background(), sampleNotification()))
	assert.Empty(t, pub.subjects, "sin bandeja no hay evento")
}

func TestNATSPublisher_Publica(t *testing.T) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("requires NATS_URL")
	}
	pub, err := ConnectNATS(url, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = pub.Close() })

	sub, err := pub.Conn().SubscribeSync(SubjectCreated)
	require.NoError(t, err)

	d := NewDispatcher(memrepo.New().NotificationsRepo(), pub, zerolog.Nop())
	require.NoError(t, d.Notify(context.Background(), sampleNotification()))

	msg, err := sub.NextMsg(2 * time.Second)
	require.NoError(t, err)
	assert.Contains(t, string(msg.Data), "Module Expiring Soon")
}
