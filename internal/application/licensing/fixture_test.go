package licensing

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/cmms-api/internal/domain/entity"
	"github.com/jhoicas/cmms-api/internal/domain/repository"
	"github.com/jhoicas/cmms-api/internal/testutil/memrepo"
)

const testOrg = "org-1"

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	repo repository.NotificationRepository
}

func (n *recordingNotifier) Notify(ctx context.Context, notif *entity.Notification) error {
	return n.repo.Create(ctx, notif)
}

type fixture struct {
	store    *memrepo.Store
	svc      *Service
	tracker  *ConcurrencyTracker
	eval     *Evaluator
	archival *ArchivalService
	usage    *UsageRecorder
	requests *RequestService
	sched    *Scheduler
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memrepo.New()
	store.AddOrganization(&entity.Organization{ID: testOrg, Name: "Planta Norte", Status: entity.OrganizationActive})

	f := &fixture{store: store, now: t0}
	clock := func() time.Time { return f.now }
	log := zerolog.Nop()

	f.svc = NewService(store.Organizations(), store.Licenses(), store.Logs(), nil, log)
	f.svc.now = clock
	f.tracker = NewConcurrencyTracker(store.Logs(), 0)
	f.tracker.now = clock
	f.eval = NewEvaluator(store.Licenses(), store.Logs(), f.tracker, nil, nil, log)
	f.eval.now = clock
	f.archival = NewArchivalService(store.DataArchives(), store.Rows(), store.TxRunner(), nil, log, 0)
	f.archival.now = clock
	f.usage = NewUsageRecorder(store.Usage())
	f.usage.now = clock
	f.requests = NewRequestService(store.Requests(), f.svc)
	f.requests.now = clock
	f.sched = NewScheduler(f.svc, f.archival, store.Users(),
		&recordingNotifier{repo: store.NotificationsRepo()}, nil, nil, log, SchedulerConfig{})
	return f
}

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func (f *fixture) at(d time.Duration) *time.Time {
	t := f.now.Add(d)
	return &t
}

func intPtr(n int) *int       { return &n }
func int64Ptr(n int64) *int64 { return &n }
