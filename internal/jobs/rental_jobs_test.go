package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alugaai-backend/internal/config"
	"alugaai-backend/internal/domain"
	"alugaai-backend/internal/events"
	"alugaai-backend/internal/metrics"
	"alugaai-backend/internal/repository/memory"
	"alugaai-backend/internal/service"
)

var (
	requestedAt = time.Date(2024, time.March, 9, 10, 0, 0, 0, time.UTC)

	owner     = domain.Identity{UserID: "owner-1", Name: "Ana", Email: "ana@example.com"}
	requester = domain.Identity{UserID: "req-1", Name: "Bruno", Email: "bruno@example.com"}
)

type jobFixture struct {
	rentals service.RentalService
	catalog service.CatalogService
	reg     *prometheus.Registry
}

func newJobFixture(t *testing.T) *jobFixture {
	t.Helper()
	store := memory.NewStore(false)
	notifier := service.NewEmailNotifier(service.NewLogMailer(), store.Users)
	return &jobFixture{
		catalog: service.NewCatalogService(store.Items, nil, events.Discard, service.ImagePolicy{}),
		rentals: service.NewRentalService(store.Rentals, store.Items, notifier, events.Discard,
			service.WithClock(func() time.Time { return requestedAt })),
		reg: prometheus.NewRegistry(),
	}
}

func (f *jobFixture) runner(at time.Time) *JobRunner {
	return NewJobRunner(f.rentals, &config.Config{}, metrics.NewCronJobMetrics(f.reg),
		WithClock(func() time.Time { return at }))
}

func (f *jobFixture) pendingRental(t *testing.T, start time.Time, days int) *domain.Rental {
	t.Helper()
	ctx := context.Background()
	item, err := f.catalog.AddItem(ctx, owner, service.ItemInput{
		Title:       "Furadeira",
		Description: "Furadeira de impacto 750W",
		Category:    "Ferramentas",
		Price:       "R$ 15/dia",
	})
	require.NoError(t, err)
	r, err := f.rentals.CreateRental(ctx, requester, service.CreateRentalInput{ItemID: item.ID, StartDate: start, TotalDays: days})
	require.NoError(t, err)
	return r
}

// approvedRental creates a rental starting on start for days and approves it.
func (f *jobFixture) approvedRental(t *testing.T, start time.Time, days int) *domain.Rental {
	t.Helper()
	r, err := f.rentals.Approve(context.Background(), owner, f.pendingRental(t, start, days).ID)
	require.NoError(t, err)
	return r
}

func (f *jobFixture) status(t *testing.T, id string) domain.RentalStatus {
	t.Helper()
	r, err := f.rentals.GetRental(context.Background(), owner, id)
	require.NoError(t, err)
	return r.Status
}

func (f *jobFixture) counter(t *testing.T, name, job string) float64 {
	t.Helper()
	mfs, err := f.reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "job" && l.GetValue() == job {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestActivateStartedRentals(t *testing.T) {
	f := newJobFixture(t)
	startsToday := f.approvedRental(t, requestedAt, 2)
	startsLater := f.approvedRental(t, requestedAt.AddDate(0, 0, 3), 2)

	f.runner(requestedAt).ActivateStartedRentals()

	assert.Equal(t, domain.RentalStatusActive, f.status(t, startsToday.ID))
	assert.Equal(t, domain.RentalStatusApproved, f.status(t, startsLater.ID))
	assert.Equal(t, 1.0, f.counter(t, "alugaai_job_success_total", JobActivateStartedRentals))
	assert.Equal(t, 1.0, f.counter(t, "alugaai_job_rentals_transitioned_total", JobActivateStartedRentals))
}

func TestCompleteEndedRentals(t *testing.T) {
	f := newJobFixture(t)
	r := f.approvedRental(t, requestedAt, 2)

	t.Run("Not yet ended", func(t *testing.T) {
		runner := f.runner(requestedAt)
		runner.ActivateStartedRentals()
		runner.CompleteEndedRentals()
		assert.Equal(t, domain.RentalStatusActive, f.status(t, r.ID))
	})

	t.Run("End date reached", func(t *testing.T) {
		f.runner(r.EndDate).CompleteEndedRentals()
		assert.Equal(t, domain.RentalStatusCompleted, f.status(t, r.ID))
		assert.Equal(t, 1.0, f.counter(t, "alugaai_job_rentals_transitioned_total", JobCompleteEndedRentals))
	})
}

func TestRunAll_ActivatesBeforeCompleting(t *testing.T) {
	f := newJobFixture(t)
	r := f.approvedRental(t, requestedAt, 1)

	f.runner(requestedAt.AddDate(0, 0, 5)).RunAll()

	assert.Equal(t, domain.RentalStatusCompleted, f.status(t, r.ID))
}

func TestAdvanceDue_SkipsPendingAndCancelled(t *testing.T) {
	f := newJobFixture(t)
	ctx := context.Background()
	approved := f.approvedRental(t, requestedAt, 2)
	pending := f.pendingRental(t, requestedAt, 2)
	cancelled := f.pendingRental(t, requestedAt, 2)
	_, err := f.rentals.Cancel(ctx, requester, cancelled.ID)
	require.NoError(t, err)

	n, err := f.runner(requestedAt).advanceDue(ctx, domain.RentalStatusApproved, domain.RentalStatusActive)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, domain.RentalStatusActive, f.status(t, approved.ID))
	assert.Equal(t, domain.RentalStatusPending, f.status(t, pending.ID))
	assert.Equal(t, domain.RentalStatusCancelled, f.status(t, cancelled.ID))
}

// stubRentals fails or panics on ListDue; other methods are unused.
type stubRentals struct {
	service.RentalService
	err   error
	panic bool
}

func (s stubRentals) ListDue(context.Context, domain.RentalStatus, time.Time) ([]domain.Rental, error) {
	if s.panic {
		panic("store exploded")
	}
	return nil, s.err
}

func TestRunWithRecovery(t *testing.T) {
	t.Run("Failure is counted", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		f := &jobFixture{reg: reg}
		jr := NewJobRunner(stubRentals{err: errors.New("connection refused")}, &config.Config{}, metrics.NewCronJobMetrics(reg))

		jr.ActivateStartedRentals()

		assert.Equal(t, 1.0, f.counter(t, "alugaai_job_failure_total", JobActivateStartedRentals))
		assert.Equal(t, 0.0, f.counter(t, "alugaai_job_success_total", JobActivateStartedRentals))
	})

	t.Run("Panic is recovered", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		f := &jobFixture{reg: reg}
		jr := NewJobRunner(stubRentals{panic: true}, &config.Config{}, metrics.NewCronJobMetrics(reg))

		n, err := jr.runWithRecovery(JobCompleteEndedRentals, func(ctx context.Context) (int, error) {
			return jr.advanceDue(ctx, domain.RentalStatusActive, domain.RentalStatusCompleted)
		})

		assert.Zero(t, n)
		assert.ErrorContains(t, err, "panicked")
		assert.Equal(t, 1.0, f.counter(t, "alugaai_job_failure_total", JobCompleteEndedRentals))
	})

	t.Run("Nil metrics", func(t *testing.T) {
		jr := NewJobRunner(stubRentals{}, &config.Config{}, nil)
		assert.NotPanics(t, jr.RunAll)
	})
}
