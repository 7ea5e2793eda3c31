package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"alugaai-backend/internal/apperr"
	"alugaai-backend/internal/domain"
	"alugaai-backend/internal/events"
	"alugaai-backend/internal/logger"
	"alugaai-backend/internal/repository"
	"alugaai-backend/internal/utils"
)

type rentalService struct {
	rentalRepo repository.RentalRepository
	itemRepo   repository.ItemRepository
	notifier   Notifier
	publisher  events.Publisher
	recorder   TransitionRecorder
	now        func() time.Time
}

type RentalOption func(*rentalService)

// WithTransitionRecorder reports every successful status change to rec.
func WithTransitionRecorder(rec TransitionRecorder) RentalOption {
	return func(s *rentalService) { s.recorder = rec }
}

// WithClock overrides the time source used for timestamps and default start dates.
func WithClock(now func() time.Time) RentalOption {
	return func(s *rentalService) { s.now = now }
}

func NewRentalService(
	rentalRepo repository.RentalRepository,
	itemRepo repository.ItemRepository,
	notifier Notifier,
	publisher events.Publisher,
	opts ...RentalOption,
) RentalService {
	s := &rentalService{
		rentalRepo: rentalRepo,
		itemRepo:   itemRepo,
		notifier:   notifier,
		publisher:  publisher,
		recorder:   noopRecorder{},
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *rentalService) CreateRental(ctx context.Context, requester domain.Identity, in CreateRentalInput) (*domain.Rental, error) {
	logger.EnterMethod("rentalService.CreateRental", "itemID", in.ItemID, "requesterID", requester.UserID, "days", in.TotalDays)

	if in.ItemID == "" {
		return nil, apperr.Validation("validation failed", map[string]string{"item_id": "is required"})
	}
	if in.TotalDays < 1 {
		return nil, apperr.Validation("validation failed", map[string]string{"total_days": "must be at least 1"})
	}

	item, err := s.itemRepo.GetByID(ctx, in.ItemID)
	if err != nil {
		logger.ExitMethodWithError("rentalService.CreateRental", err)
		return nil, err
	}
	if item.OwnerID == requester.UserID {
		return nil, apperr.Validation("you cannot rent your own item", map[string]string{"item_id": "belongs to the requester"})
	}

	now := s.now()
	start := in.StartDate
	if start.IsZero() {
		start = now
	}
	period := utils.NewRentalPeriod(start, in.TotalDays)

	rental := &domain.Rental{
		ID:              uuid.NewString(),
		ItemID:          item.ID,
		ItemTitle:       item.Title,
		ItemPricePerDay: item.PricePerDay,
		RequesterID:     requester.UserID,
		RequesterName:   requester.Name,
		OwnerID:         item.OwnerID,
		OwnerName:       item.OwnerName,
		StartDate:       period.Start,
		EndDate:         period.End,
		TotalDays:       period.Days,
		TotalPrice:      utils.TotalPrice(item.PricePerDay, period.Days),
		Status:          domain.RentalStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.rentalRepo.Create(ctx, rental); err != nil {
		logger.ExitMethodWithError("rentalService.CreateRental", err)
		return nil, err
	}

	s.publish(ctx, domain.NewRentalEvent(domain.EventRentalCreated, *rental, now))
	s.notifier.RentalRequested(ctx, *rental)

	logger.ExitMethod("rentalService.CreateRental", "rentalID", rental.ID, "total", rental.TotalPrice.StringFixed(2))
	return rental, nil
}

func (s *rentalService) Transition(ctx context.Context, rentalID string, to domain.RentalStatus) (*domain.Rental, error) {
	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, rental, to)
}

func (s *rentalService) Approve(ctx context.Context, actor domain.Identity, rentalID string) (*domain.Rental, error) {
	return s.transitionAs(ctx, actor, rentalID, domain.RentalStatusApproved, ownerOnly)
}

func (s *rentalService) Reject(ctx context.Context, actor domain.Identity, rentalID string) (*domain.Rental, error) {
	return s.transitionAs(ctx, actor, rentalID, domain.RentalStatusRejected, ownerOnly)
}

func (s *rentalService) Activate(ctx context.Context, actor domain.Identity, rentalID string) (*domain.Rental, error) {
	return s.transitionAs(ctx, actor, rentalID, domain.RentalStatusActive, ownerOnly)
}

func (s *rentalService) Complete(ctx context.Context, actor domain.Identity, rentalID string) (*domain.Rental, error) {
	return s.transitionAs(ctx, actor, rentalID, domain.RentalStatusCompleted, ownerOnly)
}

func (s *rentalService) Cancel(ctx context.Context, actor domain.Identity, rentalID string) (*domain.Rental, error) {
	return s.transitionAs(ctx, actor, rentalID, domain.RentalStatusCancelled, requesterOnly)
}

type actorRole int

const (
	ownerOnly actorRole = iota
	requesterOnly
)

func (s *rentalService) transitionAs(ctx context.Context, actor domain.Identity, rentalID string, to domain.RentalStatus, role actorRole) (*domain.Rental, error) {
	logger.EnterMethod("rentalService.transitionAs", "rentalID", rentalID, "to", to, "userID", actor.UserID)

	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		logger.ExitMethodWithError("rentalService.transitionAs", err)
		return nil, err
	}

	switch role {
	case ownerOnly:
		if rental.OwnerID != actor.UserID {
			err := apperr.Forbidden("only the item owner can " + verbFor(to) + " this rental")
			logger.ExitMethodWithError("rentalService.transitionAs", err)
			return nil, err
		}
	case requesterOnly:
		if rental.RequesterID != actor.UserID {
			err := apperr.Forbidden("only the requester can " + verbFor(to) + " this rental")
			logger.ExitMethodWithError("rentalService.transitionAs", err)
			return nil, err
		}
	}

	updated, err := s.apply(ctx, rental, to)
	if err != nil {
		logger.ExitMethodWithError("rentalService.transitionAs", err)
		return nil, err
	}
	logger.ExitMethod("rentalService.transitionAs", "rentalID", rentalID, "status", updated.Status)
	return updated, nil
}

func (s *rentalService) apply(ctx context.Context, rental *domain.Rental, to domain.RentalStatus) (*domain.Rental, error) {
	from := rental.Status
	now := s.now()
	if err := rental.Transition(to, now); err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			return nil, apperr.Wrap(apperr.CodeStateConflict, err, "rental cannot move from "+string(from)+" to "+string(to)).
				WithDetails(map[string]string{"from": string(from), "to": string(to)})
		}
		return nil, err
	}
	if err := s.rentalRepo.Update(ctx, rental, from); err != nil {
		return nil, err
	}

	s.recorder.RecordRentalTransition(from, to)
	s.publish(ctx, domain.NewRentalEvent(domain.EventRentalUpdated, *rental, now))
	s.notifier.RentalStatusChanged(ctx, *rental)
	return rental, nil
}

func (s *rentalService) GetRental(ctx context.Context, actor domain.Identity, rentalID string) (*domain.Rental, error) {
	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if !rental.Involves(actor.UserID) {
		return nil, apperr.Forbidden("rental belongs to other users")
	}
	return rental, nil
}

func (s *rentalService) ListForRequester(ctx context.Context, userID string) ([]domain.Rental, error) {
	return s.rentalRepo.ListByRequester(ctx, userID)
}

// ListForOwner returns incoming requests with pending ones first. Within each
// group the most recent request comes first.
func (s *rentalService) ListForOwner(ctx context.Context, userID string) ([]domain.Rental, error) {
	rentals, err := s.rentalRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rentals, func(i, j int) bool {
		pi := rentals[i].Status == domain.RentalStatusPending
		pj := rentals[j].Status == domain.RentalStatusPending
		if pi != pj {
			return pi
		}
		return rentals[i].CreatedAt.After(rentals[j].CreatedAt)
	})
	return rentals, nil
}

// ListForItem returns the rental history of one listing. Only its owner may
// read it.
func (s *rentalService) ListForItem(ctx context.Context, actor domain.Identity, itemID string) ([]domain.Rental, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != actor.UserID {
		return nil, apperr.Forbidden("only the item owner can list its rentals")
	}
	return s.rentalRepo.ListByItem(ctx, itemID)
}

func (s *rentalService) ListInvolving(ctx context.Context, userID string) ([]domain.Rental, error) {
	mine, err := s.rentalRepo.ListByRequester(ctx, userID)
	if err != nil {
		return nil, err
	}
	incoming, err := s.rentalRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(mine))
	out := make([]domain.Rental, 0, len(mine)+len(incoming))
	for _, r := range append(mine, incoming...) {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *rentalService) ListDue(ctx context.Context, status domain.RentalStatus, asOf time.Time) ([]domain.Rental, error) {
	rentals, err := s.rentalRepo.ListByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	var due []domain.Rental
	for _, r := range rentals {
		boundary := r.StartDate
		if status == domain.RentalStatusActive {
			boundary = r.EndDate
		}
		if !boundary.After(asOf) {
			due = append(due, r)
		}
	}
	return due, nil
}

func (s *rentalService) publish(ctx context.Context, ev domain.Event) {
	if err := s.publisher.Publish(ctx, ev); err != nil {
		logger.Warn("Failed to publish rental event", "type", ev.Type, "error", err)
	}
}

func verbFor(to domain.RentalStatus) string {
	switch to {
	case domain.RentalStatusApproved:
		return "approve"
	case domain.RentalStatusRejected:
		return "reject"
	case domain.RentalStatusActive:
		return "activate"
	case domain.RentalStatusCompleted:
		return "complete"
	case domain.RentalStatusCancelled:
		return "cancel"
	}
	return "change"
}
