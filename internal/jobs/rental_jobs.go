package jobs

import (
	"context"
	"errors"
	"fmt"

	"alugaai-backend/internal/apperr"
	"alugaai-backend/internal/domain"
	"alugaai-backend/internal/logger"
)

const (
	JobActivateStartedRentals = "activate_started_rentals"
	JobCompleteEndedRentals   = "complete_ended_rentals"
)

// ActivateStartedRentals moves approved rentals whose start date has been
// reached to active.
func (jr *JobRunner) ActivateStartedRentals() {
	_, _ = jr.runWithRecovery(JobActivateStartedRentals, func(ctx context.Context) (int, error) {
		return jr.advanceDue(ctx, domain.RentalStatusApproved, domain.RentalStatusActive)
	})
}

// CompleteEndedRentals moves active rentals whose end date has passed to completed.
func (jr *JobRunner) CompleteEndedRentals() {
	_, _ = jr.runWithRecovery(JobCompleteEndedRentals, func(ctx context.Context) (int, error) {
		return jr.advanceDue(ctx, domain.RentalStatusActive, domain.RentalStatusCompleted)
	})
}

// advanceDue transitions every due rental in from to to. A rental that moved
// on concurrently (STATE_CONFLICT) is skipped; other failures are collected
// and the remaining rentals are still processed.
func (jr *JobRunner) advanceDue(ctx context.Context, from, to domain.RentalStatus) (int, error) {
	asOf := jr.now()
	due, err := jr.rentals.ListDue(ctx, from, asOf)
	if err != nil {
		return 0, fmt.Errorf("list %s rentals due by %s: %w", from, asOf.Format("2006-01-02"), err)
	}
	logger.Debug("Found due rentals", "from", from, "to", to, "count", len(due))

	var (
		moved int
		errs  []error
	)
	for _, r := range due {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := jr.rentals.Transition(ctx, r.ID, to); err != nil {
			if apperr.IsCode(err, apperr.CodeStateConflict) {
				logger.Debug("Rental changed before the job reached it", "rental_id", r.ID, "error", err)
				continue
			}
			errs = append(errs, fmt.Errorf("rental %s: %w", r.ID, err))
			continue
		}
		moved++
		logger.Debug("Rental transitioned by job", "rental_id", r.ID, "from", from, "to", to)
	}
	return moved, errors.Join(errs...)
}
