package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type RentalStatus string

const (
	RentalStatusPending   RentalStatus = "pending"
	RentalStatusApproved  RentalStatus = "approved"
	RentalStatusRejected  RentalStatus = "rejected"
	RentalStatusActive    RentalStatus = "active"
	RentalStatusCompleted RentalStatus = "completed"
	RentalStatusCancelled RentalStatus = "cancelled"
)

var ErrInvalidTransition = errors.New("invalid rental status transition")

// rentalTransitions is the full set of legal edges. Statuses without an entry are terminal.
var rentalTransitions = map[RentalStatus][]RentalStatus{
	RentalStatusPending:  {RentalStatusApproved, RentalStatusRejected, RentalStatusCancelled},
	RentalStatusApproved: {RentalStatusActive},
	RentalStatusActive:   {RentalStatusCompleted},
}

func ParseRentalStatus(s string) (RentalStatus, error) {
	st := RentalStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown rental status %q", s)
	}
	return st, nil
}

func (s RentalStatus) Valid() bool {
	switch s {
	case RentalStatusPending, RentalStatusApproved, RentalStatusRejected,
		RentalStatusActive, RentalStatusCompleted, RentalStatusCancelled:
		return true
	}
	return false
}

func (s RentalStatus) IsTerminal() bool {
	return s.Valid() && len(rentalTransitions[s]) == 0
}

func (s RentalStatus) CanTransitionTo(to RentalStatus) bool {
	for _, next := range rentalTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Rental is a request by one user to rent another user's item. The Item*
// fields are a snapshot taken at request time and never change afterwards.
type Rental struct {
	ID              string          `json:"id"`
	ItemID          string          `json:"item_id"`
	ItemTitle       string          `json:"item_title"`
	ItemPricePerDay decimal.Decimal `json:"item_price_per_day"`
	RequesterID     string          `json:"requester_id"`
	RequesterName   string          `json:"requester_name"`
	OwnerID         string          `json:"owner_id"`
	OwnerName       string          `json:"owner_name"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	TotalDays       int             `json:"total_days"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	Status          RentalStatus    `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	RejectedAt      *time.Time      `json:"rejected_at,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	ActivatedAt     *time.Time      `json:"activated_at,omitempty"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
}

// Transition moves the rental to status `to` and stamps the matching
// timestamp. Edges missing from the transition table are rejected.
func (r *Rental) Transition(to RentalStatus, at time.Time) error {
	if !r.Status.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, to)
	}
	ts := at
	switch to {
	case RentalStatusApproved:
		r.ApprovedAt = &ts
	case RentalStatusRejected:
		r.RejectedAt = &ts
	case RentalStatusCancelled:
		r.CancelledAt = &ts
	case RentalStatusActive:
		r.ActivatedAt = &ts
	case RentalStatusCompleted:
		r.CompletedAt = &ts
	}
	r.Status = to
	r.UpdatedAt = at
	return nil
}

// Involves reports whether userID is the requester or the owner.
func (r Rental) Involves(userID string) bool {
	return r.RequesterID == userID || r.OwnerID == userID
}
