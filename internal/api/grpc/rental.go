package grpc

import (
	"context"
	"time"

	"alugaai-backend/internal/apperr"
	"alugaai-backend/internal/domain"
	"alugaai-backend/internal/events"
	"alugaai-backend/internal/logger"
	"alugaai-backend/internal/service"
	"alugaai-backend/internal/utils"
)

type RentalHandler struct {
	rentalSvc service.RentalService
	feed      events.Subscriber
}

func NewRentalHandler(rentalSvc service.RentalService, feed events.Subscriber) *RentalHandler {
	return &RentalHandler{rentalSvc: rentalSvc, feed: feed}
}

func (h *RentalHandler) CreateRental(ctx context.Context, req *CreateRentalRequest) (*RentalResponse, error) {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}

	in := service.CreateRentalInput{
		ItemID:    req.ItemID,
		TotalDays: utils.NormalizeDays(int(req.TotalDays)),
	}
	if req.StartDate != "" {
		start, err := utils.ParseDate(req.StartDate)
		if err != nil {
			return nil, apperr.Validation("validation failed", map[string]string{"start_date": "must be a date in yyyy-mm-dd format"})
		}
		in.StartDate = start
	}

	rt, err := h.rentalSvc.CreateRental(ctx, caller, in)
	if err != nil {
		return nil, err
	}
	return &RentalResponse{Rental: MapDomainRentalToMessage(rt)}, nil
}

func (h *RentalHandler) GetRental(ctx context.Context, req *RentalIDRequest) (*RentalResponse, error) {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	rt, err := h.rentalSvc.GetRental(ctx, caller, req.ID)
	if err != nil {
		return nil, err
	}
	return &RentalResponse{Rental: MapDomainRentalToMessage(rt)}, nil
}

type rentalAction func(context.Context, domain.Identity, string) (*domain.Rental, error)

func (h *RentalHandler) act(ctx context.Context, id string, action rentalAction) (*RentalResponse, error) {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	rt, err := action(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return &RentalResponse{Rental: MapDomainRentalToMessage(rt)}, nil
}

func (h *RentalHandler) ApproveRental(ctx context.Context, req *RentalIDRequest) (*RentalResponse, error) {
	return h.act(ctx, req.ID, h.rentalSvc.Approve)
}

func (h *RentalHandler) RejectRental(ctx context.Context, req *RentalIDRequest) (*RentalResponse, error) {
	return h.act(ctx, req.ID, h.rentalSvc.Reject)
}

func (h *RentalHandler) CancelRental(ctx context.Context, req *RentalIDRequest) (*RentalResponse, error) {
	return h.act(ctx, req.ID, h.rentalSvc.Cancel)
}

func (h *RentalHandler) ActivateRental(ctx context.Context, req *RentalIDRequest) (*RentalResponse, error) {
	return h.act(ctx, req.ID, h.rentalSvc.Activate)
}

func (h *RentalHandler) CompleteRental(ctx context.Context, req *RentalIDRequest) (*RentalResponse, error) {
	return h.act(ctx, req.ID, h.rentalSvc.Complete)
}

func (h *RentalHandler) ListMyRentals(ctx context.Context, req *ListMyRentalsRequest) (*ListRentalsResponse, error) {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	rentals, err := h.rentalSvc.ListForRequester(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return &ListRentalsResponse{Rentals: MapDomainRentalsToMessages(rentals)}, nil
}

func (h *RentalHandler) ListIncomingRequests(ctx context.Context, req *ListIncomingRequestsRequest) (*ListRentalsResponse, error) {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	rentals, err := h.rentalSvc.ListForOwner(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return &ListRentalsResponse{Rentals: MapDomainRentalsToMessages(rentals)}, nil
}

// ListItemRentals returns the rental history of one of the caller's items.
func (h *RentalHandler) ListItemRentals(ctx context.Context, req *ListItemRentalsRequest) (*ListRentalsResponse, error) {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if req.ItemID == "" {
		return nil, apperr.Validation("validation failed", map[string]string{"item_id": "is required"})
	}
	rentals, err := h.rentalSvc.ListForItem(ctx, caller, req.ItemID)
	if err != nil {
		return nil, err
	}
	return &ListRentalsResponse{Rentals: MapDomainRentalsToMessages(rentals)}, nil
}

// WatchRentals sends the caller's rentals, then every rental event that
// involves the caller until the client goes away.
func (h *RentalHandler) WatchRentals(req *WatchRentalsRequest, stream RentalWatchStream) error {
	ctx := stream.Context()
	caller, err := callerFromContext(ctx)
	if err != nil {
		return err
	}

	// subscribe before reading the snapshot so no write falls in between
	evs, cancel := h.feed.Subscribe()
	defer cancel()

	snapshot, err := h.rentalSvc.ListInvolving(ctx, caller.UserID)
	if err != nil {
		return err
	}
	if err := stream.Send(&WatchRentalsResponse{
		Type:       "snapshot",
		Rentals:    MapDomainRentalsToMessages(snapshot),
		OccurredAt: formatTime(time.Now()),
	}); err != nil {
		return err
	}

	log := logger.WithComponent("grpc-watch")
	log.Debug("Rental watch started", "userID", caller.UserID)
	for {
		select {
		case <-ctx.Done():
			log.Debug("Rental watch ended", "userID", caller.UserID)
			return nil
		case ev, ok := <-evs:
			if !ok {
				return nil
			}
			if !ev.ConcernsUser(caller.UserID) {
				continue
			}
			if err := stream.Send(&WatchRentalsResponse{
				Type:       string(ev.Type),
				Rental:     MapDomainRentalToMessage(ev.Rental),
				OccurredAt: formatTime(ev.OccurredAt),
			}); err != nil {
				return err
			}
		}
	}
}
