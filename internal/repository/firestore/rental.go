package firestore

import (
	"context"
	"errors"
	"time"

	gcfirestore "cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"alugaai-backend/internal/domain"
	"alugaai-backend/internal/logger"
	"alugaai-backend/internal/repository"
)

type RentalRepository struct {
	client *gcfirestore.Client
}

var _ repository.RentalRepository = (*RentalRepository)(nil)
var _ repository.RentalWatcher = (*RentalRepository)(nil)

func NewRentalRepository(client *gcfirestore.Client) *RentalRepository {
	return &RentalRepository{client: client}
}

func (r *RentalRepository) col() *gcfirestore.CollectionRef {
	return r.client.Collection(rentalsCollection)
}

func (r *RentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	logger.ExternalServiceCall("firestore", "rentals.create", "id", rt.ID)
	_, err := r.col().Doc(rt.ID).Create(ctx, toRentalDoc(rt))
	logger.ExternalServiceResult("firestore", "rentals.create", err)
	return mapError(err, "rental", rt.ID, "create rental document")
}

func (r *RentalRepository) GetByID(ctx context.Context, id string) (*domain.Rental, error) {
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		return nil, mapError(err, "rental", id, "get rental document")
	}
	rt, err := decodeRental(snap)
	if err != nil {
		return nil, mapError(err, "rental", id, "decode rental document")
	}
	return rt, nil
}

// Update writes the status fields only, leaving the snapshot untouched. The
// read and write share a transaction so a concurrent transition aborts one
// of the two attempts.
func (r *RentalRepository) Update(ctx context.Context, rt *domain.Rental, from domain.RentalStatus) error {
	logger.ExternalServiceCall("firestore", "rentals.update", "id", rt.ID, "from", from, "to", rt.Status)
	doc := r.col().Doc(rt.ID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *gcfirestore.Transaction) error {
		snap, err := tx.Get(doc)
		if err != nil {
			return err
		}
		current, err := decodeRental(snap)
		if err != nil {
			return err
		}
		if current.Status != from {
			return repository.StaleRental(rt.ID, from, current.Status)
		}
		return tx.Update(doc, []gcfirestore.Update{
			{Path: "status", Value: string(rt.Status)},
			{Path: "updated_at", Value: rt.UpdatedAt},
			{Path: "approved_at", Value: rt.ApprovedAt},
			{Path: "rejected_at", Value: rt.RejectedAt},
			{Path: "cancelled_at", Value: rt.CancelledAt},
			{Path: "activated_at", Value: rt.ActivatedAt},
			{Path: "completed_at", Value: rt.CompletedAt},
		})
	})
	logger.ExternalServiceResult("firestore", "rentals.update", err)
	return mapError(err, "rental", rt.ID, "update rental document")
}

func (r *RentalRepository) ListByRequester(ctx context.Context, requesterID string) ([]domain.Rental, error) {
	return r.listWhere(ctx, "requester_id", requesterID)
}

func (r *RentalRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Rental, error) {
	return r.listWhere(ctx, "owner_id", ownerID)
}

func (r *RentalRepository) ListByItem(ctx context.Context, itemID string) ([]domain.Rental, error) {
	return r.listWhere(ctx, "item_id", itemID)
}

func (r *RentalRepository) ListByStatus(ctx context.Context, st domain.RentalStatus) ([]domain.Rental, error) {
	return r.listWhere(ctx, "status", string(st))
}

func (r *RentalRepository) listWhere(ctx context.Context, field, value string) ([]domain.Rental, error) {
	q := r.col().Where(field, "==", value).OrderBy("created_at", gcfirestore.Desc)
	rentals, err := collect(q.Documents(ctx), decodeRentalValue)
	return rentals, mapError(err, "rental", "", "list rental documents by "+field)
}

// WatchRentals listens to the rentals collection and emits one event per
// added or modified document. The initial snapshot is skipped: it describes
// existing state, not changes.
func (r *RentalRepository) WatchRentals(ctx context.Context, emit func(domain.Event)) error {
	log := logger.WithComponent("firestore-watch")
	it := r.col().Snapshots(ctx)
	defer it.Stop()

	first := true
	for {
		qs, err := it.Next()
		if err != nil {
			if ctx.Err() != nil || status.Code(err) == codes.Canceled || errors.Is(err, context.Canceled) {
				return nil
			}
			return mapError(err, "rental", "", "watch rentals")
		}
		if first {
			first = false
			log.Debug("Initial rentals snapshot received", "size", qs.Size)
			continue
		}
		for _, change := range qs.Changes {
			evType, ok := eventTypeFor(change.Kind)
			if !ok {
				continue
			}
			rt, err := decodeRental(change.Doc)
			if err != nil {
				log.Warn("Skipping undecodable rental document", "id", change.Doc.Ref.ID, "error", err)
				continue
			}
			emit(domain.NewRentalEvent(evType, *rt, readTimeOr(qs.ReadTime)))
		}
	}
}

func eventTypeFor(kind gcfirestore.DocumentChangeKind) (domain.EventType, bool) {
	switch kind {
	case gcfirestore.DocumentAdded:
		return domain.EventRentalCreated, true
	case gcfirestore.DocumentModified:
		return domain.EventRentalUpdated, true
	}
	return "", false
}

func readTimeOr(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

func decodeRental(snap *gcfirestore.DocumentSnapshot) (*domain.Rental, error) {
	var doc rentalDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}
	if doc.ID == "" {
		doc.ID = snap.Ref.ID
	}
	return doc.toDomain()
}

func decodeRentalValue(snap *gcfirestore.DocumentSnapshot) (domain.Rental, error) {
	rt, err := decodeRental(snap)
	if err != nil {
		return domain.Rental{}, err
	}
	return *rt, nil
}
