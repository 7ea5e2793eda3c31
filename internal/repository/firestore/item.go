package firestore

import (
	"context"

	gcfirestore "cloud.google.com/go/firestore"

	"alugaai-backend/internal/domain"
	"alugaai-backend/internal/logger"
	"alugaai-backend/internal/repository"
)

type itemRepository struct {
	client *gcfirestore.Client
}

func NewItemRepository(client *gcfirestore.Client) repository.ItemRepository {
	return &itemRepository{client: client}
}

func (r *itemRepository) col() *gcfirestore.CollectionRef {
	return r.client.Collection(itemsCollection)
}

func (r *itemRepository) Create(ctx context.Context, it *domain.Item) error {
	logger.ExternalServiceCall("firestore", "items.create", "id", it.ID)
	_, err := r.col().Doc(it.ID).Create(ctx, toItemDoc(it))
	logger.ExternalServiceResult("firestore", "items.create", err)
	return mapError(err, "item", it.ID, "create item document")
}

func (r *itemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		return nil, mapError(err, "item", id, "get item document")
	}
	it, err := decodeItem(snap)
	if err != nil {
		return nil, mapError(err, "item", id, "decode item document")
	}
	return it, nil
}

// Update replaces the document inside a transaction so a missing item is
// reported instead of recreated.
func (r *itemRepository) Update(ctx context.Context, it *domain.Item) error {
	ref := r.col().Doc(it.ID)
	logger.ExternalServiceCall("firestore", "items.update", "id", it.ID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *gcfirestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return err
		}
		return tx.Set(ref, toItemDoc(it))
	})
	logger.ExternalServiceResult("firestore", "items.update", err)
	return mapError(err, "item", it.ID, "update item document")
}

func (r *itemRepository) Delete(ctx context.Context, id string) error {
	logger.ExternalServiceCall("firestore", "items.delete", "id", id)
	_, err := r.col().Doc(id).Delete(ctx, gcfirestore.Exists)
	logger.ExternalServiceResult("firestore", "items.delete", err)
	return mapError(err, "item", id, "delete item document")
}

func (r *itemRepository) List(ctx context.Context) ([]domain.Item, error) {
	items, err := collect(r.col().OrderBy("created_at", gcfirestore.Desc).Documents(ctx), decodeItemValue)
	return items, mapError(err, "item", "", "list item documents")
}

func (r *itemRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Item, error) {
	q := r.col().Where("owner_id", "==", ownerID).OrderBy("created_at", gcfirestore.Desc)
	items, err := collect(q.Documents(ctx), decodeItemValue)
	return items, mapError(err, "item", "", "list item documents by owner")
}

// Search filters client side: Firestore has no substring queries.
func (r *itemRepository) Search(ctx context.Context, query string) ([]domain.Item, error) {
	items, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FilterItems(items, query), nil
}

func decodeItem(snap *gcfirestore.DocumentSnapshot) (*domain.Item, error) {
	var doc itemDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}
	if doc.ID == "" {
		doc.ID = snap.Ref.ID
	}
	return doc.toDomain()
}

func decodeItemValue(snap *gcfirestore.DocumentSnapshot) (domain.Item, error) {
	it, err := decodeItem(snap)
	if err != nil {
		return domain.Item{}, err
	}
	return *it, nil
}
