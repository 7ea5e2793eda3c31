// Package firestore stores the catalog, rentals and accounts in Cloud Firestore
// and turns the rentals collection listener into change-feed events.
package firestore

import (
	"errors"
	"strings"

	gcfirestore "cloud.google.com/go/firestore"
	"golang.org/x/text/cases"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"alugaai-backend/internal/apperr"
	"alugaai-backend/internal/repository"
)

const (
	itemsCollection   = "items"
	rentalsCollection = "rentals"
	usersCollection   = "users"
)

func NewStore(client *gcfirestore.Client) *repository.Store {
	rentals := NewRentalRepository(client)
	return &repository.Store{
		Items:   NewItemRepository(client),
		Rentals: rentals,
		Users:   NewUserRepository(client),
		Watcher: rentals,
		Close:   client.Close,
	}
}

func foldKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// mapError translates Firestore RPC errors into the shared error taxonomy.
func mapError(err error, resource, id, op string) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	switch status.Code(err) {
	case codes.NotFound:
		return apperr.NotFound(resource, id)
	case codes.AlreadyExists:
		return apperr.Wrap(apperr.CodeConflict, err, resource+" already exists")
	}
	return apperr.Backend(err, op)
}

// collect drains a document iterator, decoding each document with decode.
func collect[T any](iter *gcfirestore.DocumentIterator, decode func(*gcfirestore.DocumentSnapshot) (T, error)) ([]T, error) {
	defer iter.Stop()
	out := make([]T, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		v, err := decode(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}
