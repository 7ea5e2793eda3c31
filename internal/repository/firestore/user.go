package firestore

import (
	"context"

	gcfirestore "cloud.google.com/go/firestore"

	"alugaai-backend/internal/apperr"
	"alugaai-backend/internal/domain"
	"alugaai-backend/internal/repository"
)

type userRepository struct {
	client *gcfirestore.Client
}

func NewUserRepository(client *gcfirestore.Client) repository.UserRepository {
	return &userRepository{client: client}
}

func (r *userRepository) col() *gcfirestore.CollectionRef {
	return r.client.Collection(usersCollection)
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	if _, err := r.GetByEmail(ctx, u.Email); err == nil {
		return apperr.New(apperr.CodeConflict, "email already registered")
	} else if !apperr.IsCode(err, apperr.CodeNotFound) {
		return err
	}
	_, err := r.col().Doc(u.ID).Create(ctx, toUserDoc(u))
	return mapError(err, "user", u.ID, "create user document")
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		return nil, mapError(err, "user", id, "get user document")
	}
	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, mapError(err, "user", id, "decode user document")
	}
	return doc.toDomain(), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	q := r.col().Where("email_fold", "==", foldKey(email)).Limit(1)
	users, err := collect(q.Documents(ctx), func(snap *gcfirestore.DocumentSnapshot) (domain.User, error) {
		var doc userDoc
		if err := snap.DataTo(&doc); err != nil {
			return domain.User{}, err
		}
		return *doc.toDomain(), nil
	})
	if err != nil {
		return nil, mapError(err, "user", email, "query user by email")
	}
	if len(users) == 0 {
		return nil, apperr.NotFound("user", email)
	}
	return &users[0], nil
}
