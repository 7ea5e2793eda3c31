package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"alugaai-backend/internal/apperr"
	"alugaai-backend/internal/domain"
	"alugaai-backend/internal/events"
	"alugaai-backend/internal/logger"
	"alugaai-backend/internal/repository"
	"alugaai-backend/internal/storage"
	"alugaai-backend/internal/utils"
	"alugaai-backend/internal/validation"
)

// ImagePolicy limits what AttachImage accepts.
type ImagePolicy struct {
	AllowedTypes []string
	MaxBytes     int64
}

type catalogService struct {
	itemRepo  repository.ItemRepository
	blobs     storage.BlobStore
	publisher events.Publisher
	images    ImagePolicy
	now       func() time.Time
}

func NewCatalogService(
	itemRepo repository.ItemRepository,
	blobs storage.BlobStore,
	publisher events.Publisher,
	images ImagePolicy,
) CatalogService {
	return &catalogService{
		itemRepo:  itemRepo,
		blobs:     blobs,
		publisher: publisher,
		images:    images,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *catalogService) AddItem(ctx context.Context, owner domain.Identity, in ItemInput) (*domain.Item, error) {
	logger.EnterMethod("catalogService.AddItem", "ownerID", owner.UserID, "title", in.Title)

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	if err := validation.Struct(in); err != nil {
		logger.ExitMethodWithError("catalogService.AddItem", err)
		return nil, err
	}
	price, err := utils.ParsePrice(in.Price)
	if err != nil {
		return nil, apperr.Validation("validation failed", map[string]string{"price": err.Error()})
	}

	now := s.now()
	item := &domain.Item{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		PricePerDay: price,
		OwnerID:     owner.UserID,
		OwnerName:   owner.Name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		logger.ExitMethodWithError("catalogService.AddItem", err)
		return nil, err
	}

	s.publish(ctx, domain.NewItemEvent(domain.EventItemCreated, *item, now))
	logger.ExitMethod("catalogService.AddItem", "itemID", item.ID)
	return item, nil
}

func (s *catalogService) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	return s.itemRepo.GetByID(ctx, id)
}

func (s *catalogService) UpdateItem(ctx context.Context, actor domain.Identity, id string, in ItemUpdate) (*domain.Item, error) {
	logger.EnterMethod("catalogService.UpdateItem", "itemID", id, "userID", actor.UserID)

	in.Title = trimPtr(in.Title)
	in.Description = trimPtr(in.Description)
	in.Category = trimPtr(in.Category)
	if err := validation.Struct(in); err != nil {
		logger.ExitMethodWithError("catalogService.UpdateItem", err)
		return nil, err
	}

	item, err := s.ownedItem(ctx, actor, id)
	if err != nil {
		logger.ExitMethodWithError("catalogService.UpdateItem", err)
		return nil, err
	}

	patch := domain.ItemPatch{Title: in.Title, Description: in.Description, Category: in.Category}
	if in.Price != nil {
		price, err := utils.ParsePrice(*in.Price)
		if err != nil {
			return nil, apperr.Validation("validation failed", map[string]string{"price": err.Error()})
		}
		patch.PricePerDay = &price
	}
	item.Apply(patch, s.now())

	if err := s.itemRepo.Update(ctx, item); err != nil {
		logger.ExitMethodWithError("catalogService.UpdateItem", err)
		return nil, err
	}

	s.publish(ctx, domain.NewItemEvent(domain.EventItemUpdated, *item, item.UpdatedAt))
	logger.ExitMethod("catalogService.UpdateItem", "itemID", id)
	return item, nil
}

// DeleteItem removes the listing. Rentals keep their snapshot of it.
func (s *catalogService) DeleteItem(ctx context.Context, actor domain.Identity, id string) error {
	logger.EnterMethod("catalogService.DeleteItem", "itemID", id, "userID", actor.UserID)

	item, err := s.ownedItem(ctx, actor, id)
	if err != nil {
		logger.ExitMethodWithError("catalogService.DeleteItem", err)
		return err
	}
	if err := s.itemRepo.Delete(ctx, id); err != nil {
		logger.ExitMethodWithError("catalogService.DeleteItem", err)
		return err
	}

	s.removeBlob(ctx, item.ImageKey)
	s.publish(ctx, domain.Event{Type: domain.EventItemDeleted, ItemID: id, OccurredAt: s.now()})
	logger.ExitMethod("catalogService.DeleteItem", "itemID", id)
	return nil
}

func (s *catalogService) Search(ctx context.Context, query string) ([]domain.Item, error) {
	return s.itemRepo.Search(ctx, query)
}

func (s *catalogService) ListByOwner(ctx context.Context, ownerID string) ([]domain.Item, error) {
	return s.itemRepo.ListByOwner(ctx, ownerID)
}

func (s *catalogService) ListCategories(ctx context.Context) []string {
	return slices.Clone(domain.ItemCategories)
}

func (s *catalogService) AttachImage(ctx context.Context, actor domain.Identity, itemID, filename, contentType string, r io.Reader) (*domain.Item, error) {
	logger.EnterMethod("catalogService.AttachImage", "itemID", itemID, "contentType", contentType)

	if !slices.Contains(s.images.AllowedTypes, contentType) {
		return nil, apperr.Validation("unsupported image type", map[string]string{
			"content_type": "must be one of " + strings.Join(s.images.AllowedTypes, ", "),
		})
	}

	item, err := s.ownedItem(ctx, actor, itemID)
	if err != nil {
		logger.ExitMethodWithError("catalogService.AttachImage", err)
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(r, s.images.MaxBytes+1))
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeValidation, err, "could not read image")
	}
	if len(data) == 0 {
		return nil, apperr.Validation("image is empty", map[string]string{"image": "is required"})
	}
	if int64(len(data)) > s.images.MaxBytes {
		return nil, apperr.Validation("image too large", map[string]string{
			"image": fmt.Sprintf("must be at most %d bytes", s.images.MaxBytes),
		})
	}

	key := storage.ObjectKey(item.ID, filename)
	url, err := s.blobs.Put(ctx, key, contentType, bytes.NewReader(data))
	if err != nil {
		logger.ExitMethodWithError("catalogService.AttachImage", err)
		return nil, apperr.Backend(err, "upload image")
	}

	previous := item.ImageKey
	item.ImageURL = &url
	item.ImageKey = key
	item.UpdatedAt = s.now()
	if err := s.itemRepo.Update(ctx, item); err != nil {
		s.removeBlob(ctx, key)
		logger.ExitMethodWithError("catalogService.AttachImage", err)
		return nil, err
	}
	s.removeBlob(ctx, previous)

	s.publish(ctx, domain.NewItemEvent(domain.EventItemUpdated, *item, item.UpdatedAt))
	logger.ExitMethod("catalogService.AttachImage", "itemID", itemID, "key", key)
	return item, nil
}

func (s *catalogService) ownedItem(ctx context.Context, actor domain.Identity, id string) (*domain.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != actor.UserID {
		return nil, apperr.Forbidden("only the owner can change this item")
	}
	return item, nil
}

func (s *catalogService) removeBlob(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.blobs.Delete(ctx, key); err != nil {
		logger.Warn("Failed to delete image blob", "key", key, "error", err)
	}
}

func (s *catalogService) publish(ctx context.Context, ev domain.Event) {
	if err := s.publisher.Publish(ctx, ev); err != nil {
		logger.Warn("Failed to publish catalog event", "type", ev.Type, "error", err)
	}
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
