package grpc

import (
	"context"

	"alugaai-backend/internal/service"
)

type CatalogHandler struct {
	catalogSvc service.CatalogService
}

func NewCatalogHandler(catalogSvc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc}
}

func (h *CatalogHandler) AddItem(ctx context.Context, req *AddItemRequest) (*ItemResponse, error) {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	item, err := h.catalogSvc.AddItem(ctx, caller, service.ItemInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
	})
	if err != nil {
		return nil, err
	}
	return &ItemResponse{Item: MapDomainItemToMessage(item)}, nil
}

func (h *CatalogHandler) GetItem(ctx context.Context, req *GetItemRequest) (*ItemResponse, error) {
	item, err := h.catalogSvc.GetItem(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &ItemResponse{Item: MapDomainItemToMessage(item)}, nil
}

func (h *CatalogHandler) UpdateItem(ctx context.Context, req *UpdateItemRequest) (*ItemResponse, error) {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	item, err := h.catalogSvc.UpdateItem(ctx, caller, req.ID, service.ItemUpdate{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
	})
	if err != nil {
		return nil, err
	}
	return &ItemResponse{Item: MapDomainItemToMessage(item)}, nil
}

func (h *CatalogHandler) DeleteItem(ctx context.Context, req *DeleteItemRequest) (*DeleteItemResponse, error) {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.catalogSvc.DeleteItem(ctx, caller, req.ID); err != nil {
		return nil, err
	}
	return &DeleteItemResponse{Success: true}, nil
}

func (h *CatalogHandler) SearchItems(ctx context.Context, req *SearchItemsRequest) (*ListItemsResponse, error) {
	items, err := h.catalogSvc.Search(ctx, req.Query)
	if err != nil {
		return nil, err
	}
	return &ListItemsResponse{Items: MapDomainItemsToMessages(items)}, nil
}

func (h *CatalogHandler) ListMyItems(ctx context.Context, req *ListMyItemsRequest) (*ListItemsResponse, error) {
	caller, err := callerFromContext(ctx)
	if err != nil {
		return nil, err
	}
	items, err := h.catalogSvc.ListByOwner(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return &ListItemsResponse{Items: MapDomainItemsToMessages(items)}, nil
}

func (h *CatalogHandler) ListCategories(ctx context.Context, req *ListCategoriesRequest) (*ListCategoriesResponse, error) {
	return &ListCategoriesResponse{Categories: h.catalogSvc.ListCategories(ctx)}, nil
}
