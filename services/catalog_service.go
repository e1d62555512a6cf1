package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/shopspring/decimal"
	"github.com/yunshui/materials-api/logger"
	"github.com/yunshui/materials-api/models"
	"github.com/yunshui/materials-api/repository"
	"go.uber.org/zap"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	priceScale = 2
)

// CatalogService manages the materials catalog
type CatalogService struct {
	materials repository.MaterialRepository
	images    ImageService
}

// NewCatalogService creates a catalog service. images may be nil, in which
// case image uploads are rejected and no image URLs are resolved.
func NewCatalogService(materials repository.MaterialRepository, images ImageService) *CatalogService {
	return &CatalogService{materials: materials, images: images}
}

// MaterialInput is the payload for creating a material
type MaterialInput struct {
	Name     string              `json:"name" validate:"required,max=200"`
	Category string              `json:"category" validate:"max=100"`
	Price    decimal.Decimal     `json:"price"`
	Quantity int                 `json:"quantity" validate:"gte=0"`
	Supplier string              `json:"supplier" validate:"max=200"`
	Type     models.MaterialType `json:"type" validate:"required,oneof=AUXILIARY FINISHED"`
}

// MaterialUpdate is a partial update; nil fields are left unchanged
type MaterialUpdate struct {
	Name     *string              `json:"name" validate:"omitempty,max=200"`
	Category *string              `json:"category" validate:"omitempty,max=100"`
	Price    *decimal.Decimal     `json:"price"`
	Quantity *int                 `json:"quantity" validate:"omitempty,gte=0"`
	Supplier *string              `json:"supplier" validate:"omitempty,max=200"`
	Type     *models.MaterialType `json:"type" validate:"omitempty,oneof=AUXILIARY FINISHED"`
}

// MaterialQuery filters and paginates a catalog listing
type MaterialQuery struct {
	Type     models.MaterialType
	Category string
	Name     string
	Supplier string
	Page     int
	Limit    int
}

// MaterialPage is one page of a catalog listing
type MaterialPage struct {
	Items []models.Material `json:"items"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// Get returns a material by id
func (s *CatalogService) Get(ctx context.Context, id uint) (*models.Material, error) {
	material, err := s.materials.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load material %d: %w", id, err)
	}
	if material == nil {
		return nil, materialNotFound(id)
	}
	s.resolveImage(ctx, material)
	return material, nil
}

// List returns a filtered page of materials and the total match count
func (s *CatalogService) List(ctx context.Context, q MaterialQuery) (*MaterialPage, error) {
	if q.Type != "" && !q.Type.Valid() {
		return nil, invalidInput("unknown material type %q", q.Type)
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	items, total, err := s.materials.List(ctx, repository.MaterialFilter{
		Type:     q.Type,
		Category: q.Category,
		Name:     q.Name,
		Supplier: q.Supplier,
		Offset:   (page - 1) * limit,
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	for i := range items {
		s.resolveImage(ctx, &items[i])
	}
	return &MaterialPage{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// Create adds a material to the catalog
func (s *CatalogService) Create(ctx context.Context, in MaterialInput) (*models.Material, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := checkPrice(in.Price); err != nil {
		return nil, err
	}

	material := &models.Material{
		Name:     in.Name,
		Category: in.Category,
		Price:    in.Price,
		Quantity: in.Quantity,
		Supplier: in.Supplier,
		Type:     in.Type,
	}
	if err := s.materials.Create(ctx, material); err != nil {
		return nil, fmt.Errorf("failed to create material: %w", err)
	}
	logger.FromContext(ctx).Info("material created",
		zap.Uint("material_id", material.ID),
		zap.String("type", string(material.Type)),
	)
	return material, nil
}

// Update applies a partial update to a material
func (s *CatalogService) Update(ctx context.Context, id uint, in MaterialUpdate) (*models.Material, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if in.Price != nil {
		if err := checkPrice(*in.Price); err != nil {
			return nil, err
		}
	}

	material, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		material.Name = *in.Name
	}
	if in.Category != nil {
		material.Category = *in.Category
	}
	if in.Price != nil {
		material.Price = *in.Price
	}
	if in.Quantity != nil {
		material.Quantity = *in.Quantity
	}
	if in.Supplier != nil {
		material.Supplier = *in.Supplier
	}
	if in.Type != nil {
		material.Type = *in.Type
	}

	if err := s.materials.Update(ctx, material); err != nil {
		return nil, fmt.Errorf("failed to update material %d: %w", id, err)
	}
	return material, nil
}

// UpdateQuantity sets the stock quantity of a material
func (s *CatalogService) UpdateQuantity(ctx context.Context, id uint, quantity int) (*models.Material, error) {
	if quantity < 0 {
		return nil, invalidInput("quantity must not be negative")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.materials.UpdateQuantity(ctx, id, quantity); err != nil {
		return nil, fmt.Errorf("failed to update quantity of material %d: %w", id, err)
	}
	return s.Get(ctx, id)
}

// Delete removes a material and, best effort, its picture
func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	material, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.materials.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete material %d: %w", id, err)
	}
	if material.ImageKey != nil {
		s.deleteImage(ctx, *material.ImageKey)
	}
	return nil
}

// AttachImage uploads a picture for a material, replacing any previous one
func (s *CatalogService) AttachImage(ctx context.Context, id uint, file *multipart.FileHeader) (*models.Material, error) {
	if s.images == nil {
		return nil, fmt.Errorf("image storage is not configured")
	}
	material, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	key, err := s.images.UploadImage(ctx, file)
	if err != nil {
		return nil, err
	}

	previous := material.ImageKey
	material.ImageKey = &key
	material.ImageURL = nil
	if err := s.materials.Update(ctx, material); err != nil {
		return nil, fmt.Errorf("failed to save image of material %d: %w", id, err)
	}
	if previous != nil && *previous != key {
		s.deleteImage(ctx, *previous)
	}

	s.resolveImage(ctx, material)
	return material, nil
}

// checkPrice rejects negative prices and prices the decimal(12,2) column would round
func checkPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return invalidInput("price must not be negative")
	}
	if !price.Equal(price.Round(priceScale)) {
		return invalidInput("price must have at most %d decimal places", priceScale)
	}
	return nil
}

func (s *CatalogService) resolveImage(ctx context.Context, material *models.Material) {
	if s.images == nil || material.ImageKey == nil {
		return
	}
	url, err := s.images.GetImageURL(ctx, *material.ImageKey)
	if err != nil {
		logger.FromContext(ctx).Warn("failed to resolve material image",
			zap.Uint("material_id", material.ID),
			zap.Error(err),
		)
		return
	}
	material.ImageURL = &url
}

func (s *CatalogService) deleteImage(ctx context.Context, key string) {
	if s.images == nil {
		return
	}
	if err := s.images.DeleteImage(ctx, key); err != nil {
		logger.FromContext(ctx).Warn("failed to delete material image", zap.String("image_key", key), zap.Error(err))
	}
}
