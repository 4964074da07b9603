package services

import (
	"context"
	"log"

	"realtyhub/internal/domain"
	"realtyhub/internal/storage"
	apperrors "realtyhub/pkg/errors"
)

// PropertyService manages listings and their image records
type PropertyService struct {
	store storage.Storage
}

// NewPropertyService creates a new property service
func NewPropertyService(store storage.Storage) *PropertyService {
	return &PropertyService{store: store}
}

// List returns the active listings, newest first
func (s *PropertyService) List(ctx context.Context) ([]domain.Property, error) {
	list, err := s.store.ListActiveProperties(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Property{}
	}
	return list, nil
}

// Get returns an active listing with its images. Soft-deleted listings are not found.
func (s *PropertyService) Get(ctx context.Context, id string) (*domain.PropertyDetail, error) {
	p, err := s.store.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.IsActive {
		return nil, apperrors.NotFound("Property")
	}

	images, err := s.store.GetPropertyImages(ctx, id)
	if err != nil {
		return nil, err
	}
	if images == nil {
		images = []domain.PropertyImage{}
	}
	return &domain.PropertyDetail{Property: *p, Images: images}, nil
}

func (s *PropertyService) Create(ctx context.Context, in domain.NewProperty) (*domain.Property, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	p, err := s.store.CreateProperty(ctx, in)
	if err != nil {
		return nil, err
	}
	log.Printf("[PROPERTY] Created property id=%s title=%q", p.ID, p.Title)
	return p, nil
}

// Update applies a partial update; omitted fields keep their values
func (s *PropertyService) Update(ctx context.Context, id string, patch domain.PropertyPatch) (*domain.Property, error) {
	if err := domain.Validate(patch); err != nil {
		return nil, err
	}
	p, err := s.store.UpdateProperty(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.NotFound("Property")
	}
	log.Printf("[PROPERTY] Updated property id=%s", p.ID)
	return p, nil
}

// Delete deactivates a listing. The record and its images are kept.
func (s *PropertyService) Delete(ctx context.Context, id string) error {
	ok, err := s.store.DeleteProperty(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NotFound("Property")
	}
	log.Printf("[PROPERTY] Deactivated property id=%s", id)
	return nil
}

func (s *PropertyService) Images(ctx context.Context, propertyID string) ([]domain.PropertyImage, error) {
	p, err := s.store.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.NotFound("Property")
	}
	images, err := s.store.GetPropertyImages(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if images == nil {
		images = []domain.PropertyImage{}
	}
	return images, nil
}

func (s *PropertyService) AddImage(ctx context.Context, propertyID string, in domain.NewPropertyImage) (*domain.PropertyImage, error) {
	in.PropertyID = propertyID
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	img, err := s.store.CreatePropertyImage(ctx, in)
	if err != nil {
		return nil, err
	}
	log.Printf("[PROPERTY] Added image id=%s to property id=%s (main=%v)", img.ID, propertyID, img.IsMain)
	return img, nil
}

func (s *PropertyService) DeleteImage(ctx context.Context, id string) error {
	ok, err := s.store.DeletePropertyImage(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NotFound("Image")
	}
	return nil
}

// SetMainImage makes imageID the only main image of propertyID
func (s *PropertyService) SetMainImage(ctx context.Context, propertyID, imageID string) error {
	if propertyID == "" {
		return apperrors.Validation("propertyId is required")
	}
	ok, err := s.store.SetMainImage(ctx, propertyID, imageID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NotFound("Image")
	}
	log.Printf("[PROPERTY] Main image of property id=%s is now id=%s", propertyID, imageID)
	return nil
}
