package services

import (
	"context"

	"realtyhub/internal/domain"
	"realtyhub/internal/storage"
	apperrors "realtyhub/pkg/errors"
)

// SliderService manages the home page carousel
type SliderService struct {
	store storage.Storage
}

func NewSliderService(store storage.Storage) *SliderService {
	return &SliderService{store: store}
}

func (s *SliderService) ListActive(ctx context.Context) ([]domain.SliderImage, error) {
	return nonNil(s.store.ListSliderImages(ctx))
}

// ListAll includes inactive slides for the back office
func (s *SliderService) ListAll(ctx context.Context) ([]domain.SliderImage, error) {
	return nonNil(s.store.ListAllSliderImages(ctx))
}

func nonNil(list []domain.SliderImage, err error) ([]domain.SliderImage, error) {
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.SliderImage{}
	}
	return list, nil
}

func (s *SliderService) Create(ctx context.Context, in domain.NewSliderImage) (*domain.SliderImage, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	return s.store.CreateSliderImage(ctx, in)
}

func (s *SliderService) Update(ctx context.Context, id string, patch domain.SliderImagePatch) error {
	if err := domain.Validate(patch); err != nil {
		return err
	}
	ok, err := s.store.UpdateSliderImage(ctx, id, patch)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NotFound("Slider image")
	}
	return nil
}

func (s *SliderService) Delete(ctx context.Context, id string) error {
	ok, err := s.store.DeleteSliderImage(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NotFound("Slider image")
	}
	return nil
}
