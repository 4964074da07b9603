// Package storage defines the persistence port shared by every backend.
//
// Lookups that find nothing return a nil result and a nil error. A malformed
// identifier is reported the same way. Backend failures are returned as
// STORAGE_UNAVAILABLE application errors.
package storage

import (
	"context"
	"sort"
	"time"

	"realtyhub/internal/domain"
	apperrors "realtyhub/pkg/errors"
)

// Storage is implemented by the memory, mongo and relational backends
type Storage interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	CreateUser(ctx context.Context, user domain.NewUser) (*domain.User, error)

	ListActiveProperties(ctx context.Context) ([]domain.Property, error)
	GetProperty(ctx context.Context, id string) (*domain.Property, error)
	CreateProperty(ctx context.Context, p domain.NewProperty) (*domain.Property, error)
	UpdateProperty(ctx context.Context, id string, patch domain.PropertyPatch) (*domain.Property, error)
	DeleteProperty(ctx context.Context, id string) (bool, error)

	GetPropertyImages(ctx context.Context, propertyID string) ([]domain.PropertyImage, error)
	CreatePropertyImage(ctx context.Context, img domain.NewPropertyImage) (*domain.PropertyImage, error)
	DeletePropertyImage(ctx context.Context, id string) (bool, error)
	SetMainImage(ctx context.Context, propertyID, imageID string) (bool, error)

	ListSliderImages(ctx context.Context) ([]domain.SliderImage, error)
	ListAllSliderImages(ctx context.Context) ([]domain.SliderImage, error)
	CreateSliderImage(ctx context.Context, s domain.NewSliderImage) (*domain.SliderImage, error)
	UpdateSliderImage(ctx context.Context, id string, patch domain.SliderImagePatch) (bool, error)
	DeleteSliderImage(ctx context.Context, id string) (bool, error)

	GetWhatsAppSettings(ctx context.Context) (*domain.WhatsAppSettings, error)
	UpdateWhatsAppSettings(ctx context.Context, patch domain.WhatsAppSettingsPatch) (*domain.WhatsAppSettings, error)
	GetContactSettings(ctx context.Context) (*domain.ContactSettings, error)
	UpdateContactSettings(ctx context.Context, patch domain.ContactSettingsPatch) (*domain.ContactSettings, error)

	CreateContactMessage(ctx context.Context, m domain.NewContactMessage) (*domain.ContactMessage, error)
	ListContactMessages(ctx context.Context) ([]domain.ContactMessage, error)
	MarkContactMessageAsRead(ctx context.Context, id string) (bool, error)

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Duplicate is returned by CreateUser when the username is taken
func Duplicate(resource string) error {
	return apperrors.New(apperrors.ErrCodeDuplicateKey, resource+" already exists")
}

// Unavailable wraps a backend failure
func Unavailable(op string, err error) error {
	return apperrors.Unavailable(op+" failed", err)
}

// BuildProperty fills the create defaults: no bedrooms or bathrooms, a single
// "For Sale" status, no image URLs, active, both timestamps set to now.
func BuildProperty(in domain.NewProperty, now time.Time) domain.Property {
	p := domain.Property{
		Title:        in.Title,
		Description:  in.Description,
		Location:     in.Location,
		PropertyType: in.PropertyType,
		Size:         in.Size,
		Status:       []string{domain.StatusForSale},
		ImageURLs:    []string{},
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.Bedrooms != nil {
		p.Bedrooms = *in.Bedrooms
	}
	if in.Bathrooms != nil {
		p.Bathrooms = *in.Bathrooms
	}
	if in.Status != nil {
		p.Status = append([]string{}, in.Status...)
	}
	if in.ImageURLs != nil {
		p.ImageURLs = append([]string{}, in.ImageURLs...)
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	return p
}

func BuildSliderImage(in domain.NewSliderImage, now time.Time) domain.SliderImage {
	s := domain.SliderImage{
		ImageURL:    in.ImageURL,
		Title:       in.Title,
		Description: in.Description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.IsActive != nil {
		s.IsActive = *in.IsActive
	}
	return s
}

func BuildContactMessage(in domain.NewContactMessage, now time.Time) domain.ContactMessage {
	return domain.ContactMessage{
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Message:   in.Message,
		IsRead:    false,
		CreatedAt: now,
	}
}

// SortImages orders images main first, then by ascending sort order.
// Ties keep creation order.
func SortImages(images []domain.PropertyImage) {
	sort.SliceStable(images, func(i, j int) bool {
		if images[i].IsMain != images[j].IsMain {
			return images[i].IsMain
		}
		return images[i].SortOrder < images[j].SortOrder
	})
}

// Now is the clock used by backends. Timestamps are UTC and truncated to
// milliseconds so every backend round-trips them identically.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
