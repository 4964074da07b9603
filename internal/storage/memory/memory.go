// Package memory is a volatile Storage backend guarded by a single RWMutex.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"realtyhub/internal/domain"
	"realtyhub/internal/storage"
	apperrors "realtyhub/pkg/errors"
)

// Store keeps every entity in insertion-ordered slices
type Store struct {
	mu sync.RWMutex

	users      []*domain.User
	properties []*domain.Property
	images     []*domain.PropertyImage
	sliders    []*domain.SliderImage
	messages   []*domain.ContactMessage

	whatsapp *domain.WhatsAppSettings
	contact  *domain.ContactSettings
}

var _ storage.Storage = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func newID() string {
	return uuid.NewString()
}

// Users

func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) CreateUser(ctx context.Context, in domain.NewUser) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == in.Username {
			return nil, storage.Duplicate("username")
		}
	}
	u := &domain.User{
		ID:           newID(),
		Username:     in.Username,
		PasswordHash: in.PasswordHash,
		IsAdmin:      in.IsAdmin,
		CreatedAt:    storage.Now(),
	}
	s.users = append(s.users, u)
	cp := *u
	return &cp, nil
}

// Properties

func copyProperty(p *domain.Property) *domain.Property {
	cp := *p
	cp.Status = append([]string{}, p.Status...)
	cp.ImageURLs = append([]string{}, p.ImageURLs...)
	return &cp
}

func (s *Store) findProperty(id string) *domain.Property {
	for _, p := range s.properties {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Store) ListActiveProperties(ctx context.Context) ([]domain.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Property{}
	for i := len(s.properties) - 1; i >= 0; i-- {
		if s.properties[i].IsActive {
			out = append(out, *copyProperty(s.properties[i]))
		}
	}
	return out, nil
}

func (s *Store) GetProperty(ctx context.Context, id string) (*domain.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p := s.findProperty(id); p != nil {
		return copyProperty(p), nil
	}
	return nil, nil
}

func (s *Store) CreateProperty(ctx context.Context, in domain.NewProperty) (*domain.Property, error) {
	p := storage.BuildProperty(in, storage.Now())
	p.ID = newID()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.properties = append(s.properties, &p)
	return copyProperty(&p), nil
}

func (s *Store) UpdateProperty(ctx context.Context, id string, patch domain.PropertyPatch) (*domain.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findProperty(id)
	if p == nil {
		return nil, nil
	}
	patch.Apply(p)
	p.UpdatedAt = storage.Now()
	return copyProperty(p), nil
}

func (s *Store) DeleteProperty(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findProperty(id)
	if p == nil {
		return false, nil
	}
	p.IsActive = false
	p.UpdatedAt = storage.Now()
	return true, nil
}

// Property images

func (s *Store) GetPropertyImages(ctx context.Context, propertyID string) ([]domain.PropertyImage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.PropertyImage{}
	for _, img := range s.images {
		if img.PropertyID == propertyID {
			out = append(out, *img)
		}
	}
	storage.SortImages(out)
	return out, nil
}

func (s *Store) CreatePropertyImage(ctx context.Context, in domain.NewPropertyImage) (*domain.PropertyImage, error) {
	img := &domain.PropertyImage{
		ID:         newID(),
		PropertyID: in.PropertyID,
		ImageURL:   in.ImageURL,
		Caption:    in.Caption,
		IsMain:     in.IsMain,
		SortOrder:  in.SortOrder,
		CreatedAt:  storage.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findProperty(in.PropertyID) == nil {
		return nil, apperrors.NotFound("property")
	}
	if img.IsMain {
		s.clearMain(in.PropertyID)
	}
	s.images = append(s.images, img)
	cp := *img
	return &cp, nil
}

func (s *Store) DeletePropertyImage(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, img := range s.images {
		if img.ID == id {
			s.images = append(s.images[:i], s.images[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) clearMain(propertyID string) {
	for _, img := range s.images {
		if img.PropertyID == propertyID {
			img.IsMain = false
		}
	}
}

func (s *Store) SetMainImage(ctx context.Context, propertyID, imageID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var target *domain.PropertyImage
	for _, img := range s.images {
		if img.ID == imageID && img.PropertyID == propertyID {
			target = img
			break
		}
	}
	if target == nil {
		return false, nil
	}
	s.clearMain(propertyID)
	target.IsMain = true
	return true, nil
}

// Slider

func (s *Store) listSliders(activeOnly bool) []domain.SliderImage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.SliderImage{}
	for _, sl := range s.sliders {
		if !activeOnly || sl.IsActive {
			out = append(out, *sl)
		}
	}
	return out
}

func (s *Store) ListSliderImages(ctx context.Context) ([]domain.SliderImage, error) {
	return s.listSliders(true), nil
}

func (s *Store) ListAllSliderImages(ctx context.Context) ([]domain.SliderImage, error) {
	return s.listSliders(false), nil
}

func (s *Store) CreateSliderImage(ctx context.Context, in domain.NewSliderImage) (*domain.SliderImage, error) {
	sl := storage.BuildSliderImage(in, storage.Now())
	sl.ID = newID()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sliders = append(s.sliders, &sl)
	cp := sl
	return &cp, nil
}

func (s *Store) UpdateSliderImage(ctx context.Context, id string, patch domain.SliderImagePatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sl := range s.sliders {
		if sl.ID == id {
			patch.Apply(sl)
			sl.UpdatedAt = storage.Now()
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) DeleteSliderImage(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sl := range s.sliders {
		if sl.ID == id {
			s.sliders = append(s.sliders[:i], s.sliders[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// Settings

func (s *Store) GetWhatsAppSettings(ctx context.Context) (*domain.WhatsAppSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.whatsapp == nil {
		return nil, nil
	}
	cp := *s.whatsapp
	return &cp, nil
}

func (s *Store) UpdateWhatsAppSettings(ctx context.Context, patch domain.WhatsAppSettingsPatch) (*domain.WhatsAppSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := storage.Now()
	if s.whatsapp == nil {
		def := domain.DefaultWhatsAppSettings(now)
		s.whatsapp = &def
	}
	patch.Apply(s.whatsapp)
	s.whatsapp.UpdatedAt = now
	cp := *s.whatsapp
	return &cp, nil
}

func (s *Store) GetContactSettings(ctx context.Context) (*domain.ContactSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.contact == nil {
		return nil, nil
	}
	cp := *s.contact
	return &cp, nil
}

func (s *Store) UpdateContactSettings(ctx context.Context, patch domain.ContactSettingsPatch) (*domain.ContactSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := storage.Now()
	if s.contact == nil {
		def := domain.DefaultContactSettings(now)
		s.contact = &def
	}
	patch.Apply(s.contact)
	s.contact.UpdatedAt = now
	cp := *s.contact
	return &cp, nil
}

// Contact messages

func (s *Store) CreateContactMessage(ctx context.Context, in domain.NewContactMessage) (*domain.ContactMessage, error) {
	m := storage.BuildContactMessage(in, storage.Now())
	m.ID = newID()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, &m)
	cp := m
	return &cp, nil
}

func (s *Store) ListContactMessages(ctx context.Context) ([]domain.ContactMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ContactMessage, 0, len(s.messages))
	for i := len(s.messages) - 1; i >= 0; i-- {
		out = append(out, *s.messages[i])
	}
	return out, nil
}

func (s *Store) MarkContactMessageAsRead(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.ID == id {
			m.IsRead = true
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Close(ctx context.Context) error { return nil }
