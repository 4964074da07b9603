package services

import (
	"context"
	"log"

	"realtyhub/internal/domain"
	"realtyhub/internal/notify"
	"realtyhub/internal/storage"
	apperrors "realtyhub/pkg/errors"
)

// SettingsService reads and writes the WhatsApp and contact singletons
type SettingsService struct {
	store storage.Storage
}

func NewSettingsService(store storage.Storage) *SettingsService {
	return &SettingsService{store: store}
}

// WhatsApp returns the stored settings, or the defaults when none were saved yet.
// Reading never persists anything.
func (s *SettingsService) WhatsApp(ctx context.Context) (*domain.WhatsAppSettings, error) {
	settings, err := s.store.GetWhatsAppSettings(ctx)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		defaults := domain.DefaultWhatsAppSettings(storage.Now())
		return &defaults, nil
	}
	return settings, nil
}

func (s *SettingsService) UpdateWhatsApp(ctx context.Context, patch domain.WhatsAppSettingsPatch) (*domain.WhatsAppSettings, error) {
	if err := domain.Validate(patch); err != nil {
		return nil, err
	}
	settings, err := s.store.UpdateWhatsAppSettings(ctx, patch)
	if err != nil {
		return nil, err
	}
	log.Printf("[SETTINGS] WhatsApp settings updated (active=%v)", settings.IsActive)
	return settings, nil
}

// Contact returns the stored contact details, or the defaults when none were saved yet
func (s *SettingsService) Contact(ctx context.Context) (*domain.ContactSettings, error) {
	settings, err := s.store.GetContactSettings(ctx)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		defaults := domain.DefaultContactSettings(storage.Now())
		return &defaults, nil
	}
	return settings, nil
}

func (s *SettingsService) UpdateContact(ctx context.Context, patch domain.ContactSettingsPatch) (*domain.ContactSettings, error) {
	if err := domain.Validate(patch); err != nil {
		return nil, err
	}
	settings, err := s.store.UpdateContactSettings(ctx, patch)
	if err != nil {
		return nil, err
	}
	log.Printf("[SETTINGS] Contact settings updated (active=%v)", settings.IsActive)
	return settings, nil
}

// WhatsAppLink is a prefilled chat link for the business number
type WhatsAppLink struct {
	URL     string `json:"url"`
	Message string `json:"message"`
}

// Link builds a chat link. With a property id the property inquiry template
// is used, otherwise the general one.
func (s *SettingsService) Link(ctx context.Context, propertyID string) (*WhatsAppLink, error) {
	settings, err := s.WhatsApp(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.IsActive || settings.PhoneNumber == "" {
		return nil, apperrors.NotFound("WhatsApp contact")
	}

	message := settings.GeneralInquiryTemplate
	if propertyID != "" {
		p, err := s.store.GetProperty(ctx, propertyID)
		if err != nil {
			return nil, err
		}
		if p == nil || !p.IsActive {
			return nil, apperrors.NotFound("Property")
		}
		message = notify.RenderPropertyInquiry(settings.PropertyInquiryTemplate, *p)
	}

	return &WhatsAppLink{
		URL:     notify.DeepLink(settings.PhoneNumber, message),
		Message: message,
	}, nil
}
