package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realtyhub/internal/domain"
	"realtyhub/internal/storage"
	"realtyhub/internal/storage/memory"
	apperrors "realtyhub/pkg/errors"
)

func TestSettingsDefaultsAreNotPersisted(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewSettingsService(store)

	wa, err := svc.WhatsApp(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Real Estate", wa.BusinessName)
	assert.True(t, wa.IsActive)

	contact, err := svc.Contact(ctx)
	require.NoError(t, err)
	assert.True(t, contact.IsActive)

	stored, err := store.GetWhatsAppSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestSettingsUpdate(t *testing.T) {
	ctx := context.Background()
	svc := NewSettingsService(memory.New())

	email := "sales@realty.example"
	contact, err := svc.UpdateContact(ctx, domain.ContactSettingsPatch{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, email, contact.Email)

	bad := "not-an-email"
	_, err = svc.UpdateContact(ctx, domain.ContactSettingsPatch{Email: &bad})
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.CodeOf(err))
}

func TestWhatsAppLink(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewSettingsService(store)

	_, err := svc.Link(ctx, "")
	assert.True(t, apperrors.IsNotFound(err), "no phone configured")

	phone := "+251 911 000 000"
	_, err = svc.UpdateWhatsApp(ctx, domain.WhatsAppSettingsPatch{PhoneNumber: &phone})
	require.NoError(t, err)

	link, err := svc.Link(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, link.URL, "https://wa.me/251911000000?text=")
	assert.Equal(t, domain.DefaultWhatsAppSettings(storage.Now()).GeneralInquiryTemplate, link.Message)

	beds := 2
	p, err := store.CreateProperty(ctx, domain.NewProperty{Title: "Bole Villa", Description: "D", Location: "Bole", PropertyType: "villa", Size: 300, Bedrooms: &beds})
	require.NoError(t, err)

	link, err = svc.Link(ctx, p.ID)
	require.NoError(t, err)
	assert.Contains(t, link.Message, "Bole Villa located in Bole")
	assert.Contains(t, link.Message, "2 bedrooms")

	_, err = svc.Link(ctx, "missing")
	assert.True(t, apperrors.IsNotFound(err))
}

type downStore struct {
	storage.Storage
}

func (downStore) Ping(ctx context.Context) error {
	return storage.Unavailable("ping", errors.New("connection refused"))
}

func TestHealthCheck(t *testing.T) {
	result, err := NewHealthService(memory.New(), "Realty Hub API").Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", result.Status)

	result, err = NewHealthService(downStore{memory.New()}, "Realty Hub API").Check(context.Background())
	assert.True(t, apperrors.IsUnavailable(err))
	assert.Equal(t, "unhealthy", result.Status)
	assert.Equal(t, "down", result.Storage)
}
