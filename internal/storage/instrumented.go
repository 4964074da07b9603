package storage

import (
	"context"
	"time"

	"realtyhub/internal/domain"
	"realtyhub/internal/metrics"
)

// Instrumented records the duration and outcome of every call
type Instrumented struct {
	inner Storage
}

var _ Storage = (*Instrumented)(nil)

func NewInstrumented(inner Storage) *Instrumented {
	return &Instrumented{inner: inner}
}

func observe(op string, start time.Time, err error) {
	metrics.RecordStorageOperation(op, time.Since(start), err)
}

func (i *Instrumented) GetUser(ctx context.Context, id string) (*domain.User, error) {
	start := time.Now()
	u, err := i.inner.GetUser(ctx, id)
	observe("get_user", start, err)
	return u, err
}

func (i *Instrumented) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	start := time.Now()
	u, err := i.inner.GetUserByUsername(ctx, username)
	observe("get_user_by_username", start, err)
	return u, err
}

func (i *Instrumented) CreateUser(ctx context.Context, user domain.NewUser) (*domain.User, error) {
	start := time.Now()
	u, err := i.inner.CreateUser(ctx, user)
	observe("create_user", start, err)
	return u, err
}

func (i *Instrumented) ListActiveProperties(ctx context.Context) ([]domain.Property, error) {
	start := time.Now()
	list, err := i.inner.ListActiveProperties(ctx)
	observe("list_active_properties", start, err)
	return list, err
}

func (i *Instrumented) GetProperty(ctx context.Context, id string) (*domain.Property, error) {
	start := time.Now()
	p, err := i.inner.GetProperty(ctx, id)
	observe("get_property", start, err)
	return p, err
}

func (i *Instrumented) CreateProperty(ctx context.Context, in domain.NewProperty) (*domain.Property, error) {
	start := time.Now()
	p, err := i.inner.CreateProperty(ctx, in)
	observe("create_property", start, err)
	return p, err
}

func (i *Instrumented) UpdateProperty(ctx context.Context, id string, patch domain.PropertyPatch) (*domain.Property, error) {
	start := time.Now()
	p, err := i.inner.UpdateProperty(ctx, id, patch)
	observe("update_property", start, err)
	return p, err
}

func (i *Instrumented) DeleteProperty(ctx context.Context, id string) (bool, error) {
	start := time.Now()
	ok, err := i.inner.DeleteProperty(ctx, id)
	observe("delete_property", start, err)
	return ok, err
}

func (i *Instrumented) GetPropertyImages(ctx context.Context, propertyID string) ([]domain.PropertyImage, error) {
	start := time.Now()
	list, err := i.inner.GetPropertyImages(ctx, propertyID)
	observe("get_property_images", start, err)
	return list, err
}

func (i *Instrumented) CreatePropertyImage(ctx context.Context, img domain.NewPropertyImage) (*domain.PropertyImage, error) {
	start := time.Now()
	created, err := i.inner.CreatePropertyImage(ctx, img)
	observe("create_property_image", start, err)
	return created, err
}

func (i *Instrumented) DeletePropertyImage(ctx context.Context, id string) (bool, error) {
	start := time.Now()
	ok, err := i.inner.DeletePropertyImage(ctx, id)
	observe("delete_property_image", start, err)
	return ok, err
}

func (i *Instrumented) SetMainImage(ctx context.Context, propertyID, imageID string) (bool, error) {
	start := time.Now()
	ok, err := i.inner.SetMainImage(ctx, propertyID, imageID)
	observe("set_main_image", start, err)
	return ok, err
}

func (i *Instrumented) ListSliderImages(ctx context.Context) ([]domain.SliderImage, error) {
	start := time.Now()
	list, err := i.inner.ListSliderImages(ctx)
	observe("list_slider_images", start, err)
	return list, err
}

func (i *Instrumented) ListAllSliderImages(ctx context.Context) ([]domain.SliderImage, error) {
	start := time.Now()
	list, err := i.inner.ListAllSliderImages(ctx)
	observe("list_all_slider_images", start, err)
	return list, err
}

func (i *Instrumented) CreateSliderImage(ctx context.Context, s domain.NewSliderImage) (*domain.SliderImage, error) {
	start := time.Now()
	created, err := i.inner.CreateSliderImage(ctx, s)
	observe("create_slider_image", start, err)
	return created, err
}

func (i *Instrumented) UpdateSliderImage(ctx context.Context, id string, patch domain.SliderImagePatch) (bool, error) {
	start := time.Now()
	ok, err := i.inner.UpdateSliderImage(ctx, id, patch)
	observe("update_slider_image", start, err)
	return ok, err
}

func (i *Instrumented) DeleteSliderImage(ctx context.Context, id string) (bool, error) {
	start := time.Now()
	ok, err := i.inner.DeleteSliderImage(ctx, id)
	observe("delete_slider_image", start, err)
	return ok, err
}

func (i *Instrumented) GetWhatsAppSettings(ctx context.Context) (*domain.WhatsAppSettings, error) {
	start := time.Now()
	s, err := i.inner.GetWhatsAppSettings(ctx)
	observe("get_whatsapp_settings", start, err)
	return s, err
}

func (i *Instrumented) UpdateWhatsAppSettings(ctx context.Context, patch domain.WhatsAppSettingsPatch) (*domain.WhatsAppSettings, error) {
	start := time.Now()
	s, err := i.inner.UpdateWhatsAppSettings(ctx, patch)
	observe("update_whatsapp_settings", start, err)
	return s, err
}

func (i *Instrumented) GetContactSettings(ctx context.Context) (*domain.ContactSettings, error) {
	start := time.Now()
	s, err := i.inner.GetContactSettings(ctx)
	observe("get_contact_settings", start, err)
	return s, err
}

func (i *Instrumented) UpdateContactSettings(ctx context.Context, patch domain.ContactSettingsPatch) (*domain.ContactSettings, error) {
	start := time.Now()
	s, err := i.inner.UpdateContactSettings(ctx, patch)
	observe("update_contact_settings", start, err)
	return s, err
}

func (i *Instrumented) CreateContactMessage(ctx context.Context, m domain.NewContactMessage) (*domain.ContactMessage, error) {
	start := time.Now()
	created, err := i.inner.CreateContactMessage(ctx, m)
	observe("create_contact_message", start, err)
	return created, err
}

func (i *Instrumented) ListContactMessages(ctx context.Context) ([]domain.ContactMessage, error) {
	start := time.Now()
	list, err := i.inner.ListContactMessages(ctx)
	observe("list_contact_messages", start, err)
	return list, err
}

func (i *Instrumented) MarkContactMessageAsRead(ctx context.Context, id string) (bool, error) {
	start := time.Now()
	ok, err := i.inner.MarkContactMessageAsRead(ctx, id)
	observe("mark_contact_message_read", start, err)
	return ok, err
}

func (i *Instrumented) Ping(ctx context.Context) error {
	start := time.Now()
	err := i.inner.Ping(ctx)
	observe("ping", start, err)
	return err
}

func (i *Instrumented) Close(ctx context.Context) error {
	return i.inner.Close(ctx)
}
