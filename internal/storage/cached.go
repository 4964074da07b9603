package storage

import (
	"context"
	"log"
	"time"

	"realtyhub/internal/domain"
)

// Cache is the key-value store used by Cached
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

const (
	keyActiveProperties = "realtyhub:properties:active"
	keyActiveSliders    = "realtyhub:slider:active"
	keyWhatsAppSettings = "realtyhub:settings:whatsapp"
	keyContactSettings  = "realtyhub:settings:contact"
)

// Cached serves the public read paths from cache and drops the affected keys
// after every write. Cache failures fall through to the wrapped Storage.
type Cached struct {
	Storage
	cache Cache
	ttl   time.Duration
}

func NewCached(inner Storage, cache Cache, ttl time.Duration) *Cached {
	return &Cached{Storage: inner, cache: cache, ttl: ttl}
}

func (c *Cached) load(ctx context.Context, key string, dest interface{}) bool {
	hit, err := c.cache.Get(ctx, key, dest)
	if err != nil {
		log.Printf("[CACHE] Read failed for %s: %v", key, err)
		return false
	}
	return hit
}

func (c *Cached) store(ctx context.Context, key string, value interface{}) {
	if err := c.cache.Set(ctx, key, value, c.ttl); err != nil {
		log.Printf("[CACHE] Write failed for %s: %v", key, err)
	}
}

func (c *Cached) invalidate(ctx context.Context, keys ...string) {
	if err := c.cache.Delete(ctx, keys...); err != nil {
		log.Printf("[CACHE] Invalidation failed for %v: %v", keys, err)
	}
}

func (c *Cached) ListActiveProperties(ctx context.Context) ([]domain.Property, error) {
	var cached []domain.Property
	if c.load(ctx, keyActiveProperties, &cached) {
		return cached, nil
	}
	list, err := c.Storage.ListActiveProperties(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, keyActiveProperties, list)
	return list, nil
}

func (c *Cached) CreateProperty(ctx context.Context, p domain.NewProperty) (*domain.Property, error) {
	created, err := c.Storage.CreateProperty(ctx, p)
	if err == nil {
		c.invalidate(ctx, keyActiveProperties)
	}
	return created, err
}

func (c *Cached) UpdateProperty(ctx context.Context, id string, patch domain.PropertyPatch) (*domain.Property, error) {
	updated, err := c.Storage.UpdateProperty(ctx, id, patch)
	if err == nil && updated != nil {
		c.invalidate(ctx, keyActiveProperties)
	}
	return updated, err
}

func (c *Cached) DeleteProperty(ctx context.Context, id string) (bool, error) {
	ok, err := c.Storage.DeleteProperty(ctx, id)
	if err == nil && ok {
		c.invalidate(ctx, keyActiveProperties)
	}
	return ok, err
}

func (c *Cached) ListSliderImages(ctx context.Context) ([]domain.SliderImage, error) {
	var cached []domain.SliderImage
	if c.load(ctx, keyActiveSliders, &cached) {
		return cached, nil
	}
	list, err := c.Storage.ListSliderImages(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, keyActiveSliders, list)
	return list, nil
}

func (c *Cached) CreateSliderImage(ctx context.Context, s domain.NewSliderImage) (*domain.SliderImage, error) {
	created, err := c.Storage.CreateSliderImage(ctx, s)
	if err == nil {
		c.invalidate(ctx, keyActiveSliders)
	}
	return created, err
}

func (c *Cached) UpdateSliderImage(ctx context.Context, id string, patch domain.SliderImagePatch) (bool, error) {
	ok, err := c.Storage.UpdateSliderImage(ctx, id, patch)
	if err == nil && ok {
		c.invalidate(ctx, keyActiveSliders)
	}
	return ok, err
}

func (c *Cached) DeleteSliderImage(ctx context.Context, id string) (bool, error) {
	ok, err := c.Storage.DeleteSliderImage(ctx, id)
	if err == nil && ok {
		c.invalidate(ctx, keyActiveSliders)
	}
	return ok, err
}

// GetWhatsAppSettings does not cache an absent record
func (c *Cached) GetWhatsAppSettings(ctx context.Context) (*domain.WhatsAppSettings, error) {
	var cached domain.WhatsAppSettings
	if c.load(ctx, keyWhatsAppSettings, &cached) {
		return &cached, nil
	}
	settings, err := c.Storage.GetWhatsAppSettings(ctx)
	if err != nil || settings == nil {
		return settings, err
	}
	c.store(ctx, keyWhatsAppSettings, settings)
	return settings, nil
}

func (c *Cached) UpdateWhatsAppSettings(ctx context.Context, patch domain.WhatsAppSettingsPatch) (*domain.WhatsAppSettings, error) {
	updated, err := c.Storage.UpdateWhatsAppSettings(ctx, patch)
	if err == nil {
		c.invalidate(ctx, keyWhatsAppSettings)
	}
	return updated, err
}

func (c *Cached) GetContactSettings(ctx context.Context) (*domain.ContactSettings, error) {
	var cached domain.ContactSettings
	if c.load(ctx, keyContactSettings, &cached) {
		return &cached, nil
	}
	settings, err := c.Storage.GetContactSettings(ctx)
	if err != nil || settings == nil {
		return settings, err
	}
	c.store(ctx, keyContactSettings, settings)
	return settings, nil
}

func (c *Cached) UpdateContactSettings(ctx context.Context, patch domain.ContactSettingsPatch) (*domain.ContactSettings, error) {
	updated, err := c.Storage.UpdateContactSettings(ctx, patch)
	if err == nil {
		c.invalidate(ctx, keyContactSettings)
	}
	return updated, err
}
