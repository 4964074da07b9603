package storage_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realtyhub/internal/domain"
	"realtyhub/internal/storage"
	"realtyhub/internal/storage/memory"
	"realtyhub/internal/storage/storagetest"
)

type mapCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	gets    int
	hits    int
	failing bool
}

func newMapCache() *mapCache {
	return &mapCache{data: map[string][]byte{}}
}

func (m *mapCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.failing {
		return false, errors.New("cache down")
	}
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	m.hits++
	return true, json.Unmarshal(raw, dest)
}

func (m *mapCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errors.New("cache down")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *mapCache) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func TestCachedPassesContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		return storage.NewCached(memory.New(), newMapCache(), time.Minute)
	})
}

func TestCachedServesRepeatReadsFromCache(t *testing.T) {
	ctx := context.Background()
	c := newMapCache()
	s := storage.NewCached(memory.New(), c, time.Minute)

	_, err := s.CreateProperty(ctx, domain.NewProperty{Title: "T", Description: "D", Location: "L", PropertyType: "apartment", Size: 100})
	require.NoError(t, err)

	first, err := s.ListActiveProperties(ctx)
	require.NoError(t, err)
	second, err := s.ListActiveProperties(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, c.hits)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestCachedInvalidatesOnWrite(t *testing.T) {
	ctx := context.Background()
	s := storage.NewCached(memory.New(), newMapCache(), time.Minute)

	p, err := s.CreateProperty(ctx, domain.NewProperty{Title: "T", Description: "D", Location: "L", PropertyType: "apartment", Size: 100})
	require.NoError(t, err)
	list, err := s.ListActiveProperties(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	ok, err := s.DeleteProperty(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, ok)

	list, err = s.ListActiveProperties(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	name := "Bole Homes"
	_, err = s.GetWhatsAppSettings(ctx)
	require.NoError(t, err)
	_, err = s.UpdateWhatsAppSettings(ctx, domain.WhatsAppSettingsPatch{BusinessName: &name})
	require.NoError(t, err)
	settings, err := s.GetWhatsAppSettings(ctx)
	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.Equal(t, name, settings.BusinessName)
}

func TestCachedFallsThroughWhenCacheFails(t *testing.T) {
	ctx := context.Background()
	c := newMapCache()
	c.failing = true
	s := storage.NewCached(memory.New(), c, time.Minute)

	_, err := s.CreateSliderImage(ctx, domain.NewSliderImage{ImageURL: "/uploads/s.jpg"})
	require.NoError(t, err)

	list, err := s.ListSliderImages(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
