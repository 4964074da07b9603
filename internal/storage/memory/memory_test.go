package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realtyhub/internal/domain"
	"realtyhub/internal/storage"
	"realtyhub/internal/storage/storagetest"
)

func TestMemoryStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		return New()
	})
}

func TestConcurrentSetMainImage(t *testing.T) {
	ctx := context.Background()
	s := New()
	p, err := s.CreateProperty(ctx, domain.NewProperty{Title: "T", Description: "D", Location: "L", PropertyType: "villa", Size: 80})
	require.NoError(t, err)

	var imageIDs []string
	for i := 0; i < 5; i++ {
		img, err := s.CreatePropertyImage(ctx, domain.NewPropertyImage{PropertyID: p.ID, ImageURL: "/uploads/x.jpg", SortOrder: i})
		require.NoError(t, err)
		imageIDs = append(imageIDs, img.ID)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, _ = s.SetMainImage(ctx, p.ID, id)
		}(imageIDs[i%len(imageIDs)])
	}
	wg.Wait()

	images, err := s.GetPropertyImages(ctx, p.ID)
	require.NoError(t, err)
	mains := 0
	for _, img := range images {
		if img.IsMain {
			mains++
		}
	}
	assert.Equal(t, 1, mains)
	assert.True(t, images[0].IsMain)
}

func TestReturnedValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	p, err := s.CreateProperty(ctx, domain.NewProperty{Title: "T", Description: "D", Location: "L", PropertyType: "villa", Size: 80})
	require.NoError(t, err)

	p.Status[0] = "Sold"
	p.Title = "changed"

	got, err := s.GetProperty(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "T", got.Title)
	assert.Equal(t, []string{domain.StatusForSale}, got.Status)
}
