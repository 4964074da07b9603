package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realtyhub/internal/domain"
	"realtyhub/internal/storage/memory"
	apperrors "realtyhub/pkg/errors"
)

func newListing() domain.NewProperty {
	return domain.NewProperty{Title: "T", Description: "D", Location: "L", PropertyType: "apartment", Size: 100}
}

func TestPropertyGetHidesInactive(t *testing.T) {
	ctx := context.Background()
	svc := NewPropertyService(memory.New())

	p, err := svc.Create(ctx, newListing())
	require.NoError(t, err)

	detail, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, detail.ID)
	assert.NotNil(t, detail.Images)

	require.NoError(t, svc.Delete(ctx, p.ID))
	_, err = svc.Get(ctx, p.ID)
	assert.True(t, apperrors.IsNotFound(err))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)
}

func TestPropertyNotFoundPaths(t *testing.T) {
	ctx := context.Background()
	svc := NewPropertyService(memory.New())
	beds := 3

	_, err := svc.Update(ctx, "missing", domain.PropertyPatch{Bedrooms: &beds})
	assert.True(t, apperrors.IsNotFound(err))
	assert.True(t, apperrors.IsNotFound(svc.Delete(ctx, "missing")))
	_, err = svc.Images(ctx, "missing")
	assert.True(t, apperrors.IsNotFound(err))
	assert.True(t, apperrors.IsNotFound(svc.DeleteImage(ctx, "missing")))
}

func TestPropertyCreateValidates(t *testing.T) {
	in := newListing()
	in.Size = 0

	_, err := NewPropertyService(memory.New()).Create(context.Background(), in)
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.CodeOf(err))
}

func TestPropertyImages(t *testing.T) {
	ctx := context.Background()
	svc := NewPropertyService(memory.New())
	p, err := svc.Create(ctx, newListing())
	require.NoError(t, err)
	other, err := svc.Create(ctx, newListing())
	require.NoError(t, err)

	first, err := svc.AddImage(ctx, p.ID, domain.NewPropertyImage{ImageURL: "/uploads/a.jpg", IsMain: true})
	require.NoError(t, err)
	second, err := svc.AddImage(ctx, p.ID, domain.NewPropertyImage{ImageURL: "/uploads/b.jpg", SortOrder: 1})
	require.NoError(t, err)

	_, err = svc.AddImage(ctx, p.ID, domain.NewPropertyImage{})
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.CodeOf(err))

	require.NoError(t, svc.SetMainImage(ctx, p.ID, second.ID))
	assert.True(t, apperrors.IsNotFound(svc.SetMainImage(ctx, other.ID, first.ID)))
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.CodeOf(svc.SetMainImage(ctx, "", first.ID)))

	images, err := svc.Images(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, second.ID, images[0].ID)
	assert.True(t, images[0].IsMain)
	assert.False(t, images[1].IsMain)

	require.NoError(t, svc.DeleteImage(ctx, first.ID))
	images, err = svc.Images(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, images, 1)
}

func TestSliderService(t *testing.T) {
	ctx := context.Background()
	svc := NewSliderService(memory.New())

	s, err := svc.Create(ctx, domain.NewSliderImage{ImageURL: "/uploads/s.jpg", Title: "Welcome"})
	require.NoError(t, err)
	assert.True(t, s.IsActive)

	inactive := false
	require.NoError(t, svc.Update(ctx, s.ID, domain.SliderImagePatch{IsActive: &inactive}))

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, svc.Delete(ctx, s.ID))
	assert.True(t, apperrors.IsNotFound(svc.Delete(ctx, s.ID)))
	assert.True(t, apperrors.IsNotFound(svc.Update(ctx, s.ID, domain.SliderImagePatch{IsActive: &inactive})))
}
