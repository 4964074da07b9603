// Package storagetest holds the behavioural suite every Storage backend must pass.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realtyhub/internal/domain"
	"realtyhub/internal/storage"
	apperrors "realtyhub/pkg/errors"
)

// Factory returns an empty store. Cleanup is registered on t by the factory.
type Factory func(t *testing.T) storage.Storage

// MalformedID is not a valid key in any backend
const MalformedID = "not-a-valid-id!"

// Run executes the suite against stores produced by newStore
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s storage.Storage)
	}{
		{"CreateUserRejectsDuplicateUsername", testDuplicateUser},
		{"UserLookups", testUserLookups},
		{"CreatePropertyAppliesDefaults", testPropertyDefaults},
		{"UpdatePropertyChangesOnlyPatchedFields", testPartialUpdate},
		{"SoftDeleteHidesFromListButKeepsRecord", testSoftDelete},
		{"ListActivePropertiesNewestFirst", testPropertyOrdering},
		{"MalformedIDsAreNotFound", testMalformedIDs},
		{"SetMainImageLeavesExactlyOneMain", testSetMainImage},
		{"SetMainImageRejectsForeignImage", testSetMainForeignImage},
		{"ImagesOrderedMainFirstThenSortOrder", testImageOrdering},
		{"DeletePropertyImage", testDeleteImage},
		{"CreateImageRequiresProperty", testImageRequiresProperty},
		{"SliderCRUD", testSlider},
		{"WhatsAppSettingsUpsert", testWhatsAppUpsert},
		{"ContactSettingsUpsert", testContactSettingsUpsert},
		{"ContactMessages", testContactMessages},
		{"Ping", testPing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }

func sampleProperty(title string) domain.NewProperty {
	return domain.NewProperty{
		Title:        title,
		Description:  "D",
		Location:     "L",
		PropertyType: "apartment",
		Size:         100,
	}
}

func mustCreateProperty(t *testing.T, s storage.Storage, title string) *domain.Property {
	t.Helper()
	p, err := s.CreateProperty(context.Background(), sampleProperty(title))
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func testDuplicateUser(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	first, err := s.CreateUser(ctx, domain.NewUser{Username: "admin", PasswordHash: "h1", IsAdmin: true})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	_, err = s.CreateUser(ctx, domain.NewUser{Username: "admin", PasswordHash: "h2"})
	require.Error(t, err)
	assert.True(t, apperrors.IsDuplicateKey(err))

	got, err := s.GetUserByUsername(ctx, "admin")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "h1", got.PasswordHash)
	assert.True(t, got.IsAdmin)
}

func testUserLookups(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	u, err := s.CreateUser(ctx, domain.NewUser{Username: "viewer", PasswordHash: "h"})
	require.NoError(t, err)

	byID, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "viewer", byID.Username)
	assert.False(t, byID.IsAdmin)

	missing, err := s.GetUserByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func testPropertyDefaults(t *testing.T, s storage.Storage) {
	p := mustCreateProperty(t, s, "T")

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, 0, p.Bedrooms)
	assert.Equal(t, 0, p.Bathrooms)
	assert.Equal(t, []string{domain.StatusForSale}, p.Status)
	assert.Equal(t, []string{}, p.ImageURLs)
	assert.True(t, p.IsActive)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)

	got, err := s.GetProperty(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{domain.StatusForSale}, got.Status)
	assert.Equal(t, []string{}, got.ImageURLs)
}

func testPartialUpdate(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	in := sampleProperty("T")
	in.Status = []string{domain.StatusForSale, domain.StatusNewOffer}
	in.ImageURLs = []string{"/uploads/a.jpg"}
	orig, err := s.CreateProperty(ctx, in)
	require.NoError(t, err)

	updated, err := s.UpdateProperty(ctx, orig.ID, domain.PropertyPatch{Bedrooms: intPtr(4)})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, 4, updated.Bedrooms)
	assert.Equal(t, orig.Title, updated.Title)
	assert.Equal(t, orig.Description, updated.Description)
	assert.Equal(t, orig.Location, updated.Location)
	assert.Equal(t, orig.PropertyType, updated.PropertyType)
	assert.Equal(t, orig.Bathrooms, updated.Bathrooms)
	assert.Equal(t, orig.Size, updated.Size)
	assert.Equal(t, orig.Status, updated.Status)
	assert.Equal(t, orig.ImageURLs, updated.ImageURLs)
	assert.Equal(t, orig.IsActive, updated.IsActive)
	assert.True(t, orig.CreatedAt.Equal(updated.CreatedAt))
	assert.False(t, updated.UpdatedAt.Before(orig.UpdatedAt))

	missing, err := s.UpdateProperty(ctx, MalformedID, domain.PropertyPatch{Bedrooms: intPtr(1)})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func testSoftDelete(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	p := mustCreateProperty(t, s, "T")

	list, err := s.ListActiveProperties(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids(list), p.ID)

	ok, err := s.DeleteProperty(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	list, err = s.ListActiveProperties(ctx)
	require.NoError(t, err)
	assert.NotContains(t, ids(list), p.ID)

	got, err := s.GetProperty(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.IsActive)

	ok, err = s.DeleteProperty(ctx, MalformedID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testPropertyOrdering(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	first := mustCreateProperty(t, s, "first")
	second := mustCreateProperty(t, s, "second")
	third := mustCreateProperty(t, s, "third")

	list, err := s.ListActiveProperties(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{third.ID, second.ID, first.ID}, ids(list))
}

func testMalformedIDs(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	u, err := s.GetUser(ctx, MalformedID)
	require.NoError(t, err)
	assert.Nil(t, u)

	p, err := s.GetProperty(ctx, MalformedID)
	require.NoError(t, err)
	assert.Nil(t, p)

	images, err := s.GetPropertyImages(ctx, MalformedID)
	require.NoError(t, err)
	assert.Empty(t, images)

	ok, err := s.DeletePropertyImage(ctx, MalformedID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.SetMainImage(ctx, MalformedID, MalformedID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.UpdateSliderImage(ctx, MalformedID, domain.SliderImagePatch{Title: strPtr("x")})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.DeleteSliderImage(ctx, MalformedID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.MarkContactMessageAsRead(ctx, MalformedID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func addImage(t *testing.T, s storage.Storage, propertyID string, sortOrder int, isMain bool) *domain.PropertyImage {
	t.Helper()
	img, err := s.CreatePropertyImage(context.Background(), domain.NewPropertyImage{
		PropertyID: propertyID,
		ImageURL:   "/uploads/img.jpg",
		SortOrder:  sortOrder,
		IsMain:     isMain,
	})
	require.NoError(t, err)
	require.NotNil(t, img)
	return img
}

func mainImages(t *testing.T, s storage.Storage, propertyID string) []string {
	t.Helper()
	images, err := s.GetPropertyImages(context.Background(), propertyID)
	require.NoError(t, err)
	var out []string
	for _, img := range images {
		if img.IsMain {
			out = append(out, img.ID)
		}
	}
	return out
}

func testSetMainImage(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	p := mustCreateProperty(t, s, "T")
	a := addImage(t, s, p.ID, 0, true)
	b := addImage(t, s, p.ID, 1, false)
	c := addImage(t, s, p.ID, 2, false)

	assert.Equal(t, []string{a.ID}, mainImages(t, s, p.ID))

	for _, target := range []string{b.ID, c.ID, a.ID, c.ID} {
		ok, err := s.SetMainImage(ctx, p.ID, target)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, []string{target}, mainImages(t, s, p.ID))
	}

	// A new image flagged main displaces the current one
	d := addImage(t, s, p.ID, 3, true)
	assert.Equal(t, []string{d.ID}, mainImages(t, s, p.ID))
}

func testSetMainForeignImage(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	p1 := mustCreateProperty(t, s, "one")
	p2 := mustCreateProperty(t, s, "two")
	own := addImage(t, s, p1.ID, 0, true)
	foreign := addImage(t, s, p2.ID, 0, false)

	ok, err := s.SetMainImage(ctx, p1.ID, foreign.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, []string{own.ID}, mainImages(t, s, p1.ID))
	assert.Empty(t, mainImages(t, s, p2.ID))
}

func testImageOrdering(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	p := mustCreateProperty(t, s, "T")
	late := addImage(t, s, p.ID, 5, false)
	early := addImage(t, s, p.ID, 1, false)
	mid := addImage(t, s, p.ID, 3, false)

	ok, err := s.SetMainImage(ctx, p.ID, mid.ID)
	require.NoError(t, err)
	require.True(t, ok)

	images, err := s.GetPropertyImages(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, images, 3)
	assert.Equal(t, []string{mid.ID, early.ID, late.ID},
		[]string{images[0].ID, images[1].ID, images[2].ID})
	for _, img := range images {
		assert.Equal(t, p.ID, img.PropertyID)
	}
}

func testDeleteImage(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	p := mustCreateProperty(t, s, "T")
	caption := "front"
	img, err := s.CreatePropertyImage(ctx, domain.NewPropertyImage{
		PropertyID: p.ID,
		ImageURL:   "/uploads/front.jpg",
		Caption:    &caption,
		IsMain:     true,
	})
	require.NoError(t, err)
	require.NotNil(t, img.Caption)
	assert.Equal(t, "front", *img.Caption)

	ok, err := s.DeletePropertyImage(ctx, img.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	images, err := s.GetPropertyImages(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, images)

	ok, err = s.DeletePropertyImage(ctx, img.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testImageRequiresProperty(t *testing.T, s storage.Storage) {
	_, err := s.CreatePropertyImage(context.Background(), domain.NewPropertyImage{
		PropertyID: MalformedID,
		ImageURL:   "/uploads/x.jpg",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func testSlider(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	active, err := s.CreateSliderImage(ctx, domain.NewSliderImage{ImageURL: "/uploads/s1.jpg", Title: "One"})
	require.NoError(t, err)
	assert.True(t, active.IsActive)

	hidden, err := s.CreateSliderImage(ctx, domain.NewSliderImage{ImageURL: "/uploads/s2.jpg", IsActive: boolPtr(false)})
	require.NoError(t, err)

	list, err := s.ListSliderImages(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{active.ID}, sliderIDs(list))

	all, err := s.ListAllSliderImages(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{active.ID, hidden.ID}, sliderIDs(all))

	ok, err := s.UpdateSliderImage(ctx, hidden.ID, domain.SliderImagePatch{IsActive: boolPtr(true), Title: strPtr("Two")})
	require.NoError(t, err)
	assert.True(t, ok)

	list, err = s.ListSliderImages(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{active.ID, hidden.ID}, sliderIDs(list))
	for _, sl := range list {
		if sl.ID == hidden.ID {
			assert.Equal(t, "Two", sl.Title)
			assert.Equal(t, "/uploads/s2.jpg", sl.ImageURL)
		}
	}

	ok, err = s.DeleteSliderImage(ctx, active.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	list, err = s.ListSliderImages(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{hidden.ID}, sliderIDs(list))
}

func testWhatsAppUpsert(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	empty, err := s.GetWhatsAppSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, empty)

	created, err := s.UpdateWhatsAppSettings(ctx, domain.WhatsAppSettingsPatch{PhoneNumber: strPtr("+251911000000")})
	require.NoError(t, err)
	require.NotNil(t, created)
	defaults := domain.DefaultWhatsAppSettings(created.CreatedAt)
	assert.Equal(t, "+251911000000", created.PhoneNumber)
	assert.True(t, created.IsActive)
	assert.Equal(t, defaults.BusinessName, created.BusinessName)
	assert.Equal(t, defaults.WelcomeMessage, created.WelcomeMessage)
	assert.Equal(t, defaults.PropertyInquiryTemplate, created.PropertyInquiryTemplate)
	assert.Equal(t, defaults.GeneralInquiryTemplate, created.GeneralInquiryTemplate)

	second, err := s.UpdateWhatsAppSettings(ctx, domain.WhatsAppSettingsPatch{BusinessName: strPtr("Bole Homes")})
	require.NoError(t, err)
	assert.Equal(t, "Bole Homes", second.BusinessName)
	assert.Equal(t, "+251911000000", second.PhoneNumber)
	assert.Equal(t, defaults.WelcomeMessage, second.WelcomeMessage)
	assert.False(t, second.UpdatedAt.Before(created.UpdatedAt))

	got, err := s.GetWhatsAppSettings(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Bole Homes", got.BusinessName)
	assert.Equal(t, "+251911000000", got.PhoneNumber)
}

func testContactSettingsUpsert(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	empty, err := s.GetContactSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, empty)

	created, err := s.UpdateContactSettings(ctx, domain.ContactSettingsPatch{Email: strPtr("info@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "info@example.com", created.Email)
	assert.True(t, created.IsActive)
	assert.Empty(t, created.Phone)

	updated, err := s.UpdateContactSettings(ctx, domain.ContactSettingsPatch{Phone: strPtr("+251911000000")})
	require.NoError(t, err)
	assert.Equal(t, "info@example.com", updated.Email)
	assert.Equal(t, "+251911000000", updated.Phone)

	got, err := s.GetContactSettings(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "+251911000000", got.Phone)
}

func testContactMessages(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	first, err := s.CreateContactMessage(ctx, domain.NewContactMessage{
		Name: "Abel", Email: "a@b.com", Phone: "+251911000000", Message: "Interested in Bole apartment",
	})
	require.NoError(t, err)
	assert.False(t, first.IsRead)
	assert.False(t, first.CreatedAt.IsZero())

	second, err := s.CreateContactMessage(ctx, domain.NewContactMessage{
		Name: "Sara", Email: "s@b.com", Phone: "+251911000001", Message: "Villa?",
	})
	require.NoError(t, err)

	list, err := s.ListContactMessages(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	for i := 0; i < 2; i++ {
		ok, err := s.MarkContactMessageAsRead(ctx, first.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	list, err = s.ListContactMessages(ctx)
	require.NoError(t, err)
	assert.True(t, list[1].IsRead)
	assert.False(t, list[0].IsRead)
}

func testPing(t *testing.T, s storage.Storage) {
	assert.NoError(t, s.Ping(context.Background()))
}

func ids(list []domain.Property) []string {
	out := make([]string, len(list))
	for i, p := range list {
		out[i] = p.ID
	}
	return out
}

func sliderIDs(list []domain.SliderImage) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.ID
	}
	return out
}
