package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "realtyhub/pkg/errors"
)

func TestValidateNewProperty(t *testing.T) {
	valid := NewProperty{Title: "T", Description: "D", Location: "L", PropertyType: "apartment", Size: 100}
	assert.NoError(t, Validate(valid))

	missingTitle := valid
	missingTitle.Title = ""
	err := Validate(missingTitle)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeValidation))
	assert.Contains(t, err.Error(), "title is required")

	zeroSize := valid
	zeroSize.Size = 0
	err = Validate(zeroSize)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "size must be greater than 0")

	negative := -1
	badBedrooms := valid
	badBedrooms.Bedrooms = &negative
	err = Validate(badBedrooms)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bedrooms")
}

func TestValidateContactMessage(t *testing.T) {
	msg := NewContactMessage{
		Name:    "Abel",
		Email:   "a@b.com",
		Phone:   "+251911000000",
		Message: "Interested in Bole apartment",
	}
	assert.NoError(t, Validate(msg))

	tests := []struct {
		name   string
		mutate func(m *NewContactMessage)
		want   string
	}{
		{"short name", func(m *NewContactMessage) { m.Name = "A" }, "name must be at least 2 characters"},
		{"bad email", func(m *NewContactMessage) { m.Email = "nope" }, "email must be a valid email address"},
		{"letters in phone", func(m *NewContactMessage) { m.Phone = "call me maybe" }, "phone must be a valid phone number"},
		{"empty message", func(m *NewContactMessage) { m.Message = "" }, "message is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := msg
			tt.mutate(&m)
			err := Validate(m)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPropertyPatchApply(t *testing.T) {
	p := Property{Title: "T", Bedrooms: 1, Status: []string{StatusForSale}}
	beds := 4
	PropertyPatch{Bedrooms: &beds}.Apply(&p)

	assert.Equal(t, 4, p.Bedrooms)
	assert.Equal(t, "T", p.Title)
	assert.Equal(t, []string{StatusForSale}, p.Status)
}

func TestWhatsAppSettingsPatchApply(t *testing.T) {
	s := DefaultWhatsAppSettings(time.Time{})
	phone := "+251911000000"
	WhatsAppSettingsPatch{PhoneNumber: &phone}.Apply(&s)

	assert.Equal(t, phone, s.PhoneNumber)
	assert.True(t, s.IsActive)
	assert.Equal(t, "Real Estate", s.BusinessName)
}
