package domain

import "time"

// WhatsAppSettings is the singleton configuration of the business WhatsApp number
type WhatsAppSettings struct {
	PhoneNumber             string    `json:"phoneNumber"`
	IsActive                bool      `json:"isActive"`
	BusinessName            string    `json:"businessName"`
	WelcomeMessage          string    `json:"welcomeMessage"`
	PropertyInquiryTemplate string    `json:"propertyInquiryTemplate"`
	GeneralInquiryTemplate  string    `json:"generalInquiryTemplate"`
	CreatedAt               time.Time `json:"createdAt"`
	UpdatedAt               time.Time `json:"updatedAt"`
}

type WhatsAppSettingsPatch struct {
	PhoneNumber             *string `json:"phoneNumber" validate:"omitempty,max=20"`
	IsActive                *bool   `json:"isActive"`
	BusinessName            *string `json:"businessName" validate:"omitempty,max=255"`
	WelcomeMessage          *string `json:"welcomeMessage"`
	PropertyInquiryTemplate *string `json:"propertyInquiryTemplate"`
	GeneralInquiryTemplate  *string `json:"generalInquiryTemplate"`
}

func (patch WhatsAppSettingsPatch) Apply(s *WhatsAppSettings) {
	if patch.PhoneNumber != nil {
		s.PhoneNumber = *patch.PhoneNumber
	}
	if patch.IsActive != nil {
		s.IsActive = *patch.IsActive
	}
	if patch.BusinessName != nil {
		s.BusinessName = *patch.BusinessName
	}
	if patch.WelcomeMessage != nil {
		s.WelcomeMessage = *patch.WelcomeMessage
	}
	if patch.PropertyInquiryTemplate != nil {
		s.PropertyInquiryTemplate = *patch.PropertyInquiryTemplate
	}
	if patch.GeneralInquiryTemplate != nil {
		s.GeneralInquiryTemplate = *patch.GeneralInquiryTemplate
	}
}

// DefaultWhatsAppSettings seeds the singleton the first time it is written
func DefaultWhatsAppSettings(now time.Time) WhatsAppSettings {
	return WhatsAppSettings{
		PhoneNumber:             "",
		IsActive:                true,
		BusinessName:            "Real Estate",
		WelcomeMessage:          "Hello! Thank you for contacting us. How can we help you today?",
		PropertyInquiryTemplate: "Hi! I'm interested in the property: {title} located in {location}. It has {bedrooms} bedrooms, {bathrooms} bathrooms and {size} sqm. Could you share more details?",
		GeneralInquiryTemplate:  "Hi! I would like to get more information about your properties.",
		CreatedAt:               now,
		UpdatedAt:               now,
	}
}

// ContactSettings is the singleton record of the public contact details
type ContactSettings struct {
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ContactSettingsPatch struct {
	Phone    *string `json:"phone" validate:"omitempty,max=20"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Address  *string `json:"address" validate:"omitempty,max=500"`
	IsActive *bool   `json:"isActive"`
}

func (patch ContactSettingsPatch) Apply(s *ContactSettings) {
	if patch.Phone != nil {
		s.Phone = *patch.Phone
	}
	if patch.Email != nil {
		s.Email = *patch.Email
	}
	if patch.Address != nil {
		s.Address = *patch.Address
	}
	if patch.IsActive != nil {
		s.IsActive = *patch.IsActive
	}
}

func DefaultContactSettings(now time.Time) ContactSettings {
	return ContactSettings{
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
