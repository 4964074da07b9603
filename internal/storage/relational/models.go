package relational

import (
	"encoding/json"
	"strconv"
	"time"

	"gorm.io/datatypes"

	"realtyhub/internal/domain"
)

// singletonID is the fixed primary key of the settings rows
const singletonID = 1

type userRow struct {
	ID           uint      `gorm:"primaryKey"`
	Username     string    `gorm:"size:50;uniqueIndex;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	IsAdmin      bool      `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (userRow) TableName() string { return "users" }

type propertyRow struct {
	ID           uint           `gorm:"primaryKey"`
	Title        string         `gorm:"size:255;not null"`
	Description  string         `gorm:"type:text;not null"`
	Location     string         `gorm:"size:255;not null"`
	PropertyType string         `gorm:"size:100;not null"`
	Bedrooms     int            `gorm:"not null"`
	Bathrooms    int            `gorm:"not null"`
	Size         int            `gorm:"not null"`
	Status       datatypes.JSON `gorm:"not null"`
	ImageURLs    datatypes.JSON `gorm:"column:image_urls;not null"`
	IsActive     bool           `gorm:"index;not null"`
	CreatedAt    time.Time      `gorm:"index;not null"`
	UpdatedAt    time.Time      `gorm:"not null"`
}

func (propertyRow) TableName() string { return "properties" }

type propertyImageRow struct {
	ID         uint         `gorm:"primaryKey"`
	PropertyID uint         `gorm:"index;not null"`
	Property   *propertyRow `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE"`
	ImageURL   string       `gorm:"type:text;not null"`
	Caption    *string      `gorm:"size:500"`
	IsMain     bool         `gorm:"not null"`
	SortOrder  int          `gorm:"not null"`
	CreatedAt  time.Time    `gorm:"not null"`
}

func (propertyImageRow) TableName() string { return "property_images" }

type sliderImageRow struct {
	ID          uint      `gorm:"primaryKey"`
	ImageURL    string    `gorm:"type:text;not null"`
	Title       string    `gorm:"size:255"`
	Description string    `gorm:"type:text"`
	IsActive    bool      `gorm:"index;not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (sliderImageRow) TableName() string { return "slider_images" }

type whatsAppSettingsRow struct {
	ID                      uint   `gorm:"primaryKey;autoIncrement:false"`
	PhoneNumber             string `gorm:"size:20"`
	IsActive                bool   `gorm:"not null"`
	BusinessName            string `gorm:"size:255"`
	WelcomeMessage          string `gorm:"type:text"`
	PropertyInquiryTemplate string `gorm:"type:text"`
	GeneralInquiryTemplate  string `gorm:"type:text"`
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

func (whatsAppSettingsRow) TableName() string { return "whatsapp_settings" }

type contactSettingsRow struct {
	ID        uint   `gorm:"primaryKey;autoIncrement:false"`
	Phone     string `gorm:"size:20"`
	Email     string `gorm:"size:255"`
	Address   string `gorm:"type:text"`
	IsActive  bool   `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (contactSettingsRow) TableName() string { return "contact_settings" }

type contactMessageRow struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"size:100;not null"`
	Email     string    `gorm:"size:255;not null"`
	Phone     string    `gorm:"size:20;not null"`
	Message   string    `gorm:"type:text;not null"`
	IsRead    bool      `gorm:"index;not null"`
	CreatedAt time.Time `gorm:"index;not null"`
}

func (contactMessageRow) TableName() string { return "contact_messages" }

// models lists every table for AutoMigrate
var models = []interface{}{
	&userRow{},
	&propertyRow{},
	&propertyImageRow{},
	&sliderImageRow{},
	&whatsAppSettingsRow{},
	&contactSettingsRow{},
	&contactMessageRow{},
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// parseID returns false for anything that is not a positive base-10 key
func parseID(id string) (uint, bool) {
	v, err := strconv.ParseUint(id, 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

func encodeStrings(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	b, _ := json.Marshal(values)
	return datatypes.JSON(b)
}

func decodeStrings(raw datatypes.JSON) []string {
	out := []string{}
	if len(raw) == 0 {
		return out
	}
	_ = json.Unmarshal(raw, &out)
	if out == nil {
		out = []string{}
	}
	return out
}

func (r *userRow) toDomain() *domain.User {
	return &domain.User{
		ID:           formatID(r.ID),
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		IsAdmin:      r.IsAdmin,
		CreatedAt:    r.CreatedAt,
	}
}

func newPropertyRow(p domain.Property) propertyRow {
	return propertyRow{
		Title:        p.Title,
		Description:  p.Description,
		Location:     p.Location,
		PropertyType: p.PropertyType,
		Bedrooms:     p.Bedrooms,
		Bathrooms:    p.Bathrooms,
		Size:         p.Size,
		Status:       encodeStrings(p.Status),
		ImageURLs:    encodeStrings(p.ImageURLs),
		IsActive:     p.IsActive,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (r *propertyRow) toDomain() *domain.Property {
	return &domain.Property{
		ID:           formatID(r.ID),
		Title:        r.Title,
		Description:  r.Description,
		Location:     r.Location,
		PropertyType: r.PropertyType,
		Bedrooms:     r.Bedrooms,
		Bathrooms:    r.Bathrooms,
		Size:         r.Size,
		Status:       decodeStrings(r.Status),
		ImageURLs:    decodeStrings(r.ImageURLs),
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func (r *propertyImageRow) toDomain() *domain.PropertyImage {
	return &domain.PropertyImage{
		ID:         formatID(r.ID),
		PropertyID: formatID(r.PropertyID),
		ImageURL:   r.ImageURL,
		Caption:    r.Caption,
		IsMain:     r.IsMain,
		SortOrder:  r.SortOrder,
		CreatedAt:  r.CreatedAt,
	}
}

func (r *sliderImageRow) toDomain() *domain.SliderImage {
	return &domain.SliderImage{
		ID:          formatID(r.ID),
		ImageURL:    r.ImageURL,
		Title:       r.Title,
		Description: r.Description,
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (r *whatsAppSettingsRow) toDomain() *domain.WhatsAppSettings {
	return &domain.WhatsAppSettings{
		PhoneNumber:             r.PhoneNumber,
		IsActive:                r.IsActive,
		BusinessName:            r.BusinessName,
		WelcomeMessage:          r.WelcomeMessage,
		PropertyInquiryTemplate: r.PropertyInquiryTemplate,
		GeneralInquiryTemplate:  r.GeneralInquiryTemplate,
		CreatedAt:               r.CreatedAt,
		UpdatedAt:               r.UpdatedAt,
	}
}

func newWhatsAppSettingsRow(s domain.WhatsAppSettings) whatsAppSettingsRow {
	return whatsAppSettingsRow{
		ID:                      singletonID,
		PhoneNumber:             s.PhoneNumber,
		IsActive:                s.IsActive,
		BusinessName:            s.BusinessName,
		WelcomeMessage:          s.WelcomeMessage,
		PropertyInquiryTemplate: s.PropertyInquiryTemplate,
		GeneralInquiryTemplate:  s.GeneralInquiryTemplate,
		CreatedAt:               s.CreatedAt,
		UpdatedAt:               s.UpdatedAt,
	}
}

func (r *contactSettingsRow) toDomain() *domain.ContactSettings {
	return &domain.ContactSettings{
		Phone:     r.Phone,
		Email:     r.Email,
		Address:   r.Address,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func newContactSettingsRow(s domain.ContactSettings) contactSettingsRow {
	return contactSettingsRow{
		ID:        singletonID,
		Phone:     s.Phone,
		Email:     s.Email,
		Address:   s.Address,
		IsActive:  s.IsActive,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func (r *contactMessageRow) toDomain() *domain.ContactMessage {
	return &domain.ContactMessage{
		ID:        formatID(r.ID),
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		Message:   r.Message,
		IsRead:    r.IsRead,
		CreatedAt: r.CreatedAt,
	}
}
