package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"realtyhub/internal/domain"
)

const singletonID = "singleton"

const (
	colUsers           = "users"
	colProperties      = "properties"
	colPropertyImages  = "property_images"
	colSliderImages    = "slider_images"
	colWhatsAppSetting = "whatsapp_settings"
	colContactSetting  = "contact_settings"
	colContactMessages = "contact_messages"
)

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	PasswordHash string             `bson:"passwordHash"`
	IsAdmin      bool               `bson:"isAdmin"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

func (d *userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		IsAdmin:      d.IsAdmin,
		CreatedAt:    d.CreatedAt,
	}
}

// propertyDoc carries the main image id so switching it is one document write
type propertyDoc struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty"`
	Title        string              `bson:"title"`
	Description  string              `bson:"description"`
	Location     string              `bson:"location"`
	PropertyType string              `bson:"propertyType"`
	Bedrooms     int                 `bson:"bedrooms"`
	Bathrooms    int                 `bson:"bathrooms"`
	Size         int                 `bson:"size"`
	Status       []string            `bson:"status"`
	ImageURLs    []string            `bson:"imageUrls"`
	IsActive     bool                `bson:"isActive"`
	MainImageID  *primitive.ObjectID `bson:"mainImageId,omitempty"`
	CreatedAt    time.Time           `bson:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt"`
}

func newPropertyDoc(p domain.Property) propertyDoc {
	return propertyDoc{
		Title:        p.Title,
		Description:  p.Description,
		Location:     p.Location,
		PropertyType: p.PropertyType,
		Bedrooms:     p.Bedrooms,
		Bathrooms:    p.Bathrooms,
		Size:         p.Size,
		Status:       p.Status,
		ImageURLs:    p.ImageURLs,
		IsActive:     p.IsActive,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func (d *propertyDoc) toDomain() *domain.Property {
	return &domain.Property{
		ID:           d.ID.Hex(),
		Title:        d.Title,
		Description:  d.Description,
		Location:     d.Location,
		PropertyType: d.PropertyType,
		Bedrooms:     d.Bedrooms,
		Bathrooms:    d.Bathrooms,
		Size:         d.Size,
		Status:       nonNil(d.Status),
		ImageURLs:    nonNil(d.ImageURLs),
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// propertyImageDoc has no isMain field; it is derived from propertyDoc.MainImageID
type propertyImageDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	PropertyID primitive.ObjectID `bson:"propertyId"`
	ImageURL   string             `bson:"imageUrl"`
	Caption    *string            `bson:"caption,omitempty"`
	SortOrder  int                `bson:"sortOrder"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

func (d *propertyImageDoc) toDomain(mainID *primitive.ObjectID) *domain.PropertyImage {
	return &domain.PropertyImage{
		ID:         d.ID.Hex(),
		PropertyID: d.PropertyID.Hex(),
		ImageURL:   d.ImageURL,
		Caption:    d.Caption,
		IsMain:     mainID != nil && *mainID == d.ID,
		SortOrder:  d.SortOrder,
		CreatedAt:  d.CreatedAt,
	}
}

type sliderImageDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ImageURL    string             `bson:"imageUrl"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	IsActive    bool               `bson:"isActive"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *sliderImageDoc) toDomain() *domain.SliderImage {
	return &domain.SliderImage{
		ID:          d.ID.Hex(),
		ImageURL:    d.ImageURL,
		Title:       d.Title,
		Description: d.Description,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type whatsAppSettingsDoc struct {
	ID                      string    `bson:"_id"`
	PhoneNumber             string    `bson:"phoneNumber"`
	IsActive                bool      `bson:"isActive"`
	BusinessName            string    `bson:"businessName"`
	WelcomeMessage          string    `bson:"welcomeMessage"`
	PropertyInquiryTemplate string    `bson:"propertyInquiryTemplate"`
	GeneralInquiryTemplate  string    `bson:"generalInquiryTemplate"`
	CreatedAt               time.Time `bson:"createdAt"`
	UpdatedAt               time.Time `bson:"updatedAt"`
}

func (d *whatsAppSettingsDoc) toDomain() *domain.WhatsAppSettings {
	return &domain.WhatsAppSettings{
		PhoneNumber:             d.PhoneNumber,
		IsActive:                d.IsActive,
		BusinessName:            d.BusinessName,
		WelcomeMessage:          d.WelcomeMessage,
		PropertyInquiryTemplate: d.PropertyInquiryTemplate,
		GeneralInquiryTemplate:  d.GeneralInquiryTemplate,
		CreatedAt:               d.CreatedAt,
		UpdatedAt:               d.UpdatedAt,
	}
}

type contactSettingsDoc struct {
	ID        string    `bson:"_id"`
	Phone     string    `bson:"phone"`
	Email     string    `bson:"email"`
	Address   string    `bson:"address"`
	IsActive  bool      `bson:"isActive"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func (d *contactSettingsDoc) toDomain() *domain.ContactSettings {
	return &domain.ContactSettings{
		Phone:     d.Phone,
		Email:     d.Email,
		Address:   d.Address,
		IsActive:  d.IsActive,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type contactMessageDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Phone     string             `bson:"phone"`
	Message   string             `bson:"message"`
	IsRead    bool               `bson:"isRead"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d *contactMessageDoc) toDomain() *domain.ContactMessage {
	return &domain.ContactMessage{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Email:     d.Email,
		Phone:     d.Phone,
		Message:   d.Message,
		IsRead:    d.IsRead,
		CreatedAt: d.CreatedAt,
	}
}
