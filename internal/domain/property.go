package domain

import "time"

// Conventional status tags. The set is not enforced.
const (
	StatusForSale  = "For Sale"
	StatusActive   = "Active"
	StatusNewOffer = "New Offer"
)

// Property is a listing shown on the public site
type Property struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Location     string    `json:"location"`
	PropertyType string    `json:"propertyType"`
	Bedrooms     int       `json:"bedrooms"`
	Bathrooms    int       `json:"bathrooms"`
	Size         int       `json:"size"`
	Status       []string  `json:"status"`
	ImageURLs    []string  `json:"imageUrls"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewProperty is the create payload. Omitted optional fields get defaults.
type NewProperty struct {
	Title        string   `json:"title" validate:"required,max=255"`
	Description  string   `json:"description" validate:"required"`
	Location     string   `json:"location" validate:"required,max=255"`
	PropertyType string   `json:"propertyType" validate:"required,max=100"`
	Bedrooms     *int     `json:"bedrooms" validate:"omitempty,gte=0"`
	Bathrooms    *int     `json:"bathrooms" validate:"omitempty,gte=0"`
	Size         int      `json:"size" validate:"gt=0"`
	Status       []string `json:"status" validate:"omitempty,dive,required"`
	ImageURLs    []string `json:"imageUrls" validate:"omitempty,dive,required"`
	IsActive     *bool    `json:"isActive"`
}

// PropertyPatch carries a partial update; nil fields are left untouched.
type PropertyPatch struct {
	Title        *string   `json:"title" validate:"omitempty,min=1,max=255"`
	Description  *string   `json:"description" validate:"omitempty,min=1"`
	Location     *string   `json:"location" validate:"omitempty,min=1,max=255"`
	PropertyType *string   `json:"propertyType" validate:"omitempty,min=1,max=100"`
	Bedrooms     *int      `json:"bedrooms" validate:"omitempty,gte=0"`
	Bathrooms    *int      `json:"bathrooms" validate:"omitempty,gte=0"`
	Size         *int      `json:"size" validate:"omitempty,gt=0"`
	Status       *[]string `json:"status"`
	ImageURLs    *[]string `json:"imageUrls"`
	IsActive     *bool     `json:"isActive"`
}

// Apply merges the patch into p. UpdatedAt is left to the caller.
func (patch PropertyPatch) Apply(p *Property) {
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Location != nil {
		p.Location = *patch.Location
	}
	if patch.PropertyType != nil {
		p.PropertyType = *patch.PropertyType
	}
	if patch.Bedrooms != nil {
		p.Bedrooms = *patch.Bedrooms
	}
	if patch.Bathrooms != nil {
		p.Bathrooms = *patch.Bathrooms
	}
	if patch.Size != nil {
		p.Size = *patch.Size
	}
	if patch.Status != nil {
		p.Status = append([]string{}, (*patch.Status)...)
	}
	if patch.ImageURLs != nil {
		p.ImageURLs = append([]string{}, (*patch.ImageURLs)...)
	}
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}
}

// PropertyImage is a managed image record attached to a property
type PropertyImage struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"propertyId"`
	ImageURL   string    `json:"imageUrl"`
	Caption    *string   `json:"caption,omitempty"`
	IsMain     bool      `json:"isMain"`
	SortOrder  int       `json:"sortOrder"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewPropertyImage is the create payload for a property image
type NewPropertyImage struct {
	PropertyID string  `json:"propertyId"`
	ImageURL   string  `json:"imageUrl" validate:"required"`
	Caption    *string `json:"caption" validate:"omitempty,max=500"`
	IsMain     bool    `json:"isMain"`
	SortOrder  int     `json:"sortOrder" validate:"gte=0"`
}

// PropertyDetail is a property together with its image records
type PropertyDetail struct {
	Property
	Images []PropertyImage `json:"images"`
}
