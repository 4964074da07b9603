package domain

import "time"

// SliderImage is one slide of the home page carousel
type SliderImage struct {
	ID          string    `json:"id"`
	ImageURL    string    `json:"imageUrl"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type NewSliderImage struct {
	ImageURL    string `json:"imageUrl" validate:"required"`
	Title       string `json:"title" validate:"max=255"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"`
}

type SliderImagePatch struct {
	ImageURL    *string `json:"imageUrl" validate:"omitempty,min=1"`
	Title       *string `json:"title" validate:"omitempty,max=255"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

func (patch SliderImagePatch) Apply(s *SliderImage) {
	if patch.ImageURL != nil {
		s.ImageURL = *patch.ImageURL
	}
	if patch.Title != nil {
		s.Title = *patch.Title
	}
	if patch.Description != nil {
		s.Description = *patch.Description
	}
	if patch.IsActive != nil {
		s.IsActive = *patch.IsActive
	}
}
