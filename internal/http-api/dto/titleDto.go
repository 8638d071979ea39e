package dto

import (
	"time"

	"reviewhub/internal/http-api/models"
)

// CreateTitleDTO used for POST /api/v1/titles.
// Category and genres are referenced by slug.
type CreateTitleDTO struct {
	Name        string   `json:"name" binding:"required,max=256"`
	Year        int      `json:"year" binding:"required"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Genres      []string `json:"genres,omitempty"`
}

// UpdateTitleDTO used for PATCH /api/v1/titles/:id (partial updates allowed)
type UpdateTitleDTO struct {
	Name        *string  `json:"name,omitempty"`
	Year        *int     `json:"year,omitempty"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Genres      []string `json:"genres,omitempty"`
}

// TitleResponse DTO for responses. Rating is the mean review score,
// recomputed per request; nil means the title has no reviews yet.
type TitleResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Year        int               `json:"year"`
	Description *string           `json:"description,omitempty"`
	Rating      *float64          `json:"rating"`
	Category    *CategoryResponse `json:"category,omitempty"`
	Genres      []GenreResponse   `json:"genres"`
	CreatedAt   time.Time         `json:"created_at"`
}

// TitleFromModel converts a Title model plus its derived rating to a response
func TitleFromModel(t *models.Title, rating *float64) TitleResponse {
	resp := TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Description: t.Description,
		Rating:      rating,
		Genres:      make([]GenreResponse, 0, len(t.Genres)),
		CreatedAt:   t.CreatedAt,
	}
	if t.Category != nil {
		c := CategoryFromModel(*t.Category)
		resp.Category = &c
	}
	for _, g := range t.Genres {
		resp.Genres = append(resp.Genres, GenreFromModel(g))
	}
	return resp
}
