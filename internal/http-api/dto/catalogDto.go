package dto

import "reviewhub/internal/http-api/models"

// CreateCategoryDTO used for POST /api/v1/categories
type CreateCategoryDTO struct {
	Name string `json:"name" binding:"required,max=256"`
	Slug string `json:"slug" binding:"required,max=50"`
}

// UpdateCategoryDTO used for PATCH /api/v1/categories/:slug.
// Only the name is editable; the slug is the immutable key.
type UpdateCategoryDTO struct {
	Name string `json:"name" binding:"required,max=256"`
}

type CategoryResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func CategoryFromModel(c models.Category) CategoryResponse {
	return CategoryResponse{Name: c.Name, Slug: c.Slug}
}

// CreateGenreDTO used for POST /api/v1/genres
type CreateGenreDTO struct {
	Name string `json:"name" binding:"required,max=256"`
	Slug string `json:"slug" binding:"required,max=50"`
}

// UpdateGenreDTO used for PATCH /api/v1/genres/:slug
type UpdateGenreDTO struct {
	Name string `json:"name" binding:"required,max=256"`
}

type GenreResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func GenreFromModel(g models.Genre) GenreResponse {
	return GenreResponse{Name: g.Name, Slug: g.Slug}
}
