package dto

import (
	"time"

	"reviewhub/internal/http-api/models"
)

// CreateReviewDTO for posting a review under a title. Score bounds are
// enforced by the review service so the error carries the allowed range.
type CreateReviewDTO struct {
	Text  string `json:"text" binding:"required"`
	Score int    `json:"score" binding:"required"`
}

// UpdateReviewDTO for PATCH; both fields optional
type UpdateReviewDTO struct {
	Text  *string `json:"text,omitempty"`
	Score *int    `json:"score,omitempty"`
}

// ReviewResponse for returning review information
type ReviewResponse struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromModelToReviewResponse converts a Review model to ReviewResponse DTO
func FromModelToReviewResponse(review *models.Review) *ReviewResponse {
	return &ReviewResponse{
		ID:        review.ID,
		Text:      review.Text,
		Author:    review.Author.Username,
		Score:     review.Score,
		CreatedAt: review.CreatedAt,
		UpdatedAt: review.UpdatedAt,
	}
}
