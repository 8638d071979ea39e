package dto

import (
	"time"

	"reviewhub/internal/http-api/models"
)

// CreateCommentDTO for posting a comment under a review
type CreateCommentDTO struct {
	Text string `json:"text" binding:"required"`
}

// UpdateCommentDTO for PATCH
type UpdateCommentDTO struct {
	Text string `json:"text" binding:"required"`
}

// CommentResponse for returning comment information
type CommentResponse struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromModelToCommentResponse converts a Comment model to CommentResponse DTO
func FromModelToCommentResponse(comment *models.Comment) *CommentResponse {
	return &CommentResponse{
		ID:        comment.ID,
		Text:      comment.Text,
		Author:    comment.Author.Username,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}
