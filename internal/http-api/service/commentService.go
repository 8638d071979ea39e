package service

import (
	"errors"

	"gorm.io/gorm"

	"reviewhub/internal/http-api/access"
	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"
)

type CommentService interface {
	CreateComment(actor access.Actor, titleID, reviewID int64, text string) (*dto.CommentResponse, error)
	UpdateComment(actor access.Actor, titleID, reviewID, commentID int64, text string) (*dto.CommentResponse, error)
	DeleteComment(actor access.Actor, titleID, reviewID, commentID int64) error
	GetComment(titleID, reviewID, commentID int64) (*dto.CommentResponse, error)
	GetReviewComments(titleID, reviewID int64, page, pageSize int) (*dto.Paginated[dto.CommentResponse], error)
}

type commentService struct {
	commentRepo repository.CommentRepository
	reviewRepo  repository.ReviewRepository
}

func NewCommentService(commentRepo repository.CommentRepository, reviewRepo repository.ReviewRepository) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		reviewRepo:  reviewRepo,
	}
}

// CreateComment posts a comment under a review
func (s *commentService) CreateComment(actor access.Actor, titleID, reviewID int64, text string) (*dto.CommentResponse, error) {
	if d := access.Decide(actor, access.OpCreate, access.ResourceComment, nil); !d.Allowed() {
		return nil, decisionError(d)
	}

	if _, err := s.reviewUnderTitle(titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Text:     text,
		AuthorID: actor.ID,
		ReviewID: reviewID,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}

	// Reload with author data
	comment, err := s.commentRepo.GetByID(comment.ID)
	if err != nil {
		return nil, err
	}

	return dto.FromModelToCommentResponse(comment), nil
}

// UpdateComment edits a comment; author, moderator or admin only
func (s *commentService) UpdateComment(actor access.Actor, titleID, reviewID, commentID int64, text string) (*dto.CommentResponse, error) {
	comment, err := s.getReviewComment(titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}

	d := access.Decide(actor, access.OpUpdate, access.ResourceComment, &access.Object{OwnerID: comment.AuthorID})
	if !d.Allowed() {
		return nil, decisionError(d)
	}

	comment.Text = text
	if err := s.commentRepo.Update(comment); err != nil {
		return nil, err
	}

	comment, err = s.commentRepo.GetByID(commentID)
	if err != nil {
		return nil, err
	}

	return dto.FromModelToCommentResponse(comment), nil
}

// DeleteComment removes a comment; author, moderator or admin only
func (s *commentService) DeleteComment(actor access.Actor, titleID, reviewID, commentID int64) error {
	comment, err := s.getReviewComment(titleID, reviewID, commentID)
	if err != nil {
		return err
	}

	d := access.Decide(actor, access.OpDelete, access.ResourceComment, &access.Object{OwnerID: comment.AuthorID})
	if !d.Allowed() {
		return decisionError(d)
	}

	if err := s.commentRepo.Delete(commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// GetComment retrieves a single comment under a review
func (s *commentService) GetComment(titleID, reviewID, commentID int64) (*dto.CommentResponse, error) {
	comment, err := s.getReviewComment(titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToCommentResponse(comment), nil
}

// GetReviewComments retrieves a review's comments, newest first, with pagination
func (s *commentService) GetReviewComments(titleID, reviewID int64, page, pageSize int) (*dto.Paginated[dto.CommentResponse], error) {
	if _, err := s.reviewUnderTitle(titleID, reviewID); err != nil {
		return nil, err
	}

	comments, total, err := s.commentRepo.GetByReview(reviewID, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CommentResponse, 0, len(comments))
	for _, comment := range comments {
		responses = append(responses, *dto.FromModelToCommentResponse(&comment))
	}

	return dto.NewPaginated(responses, int(total), page, pageSize), nil
}

// getReviewComment fetches a comment and verifies the full nesting of
// the URL: the comment belongs to the review, the review to the title.
func (s *commentService) getReviewComment(titleID, reviewID, commentID int64) (*models.Comment, error) {
	if _, err := s.reviewUnderTitle(titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if comment.ReviewID != reviewID {
		return nil, ErrNotFound
	}
	return comment, nil
}

func (s *commentService) reviewUnderTitle(titleID, reviewID int64) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if review.TitleID != titleID {
		return nil, ErrNotFound
	}
	return review, nil
}
