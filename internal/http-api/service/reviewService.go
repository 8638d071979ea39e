package service

import (
	"context"
	"errors"
	"math"

	"gorm.io/gorm"

	"reviewhub/internal/http-api/access"
	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"
)

const (
	MinScore = 1
	MaxScore = 10
)

type ReviewService interface {
	CreateReview(actor access.Actor, titleID int64, score int, text string) (*dto.ReviewResponse, error)
	UpdateReview(actor access.Actor, titleID, reviewID int64, in dto.UpdateReviewDTO) (*dto.ReviewResponse, error)
	DeleteReview(actor access.Actor, titleID, reviewID int64) error
	GetReview(titleID, reviewID int64) (*dto.ReviewResponse, error)
	GetTitleReviews(titleID int64, page, pageSize int) (*dto.Paginated[dto.ReviewResponse], error)
	Rating(titleID int64) (*float64, error)
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	titleRepo  repository.TitleRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, titleRepo repository.TitleRepository) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		titleRepo:  titleRepo,
	}
}

// CreateReview records a new review for a title. An author gets exactly
// one review per title: the existence pre-check catches the common case
// early, and the store's uniqueness constraint settles concurrent
// submissions so exactly one of them wins.
func (s *reviewService) CreateReview(actor access.Actor, titleID int64, score int, text string) (*dto.ReviewResponse, error) {
	if d := access.Decide(actor, access.OpCreate, access.ResourceReview, nil); !d.Allowed() {
		return nil, decisionError(d)
	}

	if score < MinScore || score > MaxScore {
		return nil, ErrInvalidScore
	}

	if _, err := s.titleRepo.GetByID(context.Background(), titleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if _, err := s.reviewRepo.GetByAuthorAndTitle(actor.ID, titleID); err == nil {
		return nil, ErrReviewExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	review := &models.Review{
		Text:     text,
		AuthorID: actor.ID,
		TitleID:  titleID,
		Score:    score,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			return nil, ErrReviewExists
		}
		return nil, err
	}

	// Reload with author data
	review, err := s.reviewRepo.GetByID(review.ID)
	if err != nil {
		return nil, err
	}

	return dto.FromModelToReviewResponse(review), nil
}

// UpdateReview edits an existing review's text and/or score. Only the
// author, a moderator or an admin may do this; the (author, title) key
// never changes.
func (s *reviewService) UpdateReview(actor access.Actor, titleID, reviewID int64, in dto.UpdateReviewDTO) (*dto.ReviewResponse, error) {
	review, err := s.getTitleReview(titleID, reviewID)
	if err != nil {
		return nil, err
	}

	d := access.Decide(actor, access.OpUpdate, access.ResourceReview, &access.Object{OwnerID: review.AuthorID})
	if !d.Allowed() {
		return nil, decisionError(d)
	}

	if in.Score != nil {
		if *in.Score < MinScore || *in.Score > MaxScore {
			return nil, ErrInvalidScore
		}
		review.Score = *in.Score
	}
	if in.Text != nil {
		review.Text = *in.Text
	}

	if err := s.reviewRepo.Update(review); err != nil {
		return nil, err
	}

	review, err = s.reviewRepo.GetByID(reviewID)
	if err != nil {
		return nil, err
	}

	return dto.FromModelToReviewResponse(review), nil
}

// DeleteReview removes a review. The title's rating is derived on read,
// so the next Rating call reflects the removal immediately.
func (s *reviewService) DeleteReview(actor access.Actor, titleID, reviewID int64) error {
	review, err := s.getTitleReview(titleID, reviewID)
	if err != nil {
		return err
	}

	d := access.Decide(actor, access.OpDelete, access.ResourceReview, &access.Object{OwnerID: review.AuthorID})
	if !d.Allowed() {
		return decisionError(d)
	}

	if err := s.reviewRepo.Delete(reviewID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// GetReview retrieves a single review under a title
func (s *reviewService) GetReview(titleID, reviewID int64) (*dto.ReviewResponse, error) {
	review, err := s.getTitleReview(titleID, reviewID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToReviewResponse(review), nil
}

// GetTitleReviews retrieves a title's reviews, newest first, with pagination
func (s *reviewService) GetTitleReviews(titleID int64, page, pageSize int) (*dto.Paginated[dto.ReviewResponse], error) {
	if _, err := s.titleRepo.GetByID(context.Background(), titleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	reviews, total, err := s.reviewRepo.GetByTitle(titleID, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		responses = append(responses, *dto.FromModelToReviewResponse(&review))
	}

	return dto.NewPaginated(responses, int(total), page, pageSize), nil
}

// Rating recomputes the mean score over the title's current review set.
// Nil means no reviews exist; the value is never stored or cached, so it
// always reflects the latest committed reviews.
func (s *reviewService) Rating(titleID int64) (*float64, error) {
	if _, err := s.titleRepo.GetByID(context.Background(), titleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	avg, err := s.reviewRepo.AverageScore(titleID)
	if err != nil {
		return nil, err
	}
	return roundRating(avg), nil
}

// getTitleReview fetches a review and verifies it belongs to the title
// from the URL, so a review can't be reached through the wrong nesting.
func (s *reviewService) getTitleReview(titleID, reviewID int64) (*models.Review, error) {
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

// roundRating rounds a mean score to one decimal for display.
func roundRating(avg *float64) *float64 {
	if avg == nil {
		return nil
	}
	r := math.Round(*avg*10) / 10
	return &r
}
