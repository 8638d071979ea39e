package repository

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"reviewhub/internal/http-api/models"
)

// ErrDuplicateReview is returned when an insert hits the uniqueness
// constraint on (author_id, title_id). The constraint is the
// authoritative guard against concurrent double-submits; callers may
// pre-check existence but must still handle this error.
var ErrDuplicateReview = errors.New("review already exists for this author and title")

type ReviewRepository interface {
	Create(review *models.Review) error
	Update(review *models.Review) error
	Delete(id int64) error
	GetByID(id int64) (*models.Review, error)
	GetByAuthorAndTitle(authorID string, titleID int64) (*models.Review, error)
	GetByTitle(titleID int64, page, pageSize int) ([]models.Review, int64, error)
	AverageScore(titleID int64) (*float64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create inserts a new review. A unique violation from Postgres is
// translated to ErrDuplicateReview.
func (r *reviewRepository) Create(review *models.Review) error {
	if err := r.db.Create(review).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateReview
		}
		return err
	}
	return nil
}

// Update saves an existing review
func (r *reviewRepository) Update(review *models.Review) error {
	return r.db.Save(review).Error
}

// Delete removes a review by ID
func (r *reviewRepository) Delete(id int64) error {
	result := r.db.Delete(&models.Review{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *reviewRepository) GetByID(id int64) (*models.Review, error) {
	var review models.Review
	if err := r.db.Preload("Author").First(&review, id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// GetByAuthorAndTitle retrieves an author's review for a specific title
func (r *reviewRepository) GetByAuthorAndTitle(authorID string, titleID int64) (*models.Review, error) {
	var review models.Review
	err := r.db.Where("author_id = ? AND title_id = ?", authorID, titleID).
		Preload("Author").
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// GetByTitle retrieves all reviews for a title, newest first, with pagination
func (r *reviewRepository) GetByTitle(titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	var reviews []models.Review
	var total int64

	if err := r.db.Model(&models.Review{}).Where("title_id = ?", titleID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := r.db.Where("title_id = ?", titleID).
		Preload("Author").
		Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

// AverageScore computes the mean review score for a title from the
// current review set. Returns nil when the title has no reviews, so the
// caller can distinguish "no reviews yet" from a genuine zero.
func (r *reviewRepository) AverageScore(titleID int64) (*float64, error) {
	var avg *float64
	err := r.db.Model(&models.Review{}).
		Select("AVG(score)").
		Where("title_id = ?", titleID).
		Scan(&avg).Error
	if err != nil {
		return nil, err
	}
	return avg, nil
}

// isUniqueViolation checks for SQLSTATE 23505 from the Postgres driver
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
