package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"reviewhub/internal/http-api/access"
	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"
)

type TitleService interface {
	GetAll(ctx context.Context, page, pageSize int) (*dto.Paginated[dto.TitleResponse], error)
	GetByID(ctx context.Context, id int64) (*dto.TitleResponse, error)
	Create(ctx context.Context, actor access.Actor, in dto.CreateTitleDTO) (*dto.TitleResponse, error)
	Update(ctx context.Context, actor access.Actor, id int64, in dto.UpdateTitleDTO) (*dto.TitleResponse, error)
	Delete(ctx context.Context, actor access.Actor, id int64) error
}

type titleService struct {
	titleRepo    repository.TitleRepository
	categoryRepo repository.CategoryRepository
	genreRepo    repository.GenreRepository
	reviewRepo   repository.ReviewRepository
}

func NewTitleService(
	titleRepo repository.TitleRepository,
	categoryRepo repository.CategoryRepository,
	genreRepo repository.GenreRepository,
	reviewRepo repository.ReviewRepository,
) TitleService {
	return &titleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		reviewRepo:   reviewRepo,
	}
}

// GetAll lists titles with their derived ratings
func (s *titleService) GetAll(ctx context.Context, page, pageSize int) (*dto.Paginated[dto.TitleResponse], error) {
	titles, total, err := s.titleRepo.GetAll(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.TitleResponse, 0, len(titles))
	for i := range titles {
		avg, err := s.reviewRepo.AverageScore(titles[i].ID)
		if err != nil {
			return nil, err
		}
		responses = append(responses, dto.TitleFromModel(&titles[i], roundRating(avg)))
	}

	return dto.NewPaginated(responses, int(total), page, pageSize), nil
}

// GetByID retrieves a title with its derived rating. The rating is
// computed from the review set on this read, never from a stored field.
func (s *titleService) GetByID(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	avg, err := s.reviewRepo.AverageScore(id)
	if err != nil {
		return nil, err
	}

	resp := dto.TitleFromModel(title, roundRating(avg))
	return &resp, nil
}

// Create adds a title to the catalog; admin only
func (s *titleService) Create(ctx context.Context, actor access.Actor, in dto.CreateTitleDTO) (*dto.TitleResponse, error) {
	if d := access.Decide(actor, access.OpCreate, access.ResourceTitle, nil); !d.Allowed() {
		return nil, decisionError(d)
	}

	if in.Year > time.Now().Year() {
		return nil, ErrInvalidYear
	}

	title := &models.Title{
		Name:        in.Name,
		Year:        in.Year,
		Description: in.Description,
	}

	if in.Category != nil {
		category, err := s.categoryRepo.GetBySlug(ctx, *in.Category)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		title.CategoryID = &category.ID
	}

	genres, err := s.genreRepo.GetBySlugs(ctx, in.Genres)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	title.Genres = genres

	if err := s.titleRepo.Create(ctx, title); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, title.ID)
}

// Update applies a partial edit to a title; admin only
func (s *titleService) Update(ctx context.Context, actor access.Actor, id int64, in dto.UpdateTitleDTO) (*dto.TitleResponse, error) {
	if d := access.Decide(actor, access.OpUpdate, access.ResourceTitle, nil); !d.Allowed() {
		return nil, decisionError(d)
	}

	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if in.Name != nil {
		title.Name = *in.Name
	}
	if in.Year != nil {
		if *in.Year > time.Now().Year() {
			return nil, ErrInvalidYear
		}
		title.Year = *in.Year
	}
	if in.Description != nil {
		title.Description = in.Description
	}
	if in.Category != nil {
		category, err := s.categoryRepo.GetBySlug(ctx, *in.Category)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		title.CategoryID = &category.ID
	}

	if in.Genres != nil {
		genres, err := s.genreRepo.GetBySlugs(ctx, in.Genres)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		if err := s.titleRepo.ReplaceGenres(ctx, title, genres); err != nil {
			return nil, err
		}
	}

	if err := s.titleRepo.Update(ctx, title); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// Delete removes a title; admin only
func (s *titleService) Delete(ctx context.Context, actor access.Actor, id int64) error {
	if d := access.Decide(actor, access.OpDelete, access.ResourceTitle, nil); !d.Allowed() {
		return decisionError(d)
	}

	if err := s.titleRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
