package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"reviewhub/internal/http-api/access"
	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/models"
	"reviewhub/internal/http-api/repository"
)

type GenreService interface {
	GetAll(ctx context.Context, page, pageSize int) (*dto.Paginated[dto.GenreResponse], error)
	Create(ctx context.Context, actor access.Actor, in dto.CreateGenreDTO) (*dto.GenreResponse, error)
	Rename(ctx context.Context, actor access.Actor, slug, name string) (*dto.GenreResponse, error)
	Delete(ctx context.Context, actor access.Actor, slug string) error
}

type genreService struct {
	repo repository.GenreRepository
}

func NewGenreService(repo repository.GenreRepository) GenreService {
	return &genreService{repo: repo}
}

func (s *genreService) GetAll(ctx context.Context, page, pageSize int) (*dto.Paginated[dto.GenreResponse], error) {
	list, total, err := s.repo.GetAll(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.GenreResponse, 0, len(list))
	for _, g := range list {
		responses = append(responses, dto.GenreFromModel(g))
	}
	return dto.NewPaginated(responses, int(total), page, pageSize), nil
}

func (s *genreService) Create(ctx context.Context, actor access.Actor, in dto.CreateGenreDTO) (*dto.GenreResponse, error) {
	if d := access.Decide(actor, access.OpCreate, access.ResourceGenre, nil); !d.Allowed() {
		return nil, decisionError(d)
	}

	genre := models.Genre{Name: in.Name, Slug: in.Slug}
	if err := s.repo.Create(ctx, &genre); err != nil {
		return nil, err
	}
	resp := dto.GenreFromModel(genre)
	return &resp, nil
}

// Rename edits a genre's display name; the slug key stays fixed
func (s *genreService) Rename(ctx context.Context, actor access.Actor, slug, name string) (*dto.GenreResponse, error) {
	if d := access.Decide(actor, access.OpUpdate, access.ResourceGenre, nil); !d.Allowed() {
		return nil, decisionError(d)
	}

	genre, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	genre.Name = name
	if err := s.repo.Update(ctx, genre); err != nil {
		return nil, err
	}
	resp := dto.GenreFromModel(*genre)
	return &resp, nil
}

// Delete removes a genre and detaches it from any titles
func (s *genreService) Delete(ctx context.Context, actor access.Actor, slug string) error {
	if d := access.Decide(actor, access.OpDelete, access.ResourceGenre, nil); !d.Allowed() {
		return decisionError(d)
	}

	if err := s.repo.DeleteBySlug(ctx, slug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
