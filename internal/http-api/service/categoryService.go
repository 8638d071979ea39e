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

type CategoryService interface {
	GetAll(ctx context.Context, page, pageSize int) (*dto.Paginated[dto.CategoryResponse], error)
	Create(ctx context.Context, actor access.Actor, in dto.CreateCategoryDTO) (*dto.CategoryResponse, error)
	Rename(ctx context.Context, actor access.Actor, slug, name string) (*dto.CategoryResponse, error)
	Delete(ctx context.Context, actor access.Actor, slug string) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) GetAll(ctx context.Context, page, pageSize int) (*dto.Paginated[dto.CategoryResponse], error) {
	list, total, err := s.repo.GetAll(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		responses = append(responses, dto.CategoryFromModel(c))
	}
	return dto.NewPaginated(responses, int(total), page, pageSize), nil
}

func (s *categoryService) Create(ctx context.Context, actor access.Actor, in dto.CreateCategoryDTO) (*dto.CategoryResponse, error) {
	if d := access.Decide(actor, access.OpCreate, access.ResourceCategory, nil); !d.Allowed() {
		return nil, decisionError(d)
	}

	category := models.Category{Name: in.Name, Slug: in.Slug}
	if err := s.repo.Create(ctx, &category); err != nil {
		return nil, err
	}
	resp := dto.CategoryFromModel(category)
	return &resp, nil
}

// Rename edits a category's display name; the slug key stays fixed
func (s *categoryService) Rename(ctx context.Context, actor access.Actor, slug, name string) (*dto.CategoryResponse, error) {
	if d := access.Decide(actor, access.OpUpdate, access.ResourceCategory, nil); !d.Allowed() {
		return nil, decisionError(d)
	}

	category, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	category.Name = name
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, err
	}
	resp := dto.CategoryFromModel(*category)
	return &resp, nil
}

// Delete removes a category; titles keep existing with a null category
func (s *categoryService) Delete(ctx context.Context, actor access.Actor, slug string) error {
	if d := access.Decide(actor, access.OpDelete, access.ResourceCategory, nil); !d.Allowed() {
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
