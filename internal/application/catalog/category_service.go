package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CategoryService handles product category management
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	productRepo  catalog.ProductRepository
	logger       *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(
	categoryRepo catalog.CategoryRepository,
	productRepo catalog.ProductRepository,
	logger *zap.Logger,
) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		logger:       logger,
	}
}

// Create registers a new category
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	if err := s.ensureNameFree(ctx, req.Name); err != nil {
		return nil, err
	}

	category, err := catalog.NewCategory(req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, wrapStorageError(err)
	}

	s.logger.Info("Category created", zap.String("name", category.Name))

	response := ToCategoryResponse(category)
	return &response, nil
}

// Update modifies an existing category
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	category, err := s.requireCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != category.Name {
		if err := s.ensureNameFree(ctx, req.Name); err != nil {
			return nil, err
		}
	}
	if err := category.Update(req.Name, req.Description); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, wrapStorageError(err)
	}
	response := ToCategoryResponse(category)
	return &response, nil
}

// GetByID retrieves a category by ID
func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.requireCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToCategoryResponse(category)
	return &response, nil
}

// List retrieves all categories
func (s *CategoryService) List(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.FindAll(ctx, shared.Filter{Page: 1, PageSize: 500, OrderBy: "name", OrderDir: "asc"})
	if err != nil {
		return nil, wrapStorageError(err)
	}
	responses := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		responses = append(responses, ToCategoryResponse(&categories[i]))
	}
	return responses, nil
}

// Delete removes a category that has no products
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.requireCategory(ctx, id); err != nil {
		return err
	}
	count, err := s.productRepo.Count(ctx, catalog.ProductFilter{CategoryID: &id})
	if err != nil {
		return wrapStorageError(err)
	}
	if count > 0 {
		return shared.NewDomainError("INVALID_STATE", "Category still has products assigned")
	}
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return wrapStorageError(err)
	}
	return nil
}

// ensureNameFree rejects a name another category already uses
func (s *CategoryService) ensureNameFree(ctx context.Context, name string) error {
	_, err := s.categoryRepo.FindByName(ctx, name)
	if err == nil {
		return shared.NewDomainError("ALREADY_EXISTS", "Category with this name already exists")
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) && domainErr.Code == shared.ErrNotFound.Code {
		return nil
	}
	return wrapStorageError(err)
}

func (s *CategoryService) requireCategory(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == shared.ErrNotFound.Code {
			return nil, shared.NewDomainError("NOT_FOUND", "Category not found")
		}
		return nil, wrapStorageError(err)
	}
	return category, nil
}
