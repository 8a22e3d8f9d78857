package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"

	"tam_website/internal/model"
	"tam_website/internal/repository"
	"tam_website/internal/storage"
)

const msgCategoryNameRequired = "At least one category name is required."

var categoryNameTaken = map[string]string{
	model.LangFa: "دسته‌بندی با این نام فارسی در سیستم موجود است.",
	model.LangEn: "دسته‌بندی با این نام انگلیسی در سیستم موجود است.",
}

type CategoryService interface {
	List(ctx context.Context, filters model.NameFilters) ([]model.Category, int, error)
	Get(ctx context.Context, id int64) (*model.Category, error)
	Create(ctx context.Context, req model.CategoryRequest, image *multipart.FileHeader) (*model.Category, error)
	Update(ctx context.Context, id int64, req model.CategoryRequest, image *multipart.FileHeader) (*model.Category, error)
	Delete(ctx context.Context, id int64) (*model.Category, error)
}

type categoryService struct {
	repo   repository.CategoryRepository
	store  storage.Storage
	logger *slog.Logger
}

func NewCategoryService(repo repository.CategoryRepository, store storage.Storage, logger *slog.Logger) CategoryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &categoryService{repo: repo, store: store, logger: logger}
}

func (s *categoryService) List(ctx context.Context, filters model.NameFilters) ([]model.Category, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *categoryService) Get(ctx context.Context, id int64) (*model.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

func applyCategoryTranslations(c *model.Category, req model.CategoryRequest) error {
	set := func(lang string, name, description *string) {
		t := c.Translations.Exact(lang)
		if name != nil {
			t.Name = strings.TrimSpace(*name)
		}
		if description != nil {
			t.Description = *description
		}
		c.Translations[lang] = t
	}
	set(model.LangFa, req.NameFa, req.DescriptionFa)
	set(model.LangEn, req.NameEn, req.DescriptionEn)

	for _, lang := range model.Languages {
		if c.Translations.Exact(lang).Name != "" {
			return nil
		}
	}
	return newValidationError("name_"+model.DefaultLanguage, msgCategoryNameRequired)
}

func (s *categoryService) Create(ctx context.Context, req model.CategoryRequest, image *multipart.FileHeader) (*model.Category, error) {
	category := &model.Category{Translations: model.Translations[model.CategoryTranslation]{}}
	if err := applyCategoryTranslations(category, req); err != nil {
		return nil, err
	}
	return s.save(ctx, category, image, true, true)
}

func (s *categoryService) Update(ctx context.Context, id int64, req model.CategoryRequest, image *multipart.FileHeader) (*model.Category, error) {
	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	oldNameEn := category.Translations.Exact(model.LangEn).Name
	if err := applyCategoryTranslations(category, req); err != nil {
		return nil, err
	}
	return s.save(ctx, category, image, false, category.Translations.Exact(model.LangEn).Name != oldNameEn)
}

func (s *categoryService) save(ctx context.Context, category *model.Category, image *multipart.FileHeader, isNew, reslug bool) (*model.Category, error) {
	if reslug {
		slug, err := uniqueSlug(ctx, category.Translations.Exact(model.LangEn).Name, category.ID, s.repo.SlugExists)
		if err != nil {
			return nil, err
		}
		category.Slug = slug
	}

	swap, err := swapImage(ctx, s.store, s.logger, "categories", image, &category.ImageKey, &category.ImageURL)
	if err != nil {
		return nil, err
	}

	if isNew {
		err = s.repo.Create(ctx, category)
	} else {
		err = s.repo.Update(ctx, category)
	}
	if err != nil {
		swap.Rollback(ctx)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		if verr := duplicateNameError(err, categoryNameTaken); verr != nil {
			return nil, verr
		}
		return nil, fmt.Errorf("failed to save category: %w", err)
	}
	swap.Commit(ctx)
	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, id int64) (*model.Category, error) {
	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	deleteImage(ctx, s.store, s.logger, category.ImageKey)
	return category, nil
}
