package mocks

import (
	"context"

	"tam_website/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockArticleRepository struct {
	mock.Mock
}

func (m *MockArticleRepository) Create(ctx context.Context, article *model.Article) error {
	args := m.Called(ctx, article)
	return args.Error(0)
}

func (m *MockArticleRepository) Update(ctx context.Context, article *model.Article) error {
	args := m.Called(ctx, article)
	return args.Error(0)
}

func (m *MockArticleRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockArticleRepository) FindByID(ctx context.Context, id int64) (*model.Article, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Article), args.Error(1)
}

func (m *MockArticleRepository) FindBySlug(ctx context.Context, slug string) (*model.Article, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Article), args.Error(1)
}

func (m *MockArticleRepository) List(ctx context.Context, filters model.ArticleFilters) ([]model.Article, int, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]model.Article), args.Int(1), args.Error(2)
}

func (m *MockArticleRepository) ListScheduled(ctx context.Context) ([]model.Article, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Article), args.Error(1)
}

func (m *MockArticleRepository) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	args := m.Called(ctx, slug, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockArticleRepository) TitleExists(ctx context.Context, lang, title string, excludeID int64) (bool, error) {
	args := m.Called(ctx, lang, title, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockArticleRepository) PublishIfDraft(ctx context.Context, id int64, taskID string) (bool, error) {
	args := m.Called(ctx, id, taskID)
	return args.Bool(0), args.Error(1)
}

func (m *MockArticleRepository) AddImage(ctx context.Context, image *model.ArticleImage) error {
	args := m.Called(ctx, image)
	return args.Error(0)
}

func (m *MockArticleRepository) RecordHit(ctx context.Context, articleID int64, ip string) (bool, error) {
	args := m.Called(ctx, articleID, ip)
	return args.Bool(0), args.Error(1)
}

func (m *MockArticleRepository) ToggleLike(ctx context.Context, articleID int64, ip string) (*model.LikeResult, error) {
	args := m.Called(ctx, articleID, ip)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LikeResult), args.Error(1)
}
