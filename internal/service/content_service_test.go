package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"tam_website/internal/model"
	"tam_website/internal/repository"
	"tam_website/internal/repository/mocks"
	"tam_website/internal/storage"
	storeMocks "tam_website/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func keyedPut(_ context.Context, key string, _ io.Reader, _ storage.PutObjectOptions) storage.ObjectInfo {
	return storage.ObjectInfo{Key: key, URL: "http://storage.test/" + key}
}

func hasPrefix(prefix string) interface{} {
	return mock.MatchedBy(func(key string) bool { return strings.HasPrefix(key, prefix) })
}

func TestTeamService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates with slug and image", func(t *testing.T) {
		repo := new(mocks.MockTeamRepository)
		store := new(storeMocks.MockStorage)
		svc := NewTeamService(repo, store, nil)

		repo.On("NameExists", ctx, model.LangFa, "استقلال", int64(0)).Return(false, nil)
		repo.On("NameExists", ctx, model.LangEn, "Esteghlal FC", int64(0)).Return(false, nil)
		repo.On("SlugExists", ctx, "esteghlal-fc", int64(0)).Return(false, nil)
		repo.On("Create", ctx, mock.AnythingOfType("*model.Team")).Return(nil)
		store.On("Put", ctx, hasPrefix("teams/"), mock.Anything, mock.Anything).Return(keyedPut, nil)

		team, err := svc.Create(ctx, model.TeamRequest{NameFa: strp("استقلال"), NameEn: strp(" Esteghlal FC ")}, newFileHeader(t, "logo.png", []byte("png")))
		require.NoError(t, err)
		assert.Equal(t, "esteghlal-fc", team.Slug)
		assert.Equal(t, "Esteghlal FC", team.Name(model.LangEn))
		require.NotNil(t, team.ImageURL)
		assert.True(t, strings.HasPrefix(*team.ImageURL, "http://storage.test/teams/"))
	})

	t.Run("duplicate persian name", func(t *testing.T) {
		repo := new(mocks.MockTeamRepository)
		svc := NewTeamService(repo, new(storeMocks.MockStorage), nil)
		repo.On("NameExists", ctx, model.LangFa, "استقلال", int64(0)).Return(true, nil)

		_, err := svc.Create(ctx, model.TeamRequest{NameFa: strp("استقلال"), NameEn: strp("Esteghlal")}, newFileHeader(t, "logo.png", []byte("png")))
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "name_fa", vErr.Field)
		assert.Equal(t, "تیمی با این نام فارسی در سیستم موجود است.", vErr.Message)
	})

	t.Run("image is required", func(t *testing.T) {
		repo := new(mocks.MockTeamRepository)
		svc := NewTeamService(repo, new(storeMocks.MockStorage), nil)
		repo.On("NameExists", ctx, mock.Anything, mock.Anything, int64(0)).Return(false, nil)

		_, err := svc.Create(ctx, model.TeamRequest{NameFa: strp("استقلال"), NameEn: strp("Esteghlal")}, nil)
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "image", vErr.Field)
	})

	t.Run("failed insert removes uploaded image", func(t *testing.T) {
		repo := new(mocks.MockTeamRepository)
		store := new(storeMocks.MockStorage)
		svc := NewTeamService(repo, store, nil)
		repo.On("NameExists", ctx, mock.Anything, mock.Anything, int64(0)).Return(false, nil)
		repo.On("SlugExists", ctx, "esteghlal", int64(0)).Return(false, nil)
		repo.On("Create", ctx, mock.Anything).Return(errors.New("insert failed"))
		store.On("Put", ctx, hasPrefix("teams/"), mock.Anything, mock.Anything).Return(keyedPut, nil)
		store.On("Delete", ctx, hasPrefix("teams/")).Return(nil)

		_, err := svc.Create(ctx, model.TeamRequest{NameFa: strp("استقلال"), NameEn: strp("Esteghlal")}, newFileHeader(t, "logo.png", []byte("png")))
		require.Error(t, err)
		store.AssertNumberOfCalls(t, "Delete", 1)
	})
}

func TestTeamService_Update(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockTeamRepository)
	store := new(storeMocks.MockStorage)
	svc := NewTeamService(repo, store, nil)

	oldKey := "teams/old.png"
	team := &model.Team{
		ID:       3,
		Slug:     "esteghlal",
		ImageKey: &oldKey,
		Translations: model.Translations[model.NameTranslation]{
			model.LangFa: {Name: "استقلال"},
			model.LangEn: {Name: "Esteghlal"},
		},
	}
	repo.On("FindByID", ctx, int64(3)).Return(team, nil)
	repo.On("NameExists", ctx, model.LangEn, "Esteghlal Tehran", int64(3)).Return(false, nil)
	repo.On("SlugExists", ctx, "esteghlal-tehran", int64(3)).Return(false, nil)
	repo.On("Update", ctx, team).Return(nil)
	store.On("Put", ctx, hasPrefix("teams/"), mock.Anything, mock.Anything).Return(keyedPut, nil)
	store.On("Delete", ctx, oldKey).Return(nil)

	got, err := svc.Update(ctx, 3, model.TeamRequest{NameEn: strp("Esteghlal Tehran")}, newFileHeader(t, "new.jpg", []byte("jpg")))
	require.NoError(t, err)
	assert.Equal(t, "esteghlal-tehran", got.Slug)
	assert.NotEqual(t, oldKey, *got.ImageKey)
	store.AssertCalled(t, "Delete", ctx, oldKey)
	repo.AssertNotCalled(t, "NameExists", ctx, model.LangFa, mock.Anything, mock.Anything)
}

func TestTeamService_Delete(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockTeamRepository)
	svc := NewTeamService(repo, new(storeMocks.MockStorage), nil)
	repo.On("FindByID", ctx, int64(1)).Return(nil, nil)

	_, err := svc.Delete(ctx, 1)
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestPlayerService_Validation(t *testing.T) {
	ctx := context.Background()
	names := model.PlayerRequest{NameFa: strp("علی"), NameEn: strp("Ali")}

	tests := []struct {
		name      string
		number    int
		position  string
		wantField string
	}{
		{name: "number too low", number: 0, position: model.PositionForward, wantField: "number"},
		{name: "number too high", number: 100, position: model.PositionForward, wantField: "number"},
		{name: "unknown position", number: 9, position: "STRIKER", wantField: "position"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockPlayerRepository)
			svc := NewPlayerService(repo, new(storeMocks.MockStorage), nil)
			repo.On("NameExists", ctx, mock.Anything, mock.Anything, int64(0)).Return(false, nil)

			req := names
			req.Number = &tt.number
			req.Position = &tt.position
			_, err := svc.Create(ctx, req, newFileHeader(t, "p.png", []byte("x")))
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestPlayerService_Create(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockPlayerRepository)
	store := new(storeMocks.MockStorage)
	svc := NewPlayerService(repo, store, nil)

	repo.On("NameExists", ctx, model.LangFa, "علی", int64(0)).Return(false, nil)
	repo.On("NameExists", ctx, model.LangEn, "Ali", int64(0)).Return(true, nil)

	number, position := 9, model.PositionForward
	_, err := svc.Create(ctx, model.PlayerRequest{NameFa: strp("علی"), NameEn: strp("Ali"), Number: &number, Position: &position}, nil)
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "name_en", vErr.Field)
	assert.Equal(t, "بازیکنی با این نام انگلیسی در سیستم موجود است.", vErr.Message)
	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestContentServices_DuplicateOnSave(t *testing.T) {
	ctx := context.Background()
	names := func() model.Translations[model.NameTranslation] {
		return model.Translations[model.NameTranslation]{
			model.LangFa: {Name: "علی"},
			model.LangEn: {Name: "Ali"},
		}
	}

	t.Run("player name taken between check and write", func(t *testing.T) {
		repo := new(mocks.MockPlayerRepository)
		svc := NewPlayerService(repo, new(storeMocks.MockStorage), nil)
		repo.On("FindByID", ctx, int64(5)).Return(&model.Player{ID: 5, Number: 9, Position: model.PositionForward, Translations: names()}, nil)
		repo.On("NameExists", ctx, model.LangFa, "مهدی", int64(5)).Return(false, nil)
		repo.On("Update", ctx, mock.Anything).
			Return(fmt.Errorf("failed to save translation: %w", &repository.DuplicateTranslationError{Lang: model.LangFa}))

		_, err := svc.Update(ctx, 5, model.PlayerRequest{NameFa: strp("مهدی")}, nil)
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "name_fa", vErr.Field)
		assert.Equal(t, "بازیکنی با این نام فارسی در سیستم موجود است.", vErr.Message)
	})

	t.Run("team slug taken between check and write", func(t *testing.T) {
		repo := new(mocks.MockTeamRepository)
		svc := NewTeamService(repo, new(storeMocks.MockStorage), nil)
		repo.On("FindByID", ctx, int64(3)).Return(&model.Team{ID: 3, Slug: "ali", Translations: names()}, nil)
		repo.On("NameExists", ctx, model.LangEn, "Persepolis", int64(3)).Return(false, nil)
		repo.On("SlugExists", ctx, "persepolis", int64(3)).Return(false, nil)
		repo.On("Update", ctx, mock.Anything).Return(fmt.Errorf("failed to update team: %w", repository.ErrDuplicate))

		_, err := svc.Update(ctx, 3, model.TeamRequest{NameEn: strp("Persepolis")}, nil)
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "name_en", vErr.Field)
		assert.Equal(t, "تیمی با این نام انگلیسی در سیستم موجود است.", vErr.Message)
	})

	t.Run("category slug taken between check and write", func(t *testing.T) {
		repo := new(mocks.MockCategoryRepository)
		svc := NewCategoryService(repo, new(storeMocks.MockStorage), nil)
		repo.On("SlugExists", ctx, "news", int64(0)).Return(false, nil)
		repo.On("Create", ctx, mock.Anything).Return(fmt.Errorf("failed to create category: %w", repository.ErrDuplicate))

		_, err := svc.Create(ctx, model.CategoryRequest{NameFa: strp("اخبار"), NameEn: strp("News")}, nil)
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "name_en", vErr.Field)
		assert.Equal(t, "دسته‌بندی با این نام انگلیسی در سیستم موجود است.", vErr.Message)
	})

	t.Run("other failures stay internal", func(t *testing.T) {
		repo := new(mocks.MockCategoryRepository)
		svc := NewCategoryService(repo, new(storeMocks.MockStorage), nil)
		repo.On("SlugExists", ctx, "news", int64(0)).Return(false, nil)
		repo.On("Create", ctx, mock.Anything).Return(errors.New("connection reset"))

		_, err := svc.Create(ctx, model.CategoryRequest{NameEn: strp("News")}, nil)
		require.Error(t, err)
		var vErr *ValidationError
		assert.False(t, errors.As(err, &vErr))
	})
}

func TestPlayerService_ListIgnoresUnknownPosition(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockPlayerRepository)
	svc := NewPlayerService(repo, new(storeMocks.MockStorage), nil)
	repo.On("List", ctx, model.NameFilters{Lang: model.LangFa}).Return([]model.Player{}, 0, nil)

	_, _, err := svc.List(ctx, model.NameFilters{Lang: model.LangFa, Position: strp("STRIKER")})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCategoryService(t *testing.T) {
	ctx := context.Background()

	t.Run("needs a name", func(t *testing.T) {
		svc := NewCategoryService(new(mocks.MockCategoryRepository), new(storeMocks.MockStorage), nil)
		_, err := svc.Create(ctx, model.CategoryRequest{DescriptionFa: strp("توضیح")}, nil)
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "name_fa", vErr.Field)
	})

	t.Run("image is optional", func(t *testing.T) {
		repo := new(mocks.MockCategoryRepository)
		svc := NewCategoryService(repo, new(storeMocks.MockStorage), nil)
		repo.On("SlugExists", ctx, "news", int64(0)).Return(false, nil)
		repo.On("Create", ctx, mock.AnythingOfType("*model.Category")).Return(nil)

		c, err := svc.Create(ctx, model.CategoryRequest{NameFa: strp("اخبار"), NameEn: strp("News")}, nil)
		require.NoError(t, err)
		assert.Equal(t, "news", c.Slug)
		assert.Nil(t, c.ImageURL)
	})

	t.Run("missing on update", func(t *testing.T) {
		repo := new(mocks.MockCategoryRepository)
		svc := NewCategoryService(repo, new(storeMocks.MockStorage), nil)
		repo.On("FindByID", ctx, int64(4)).Return(&model.Category{ID: 4, Translations: model.Translations[model.CategoryTranslation]{
			model.LangFa: {Name: "اخبار"},
		}}, nil)
		repo.On("Update", ctx, mock.Anything).Return(repository.ErrNotFound)

		_, err := svc.Update(ctx, 4, model.CategoryRequest{DescriptionFa: strp("جدید")}, nil)
		assert.ErrorIs(t, err, ErrCategoryNotFound)
	})
}

func TestDashboardService_Stats(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockStatsRepository)
	svc := NewDashboardService(repo)

	repo.On("Counts", ctx).Return(&model.DashboardCounts{Users: 4, Articles: 3, PublishedArticles: 2, DraftArticles: 1, TotalViews: 10}, nil)
	repo.On("TopViewed", ctx, 3).Return([]model.ArticleRank{
		{ID: 1, Slug: "a", TitleFa: "الف", TitleEn: "A", Count: 7},
		{ID: 2, Slug: "b", TitleEn: "B", Count: 3},
	}, nil)
	repo.On("TopLiked", ctx, 3).Return(nil, nil)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Users)
	assert.Equal(t, 10, stats.TotalViews)
	require.Len(t, stats.TopViewedArticles, 2)
	assert.Equal(t, "الف", stats.TopViewedArticles[0].Title)
	assert.Equal(t, "B", stats.TopViewedArticles[1].Title)
	assert.Equal(t, 7, stats.TopViewedArticles[0].Views)
	assert.NotNil(t, stats.TopLikedArticles)
	assert.Empty(t, stats.TopLikedArticles)
}

func TestUserService(t *testing.T) {
	ctx := context.Background()

	t.Run("create defaults to active", func(t *testing.T) {
		repo := new(mocks.MockUserRepository)
		svc := NewUserService(repo)
		repo.On("FindByPhone", ctx, testPhone).Return(nil, nil)
		repo.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
			return u.IsActive && u.IsAuthor && u.PasswordHash != "password123"
		})).Return(nil)

		u, err := svc.CreateUser(ctx, model.AdminCreateUserRequest{PhoneNumber: testPhone, Password: "password123", IsAuthor: true, FirstName: " Sara "})
		require.NoError(t, err)
		assert.Equal(t, "Sara", *u.Profile.FirstName)
		assert.Equal(t, model.ProfileKindAuthor, u.ProfileKind())
	})

	t.Run("update rejects taken phone", func(t *testing.T) {
		repo := new(mocks.MockUserRepository)
		svc := NewUserService(repo)
		repo.On("FindByID", ctx, 2).Return(&model.User{ID: 2, PhoneNumber: "09120000002"}, nil)
		repo.On("FindByPhone", ctx, testPhone).Return(&model.User{ID: 9}, nil)

		_, err := svc.UpdateUser(ctx, 2, model.AdminUpdateUserRequest{PhoneNumber: strp(testPhone)})
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "phone_number", vErr.Field)
		assert.Equal(t, msgPhoneTaken, vErr.Message)
	})

	t.Run("superuser flag sets staff", func(t *testing.T) {
		repo := new(mocks.MockUserRepository)
		svc := NewUserService(repo)
		repo.On("FindByID", ctx, 2).Return(&model.User{ID: 2, PhoneNumber: "09120000002"}, nil)
		repo.On("Update", ctx, mock.AnythingOfType("*model.User")).Return(nil)
		yes := true

		u, err := svc.UpdateUser(ctx, 2, model.AdminUpdateUserRequest{IsSuperuser: &yes})
		require.NoError(t, err)
		assert.True(t, u.IsStaff)
		assert.Equal(t, "admin", u.Permissions())
	})

	t.Run("password mismatch", func(t *testing.T) {
		svc := NewUserService(new(mocks.MockUserRepository))
		err := svc.ChangePassword(ctx, 2, model.AdminChangePasswordRequest{NewPassword: "a", RepeatPassword: "b"})
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "repeat_password", vErr.Field)
	})

	t.Run("self deactivation needs force", func(t *testing.T) {
		repo := new(mocks.MockUserRepository)
		svc := NewUserService(repo)
		repo.On("FindByID", ctx, 1).Return(&model.User{ID: 1, IsActive: true}, nil)
		repo.On("Update", ctx, mock.MatchedBy(func(u *model.User) bool { return !u.IsActive })).Return(nil)

		pending, err := svc.SetActive(ctx, 1, 1, false, false)
		require.NoError(t, err)
		assert.True(t, pending)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)

		pending, err = svc.SetActive(ctx, 1, 1, false, true)
		require.NoError(t, err)
		assert.False(t, pending)
		repo.AssertNumberOfCalls(t, "Update", 1)
	})
}
