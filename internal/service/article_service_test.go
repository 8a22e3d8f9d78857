package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tam_website/internal/cache"
	"tam_website/internal/model"
	"tam_website/internal/repository/mocks"
	"tam_website/internal/scheduler"
	"tam_website/internal/storage"
	storeMocks "tam_website/internal/storage/mocks"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type articleFixture struct {
	svc      *articleService
	articles *mocks.MockArticleRepository
	teams    *mocks.MockTeamRepository
	store    *storeMocks.MockStorage
	queue    *scheduler.Queue
	now      time.Time
}

func newArticleFixture(t *testing.T) *articleFixture {
	t.Helper()
	rdb := newRedisClient(t)
	f := &articleFixture{
		articles: new(mocks.MockArticleRepository),
		teams:    new(mocks.MockTeamRepository),
		store:    new(storeMocks.MockStorage),
		queue:    scheduler.NewQueue(rdb, "test:publish"),
		now:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	svc := NewArticleService(f.articles, f.teams, f.queue, cache.NewViewDedup(rdb, time.Hour), f.store, nil).(*articleService)
	svc.now = func() time.Time { return f.now }
	f.svc = svc
	return f
}

func strp(s string) *string { return &s }

func newFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["image"][0]
}

func publishedArticle() *model.Article {
	author := 5
	return &model.Article{
		ID:       1,
		AuthorID: &author,
		Slug:     "big-win",
		Status:   model.ArticleStatusPublished,
		Type:     model.ArticleTypeText,
		Translations: model.Translations[model.TextTranslation]{
			model.LangEn: {Title: "Big win", Body: "Body text"},
		},
	}
}

func TestArticleService_CreateArticle(t *testing.T) {
	ctx := context.Background()

	t.Run("slug collision gets a suffix", func(t *testing.T) {
		f := newArticleFixture(t)
		f.articles.On("TitleExists", ctx, model.LangEn, "Big Win", int64(0)).Return(false, nil)
		f.articles.On("SlugExists", ctx, "big-win", int64(0)).Return(true, nil)
		f.articles.On("SlugExists", ctx, "big-win-2", int64(0)).Return(false, nil)
		f.articles.On("Create", ctx, mock.AnythingOfType("*model.Article")).Return(nil)

		a, err := f.svc.CreateArticle(ctx, 5, model.ArticleRequest{TitleEn: strp("Big Win"), BodyEn: strp("Text")})
		require.NoError(t, err)
		assert.Equal(t, "big-win-2", a.Slug)
		assert.Equal(t, model.ArticleStatusDraft, a.Status)
		assert.Equal(t, 5, *a.AuthorID)
	})

	t.Run("needs a complete translation", func(t *testing.T) {
		f := newArticleFixture(t)
		_, err := f.svc.CreateArticle(ctx, 5, model.ArticleRequest{TitleFa: strp("عنوان")})
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "translations", vErr.Field)
	})

	t.Run("duplicate title", func(t *testing.T) {
		f := newArticleFixture(t)
		f.articles.On("TitleExists", ctx, model.LangFa, "عنوان", int64(0)).Return(true, nil)

		_, err := f.svc.CreateArticle(ctx, 5, model.ArticleRequest{TitleFa: strp("عنوان"), BodyFa: strp("متن")})
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "title_fa", vErr.Field)
		assert.Equal(t, msgTitleExists, vErr.Message)
	})

	t.Run("video needs url", func(t *testing.T) {
		f := newArticleFixture(t)
		f.articles.On("TitleExists", ctx, model.LangEn, "Clip", int64(0)).Return(false, nil)

		_, err := f.svc.CreateArticle(ctx, 5, model.ArticleRequest{TitleEn: strp("Clip"), BodyEn: strp("x"), Type: strp(model.ArticleTypeVideo)})
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "video_url", vErr.Field)
	})

	t.Run("unknown team", func(t *testing.T) {
		f := newArticleFixture(t)
		teamID := int64(9)
		f.articles.On("TitleExists", ctx, model.LangEn, "Match", int64(0)).Return(false, nil)
		f.teams.On("FindByID", ctx, teamID).Return(nil, nil)

		_, err := f.svc.CreateArticle(ctx, 5, model.ArticleRequest{TitleEn: strp("Match"), BodyEn: strp("x"), TeamID: &teamID})
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "team_id", vErr.Field)
	})

	t.Run("schedule in the past", func(t *testing.T) {
		f := newArticleFixture(t)
		f.articles.On("TitleExists", ctx, model.LangEn, "Later", int64(0)).Return(false, nil)
		f.articles.On("SlugExists", ctx, "later", int64(0)).Return(false, nil)
		past := f.now.Add(-time.Minute)

		_, err := f.svc.CreateArticle(ctx, 5, model.ArticleRequest{TitleEn: strp("Later"), BodyEn: strp("x"), ScheduledPublishAt: &past})
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "scheduled_publish_at", vErr.Field)
	})

	t.Run("scheduled article is queued as draft", func(t *testing.T) {
		f := newArticleFixture(t)
		f.articles.On("TitleExists", ctx, model.LangEn, "Later", int64(0)).Return(false, nil)
		f.articles.On("SlugExists", ctx, "later", int64(0)).Return(false, nil)
		f.articles.On("Create", ctx, mock.AnythingOfType("*model.Article")).Run(func(args mock.Arguments) {
			args.Get(1).(*model.Article).ID = 42
		}).Return(nil)
		runAt := f.now.Add(time.Hour)

		a, err := f.svc.CreateArticle(ctx, 5, model.ArticleRequest{
			TitleEn:            strp("Later"),
			BodyEn:             strp("x"),
			Status:             strp(model.ArticleStatusPublished),
			ScheduledPublishAt: &runAt,
		})
		require.NoError(t, err)
		assert.Equal(t, model.ArticleStatusDraft, a.Status)
		require.NotNil(t, a.ScheduledTaskID)

		jobs, err := f.queue.Due(ctx, runAt, 10)
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, int64(42), jobs[0].ArticleID)
		assert.Equal(t, *a.ScheduledTaskID, jobs[0].TaskID)
	})
}

func TestArticleService_UpdateSchedule(t *testing.T) {
	ctx := context.Background()

	scheduled := func(f *articleFixture) *model.Article {
		runAt := f.now.Add(time.Hour)
		a := publishedArticle()
		a.Status = model.ArticleStatusDraft
		a.ScheduledPublishAt = &runAt
		a.ScheduledTaskID = strp("old-task")
		require.NoError(t, f.queue.Schedule(ctx, scheduler.Job{ArticleID: a.ID, TaskID: "old-task", RunAt: runAt}))
		return a
	}

	t.Run("reschedule replaces the queued task", func(t *testing.T) {
		f := newArticleFixture(t)
		a := scheduled(f)
		f.articles.On("FindByID", ctx, int64(1)).Return(a, nil)
		f.articles.On("TitleExists", ctx, model.LangEn, "Big win", int64(1)).Return(false, nil)
		f.articles.On("Update", ctx, a).Return(nil)
		newRunAt := f.now.Add(2 * time.Hour)

		got, err := f.svc.Update(ctx, 1, model.ArticleRequest{ScheduledPublishAt: &newRunAt})
		require.NoError(t, err)
		assert.NotEqual(t, "old-task", *got.ScheduledTaskID)

		jobs, err := f.queue.Due(ctx, newRunAt, 10)
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, *got.ScheduledTaskID, jobs[0].TaskID)
	})

	t.Run("publishing clears the schedule", func(t *testing.T) {
		f := newArticleFixture(t)
		a := scheduled(f)
		f.articles.On("FindByID", ctx, int64(1)).Return(a, nil)
		f.articles.On("TitleExists", ctx, model.LangEn, "Big win", int64(1)).Return(false, nil)
		f.articles.On("Update", ctx, a).Return(nil)

		got, err := f.svc.Update(ctx, 1, model.ArticleRequest{Status: strp(model.ArticleStatusPublished)})
		require.NoError(t, err)
		assert.Equal(t, model.ArticleStatusPublished, got.Status)
		assert.Nil(t, got.ScheduledPublishAt)
		assert.Nil(t, got.ScheduledTaskID)

		n, err := f.queue.Len(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("title change regenerates slug", func(t *testing.T) {
		f := newArticleFixture(t)
		a := publishedArticle()
		f.articles.On("FindByID", ctx, int64(1)).Return(a, nil)
		f.articles.On("TitleExists", ctx, model.LangEn, "Huge Win", int64(1)).Return(false, nil)
		f.articles.On("SlugExists", ctx, "huge-win", int64(1)).Return(false, nil)
		f.articles.On("Update", ctx, a).Return(nil)

		got, err := f.svc.Update(ctx, 1, model.ArticleRequest{TitleEn: strp("Huge Win")})
		require.NoError(t, err)
		assert.Equal(t, "huge-win", got.Slug)
	})
}

func TestArticleService_OwnArticles(t *testing.T) {
	ctx := context.Background()
	f := newArticleFixture(t)
	f.articles.On("FindBySlug", ctx, "big-win").Return(publishedArticle(), nil)
	f.articles.On("FindBySlug", ctx, "missing").Return(nil, nil)

	_, err := f.svc.UpdateOwn(ctx, 6, "big-win", model.ArticleRequest{})
	assert.ErrorIs(t, err, ErrForbidden)

	err = f.svc.DeleteOwn(ctx, 6, "big-win")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.GetOwn(ctx, 5, "missing")
	assert.ErrorIs(t, err, ErrArticleNotFound)

	a, err := f.svc.GetOwn(ctx, 5, "big-win")
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.ID)
}

func TestArticleService_GetPublished(t *testing.T) {
	ctx := context.Background()

	t.Run("counts one hit per ip", func(t *testing.T) {
		f := newArticleFixture(t)
		f.articles.On("FindBySlug", ctx, "big-win").Return(publishedArticle(), nil)
		f.articles.On("RecordHit", ctx, int64(1), "10.0.0.1").Return(true, nil).Once()

		a, err := f.svc.GetPublished(ctx, "big-win", "10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, 1, a.HitsCount)

		a, err = f.svc.GetPublished(ctx, "big-win", "10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, 1, a.HitsCount, "repeat view is not counted")
		f.articles.AssertNumberOfCalls(t, "RecordHit", 1)
	})

	t.Run("draft is hidden", func(t *testing.T) {
		f := newArticleFixture(t)
		draft := publishedArticle()
		draft.Status = model.ArticleStatusDraft
		f.articles.On("FindBySlug", ctx, "big-win").Return(draft, nil)

		_, err := f.svc.GetPublished(ctx, "big-win", "10.0.0.1")
		assert.ErrorIs(t, err, ErrArticleNotFound)
		_, err = f.svc.ToggleLike(ctx, "big-win", "10.0.0.1")
		assert.ErrorIs(t, err, ErrArticleNotFound)
	})

	t.Run("like toggles", func(t *testing.T) {
		f := newArticleFixture(t)
		f.articles.On("FindBySlug", ctx, "big-win").Return(publishedArticle(), nil)
		f.articles.On("ToggleLike", ctx, int64(1), "10.0.0.1").Return(&model.LikeResult{Liked: true, LikesCount: 1}, nil)

		res, err := f.svc.ToggleLike(ctx, "big-win", "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Liked)
	})
}

func TestArticleService_PublishScheduled(t *testing.T) {
	ctx := context.Background()

	draft := func() *model.Article {
		a := publishedArticle()
		a.Status = model.ArticleStatusDraft
		a.ScheduledTaskID = strp("task-1")
		return a
	}

	tests := []struct {
		name    string
		setup   func(m *mocks.MockArticleRepository)
		taskID  string
		want    scheduler.Result
		wantErr bool
	}{
		{
			name: "publishes matching draft",
			setup: func(m *mocks.MockArticleRepository) {
				m.On("FindByID", ctx, int64(1)).Return(draft(), nil)
				m.On("PublishIfDraft", ctx, int64(1), "task-1").Return(true, nil)
			},
			taskID: "task-1",
			want:   scheduler.ResultPublished,
		},
		{
			name: "stale task",
			setup: func(m *mocks.MockArticleRepository) {
				m.On("FindByID", ctx, int64(1)).Return(draft(), nil)
			},
			taskID: "task-0",
			want:   scheduler.ResultSkipped,
		},
		{
			name: "already published",
			setup: func(m *mocks.MockArticleRepository) {
				m.On("FindByID", ctx, int64(1)).Return(publishedArticle(), nil)
			},
			taskID: "task-1",
			want:   scheduler.ResultSkipped,
		},
		{
			name: "deleted article",
			setup: func(m *mocks.MockArticleRepository) {
				m.On("FindByID", ctx, int64(1)).Return(nil, nil)
			},
			taskID: "task-1",
			want:   scheduler.ResultNotFound,
		},
		{
			name: "database error",
			setup: func(m *mocks.MockArticleRepository) {
				m.On("FindByID", ctx, int64(1)).Return(nil, errors.New("db down"))
			},
			taskID:  "task-1",
			want:    scheduler.ResultFailed,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newArticleFixture(t)
			tt.setup(f.articles)

			got, err := f.svc.PublishScheduled(ctx, 1, tt.taskID)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
			f.articles.AssertExpectations(t)
		})
	}
}

func TestArticleService_RestoreSchedules(t *testing.T) {
	ctx := context.Background()
	f := newArticleFixture(t)
	runAt := f.now.Add(time.Hour)
	f.articles.On("ListScheduled", ctx).Return([]model.Article{
		{ID: 1, Status: model.ArticleStatusDraft, ScheduledPublishAt: &runAt, ScheduledTaskID: strp("a")},
		{ID: 2, Status: model.ArticleStatusDraft, ScheduledPublishAt: &runAt, ScheduledTaskID: strp("b")},
	}, nil)

	n, err := f.svc.RestoreSchedules(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// restoring twice must not duplicate jobs
	_, err = f.svc.RestoreSchedules(ctx)
	require.NoError(t, err)
	size, err := f.queue.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), size)
}

func TestArticleService_UploadImage(t *testing.T) {
	ctx := context.Background()
	putResult := func(_ context.Context, key string, _ io.Reader, _ storage.PutObjectOptions) storage.ObjectInfo {
		return storage.ObjectInfo{Key: key, URL: "http://storage.test/" + key}
	}
	isArticleKey := mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "articles/") && strings.HasSuffix(key, ".png")
	})

	t.Run("stores and attaches", func(t *testing.T) {
		f := newArticleFixture(t)
		f.articles.On("FindBySlug", ctx, "big-win").Return(publishedArticle(), nil)
		f.store.On("Put", ctx, isArticleKey, mock.Anything, storage.PutObjectOptions{Size: 4, ContentType: "image/png"}).Return(putResult, nil)
		f.articles.On("AddImage", ctx, mock.AnythingOfType("*model.ArticleImage")).Return(nil)

		img, err := f.svc.UploadImage(ctx, 5, "big-win", newFileHeader(t, "photo.PNG", []byte("data")))
		require.NoError(t, err)
		assert.Equal(t, int64(1), img.ArticleID)
		assert.True(t, strings.HasPrefix(img.URL, "http://storage.test/articles/"))
	})

	t.Run("rolls back object when the row fails", func(t *testing.T) {
		f := newArticleFixture(t)
		f.articles.On("FindBySlug", ctx, "big-win").Return(publishedArticle(), nil)
		f.store.On("Put", ctx, isArticleKey, mock.Anything, mock.Anything).Return(putResult, nil)
		f.store.On("Delete", ctx, isArticleKey).Return(nil)
		f.articles.On("AddImage", ctx, mock.Anything).Return(errors.New("insert failed"))

		_, err := f.svc.UploadImage(ctx, 5, "big-win", newFileHeader(t, "photo.png", []byte("data")))
		require.Error(t, err)
		f.store.AssertNumberOfCalls(t, "Delete", 1)
	})

	t.Run("rejects other formats", func(t *testing.T) {
		f := newArticleFixture(t)
		f.articles.On("FindBySlug", ctx, "big-win").Return(publishedArticle(), nil)

		_, err := f.svc.UploadImage(ctx, 5, "big-win", newFileHeader(t, "doc.pdf", []byte("data")))
		assert.ErrorIs(t, err, ErrInvalidFileFormat)
		f.store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestArticleService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newArticleFixture(t)
	runAt := f.now.Add(time.Hour)
	a := publishedArticle()
	a.Status = model.ArticleStatusDraft
	a.ScheduledPublishAt = &runAt
	a.ScheduledTaskID = strp("task-1")
	a.Images = []model.ArticleImage{{ObjectKey: "articles/one.png"}}
	require.NoError(t, f.queue.Schedule(ctx, scheduler.Job{ArticleID: 1, TaskID: "task-1", RunAt: runAt}))

	f.articles.On("FindByID", ctx, int64(1)).Return(a, nil)
	f.articles.On("Delete", ctx, int64(1)).Return(nil)
	f.store.On("Delete", ctx, "articles/one.png").Return(nil)

	got, err := f.svc.Delete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Big win", got.Title(model.LangFa))

	n, err := f.queue.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	f.store.AssertExpectations(t)
}

func TestArticleService_WithdrawnArticleStaysDraft(t *testing.T) {
	ctx := context.Background()
	f := newArticleFixture(t)

	// published by an earlier scheduled run, task id still on the row
	publishedAt := f.now.Add(-time.Hour)
	a := publishedArticle()
	a.ScheduledPublishAt = &publishedAt
	a.ScheduledTaskID = strp("task-1")
	require.NoError(t, f.queue.Schedule(ctx, scheduler.Job{ArticleID: 1, TaskID: "task-1", RunAt: publishedAt}))

	f.articles.On("FindBySlug", ctx, "big-win").Return(a, nil)
	f.articles.On("TitleExists", ctx, model.LangEn, "Big win", int64(1)).Return(false, nil)
	f.articles.On("Update", ctx, a).Return(nil)

	got, err := f.svc.UpdateOwn(ctx, 5, "big-win", model.ArticleRequest{Status: strp(model.ArticleStatusDraft)})
	require.NoError(t, err)
	assert.Equal(t, model.ArticleStatusDraft, got.Status)
	assert.Nil(t, got.ScheduledTaskID)
	require.NotNil(t, got.ScheduledPublishAt)
	assert.Equal(t, publishedAt, *got.ScheduledPublishAt)
	assert.False(t, got.IsScheduled())

	size, err := f.queue.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, size, "revert cancels the old job")

	// restart: the withdrawn draft is not queued again
	f.articles.On("ListScheduled", ctx).Return([]model.Article{*got}, nil)
	restored, err := f.svc.RestoreSchedules(ctx)
	require.NoError(t, err)
	assert.Zero(t, restored)

	// a job that survived anyway is skipped
	require.NoError(t, f.queue.Schedule(ctx, scheduler.Job{ArticleID: 1, TaskID: "task-1", RunAt: publishedAt}))
	f.articles.On("FindByID", mock.Anything, int64(1)).Return(got, nil)
	counter := scheduler.NewPublishCounter()
	worker := scheduler.NewWorker(f.queue, f.svc, nil, time.Second, counter)

	assert.Equal(t, 1, worker.RunOnce(ctx, f.now))
	assert.Equal(t, 1.0, testutil.ToFloat64(counter.WithLabelValues(string(scheduler.ResultSkipped))))
	assert.Zero(t, testutil.ToFloat64(counter.WithLabelValues(string(scheduler.ResultPublished))))
	f.articles.AssertNotCalled(t, "PublishIfDraft", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, model.ArticleStatusDraft, got.Status)
}
