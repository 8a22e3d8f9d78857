package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"
	"time"

	"tam_website/internal/cache"
	"tam_website/internal/model"
	"tam_website/internal/repository"
	"tam_website/internal/scheduler"
	"tam_website/internal/storage"

	"github.com/google/uuid"
)

const (
	msgTitleExists         = "Article with this title already exists"
	msgTranslationRequired = "At least one complete translation (title and body) is required."
	msgVideoURLRequired    = "Video URL is required for video articles."
	msgScheduleInPast      = "Scheduled publish time must be in the future."
	msgTeamNotFound        = "Team not found."
)

// ArticleService covers public reading, author writing, admin management and scheduled publication
type ArticleService interface {
	ListPublished(ctx context.Context, filters model.ArticleFilters) ([]model.Article, int, error)
	GetPublished(ctx context.Context, slug, ip string) (*model.Article, error)
	ToggleLike(ctx context.Context, slug, ip string) (*model.LikeResult, error)

	ListByAuthor(ctx context.Context, authorID int, filters model.ArticleFilters) ([]model.Article, int, error)
	GetOwn(ctx context.Context, authorID int, slug string) (*model.Article, error)
	CreateArticle(ctx context.Context, authorID int, req model.ArticleRequest) (*model.Article, error)
	UpdateOwn(ctx context.Context, authorID int, slug string, req model.ArticleRequest) (*model.Article, error)
	DeleteOwn(ctx context.Context, authorID int, slug string) error
	UploadImage(ctx context.Context, authorID int, slug string, file *multipart.FileHeader) (*model.ArticleImage, error)

	List(ctx context.Context, filters model.ArticleFilters) ([]model.Article, int, error)
	Get(ctx context.Context, id int64) (*model.Article, error)
	Update(ctx context.Context, id int64, req model.ArticleRequest) (*model.Article, error)
	Delete(ctx context.Context, id int64) (*model.Article, error)

	PublishScheduled(ctx context.Context, articleID int64, taskID string) (scheduler.Result, error)
	RestoreSchedules(ctx context.Context) (int, error)
}

type articleService struct {
	articles repository.ArticleRepository
	teams    repository.TeamRepository
	queue    *scheduler.Queue
	views    *cache.ViewDedup
	store    storage.Storage
	logger   *slog.Logger
	now      func() time.Time
}

func NewArticleService(articles repository.ArticleRepository, teams repository.TeamRepository, queue *scheduler.Queue,
	views *cache.ViewDedup, store storage.Storage, logger *slog.Logger) ArticleService {
	if logger == nil {
		logger = slog.Default()
	}
	return &articleService{
		articles: articles,
		teams:    teams,
		queue:    queue,
		views:    views,
		store:    store,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *articleService) ListPublished(ctx context.Context, filters model.ArticleFilters) ([]model.Article, int, error) {
	filters.PublishedOnly = true
	filters.Status = nil
	filters.AuthorID = nil
	return s.articles.List(ctx, filters)
}

func (s *articleService) findPublished(ctx context.Context, slug string) (*model.Article, error) {
	article, err := s.articles.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if article == nil || article.Status != model.ArticleStatusPublished {
		return nil, ErrArticleNotFound
	}
	return article, nil
}

// GetPublished returns a published article and counts a view for ip.
func (s *articleService) GetPublished(ctx context.Context, slug, ip string) (*model.Article, error) {
	article, err := s.findPublished(ctx, slug)
	if err != nil {
		return nil, err
	}
	s.recordHit(ctx, article, ip)
	return article, nil
}

// recordHit never fails the read; Redis filters repeats, the table key is authoritative.
func (s *articleService) recordHit(ctx context.Context, article *model.Article, ip string) {
	if ip == "" {
		return
	}
	first, err := s.views.FirstView(ctx, article.ID, ip)
	if err != nil {
		s.logger.Warn("view dedup failed", slog.Int64("article_id", article.ID), slog.String("error", err.Error()))
		first = true
	}
	if !first {
		return
	}
	created, err := s.articles.RecordHit(ctx, article.ID, ip)
	if err != nil {
		s.logger.Error("failed to record hit", slog.Int64("article_id", article.ID), slog.String("error", err.Error()))
		return
	}
	if created {
		article.HitsCount++
	}
}

func (s *articleService) ToggleLike(ctx context.Context, slug, ip string) (*model.LikeResult, error) {
	article, err := s.findPublished(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.articles.ToggleLike(ctx, article.ID, ip)
}

func (s *articleService) ListByAuthor(ctx context.Context, authorID int, filters model.ArticleFilters) ([]model.Article, int, error) {
	filters.AuthorID = &authorID
	filters.PublishedOnly = false
	return s.articles.List(ctx, filters)
}

func (s *articleService) GetOwn(ctx context.Context, authorID int, slug string) (*model.Article, error) {
	article, err := s.articles.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, ErrArticleNotFound
	}
	if article.AuthorID == nil || *article.AuthorID != authorID {
		return nil, ErrForbidden
	}
	return article, nil
}

func (s *articleService) Get(ctx context.Context, id int64) (*model.Article, error) {
	article, err := s.articles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, ErrArticleNotFound
	}
	return article, nil
}

func (s *articleService) List(ctx context.Context, filters model.ArticleFilters) ([]model.Article, int, error) {
	filters.PublishedOnly = false
	return s.articles.List(ctx, filters)
}

func (s *articleService) CreateArticle(ctx context.Context, authorID int, req model.ArticleRequest) (*model.Article, error) {
	article := &model.Article{
		AuthorID:     &authorID,
		Status:       model.ArticleStatusDraft,
		Type:         model.ArticleTypeText,
		Translations: model.Translations[model.TextTranslation]{},
	}
	return s.save(ctx, article, req, true)
}

func (s *articleService) UpdateOwn(ctx context.Context, authorID int, slug string, req model.ArticleRequest) (*model.Article, error) {
	article, err := s.GetOwn(ctx, authorID, slug)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, article, req, false)
}

func (s *articleService) Update(ctx context.Context, id int64, req model.ArticleRequest) (*model.Article, error) {
	article, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, article, req, false)
}

// scheduleChange is what has to happen to the queue once the article row is saved.
type scheduleChange struct {
	cancelTaskID string
	enqueue      bool
}

func (s *articleService) applyRequest(ctx context.Context, article *model.Article, req model.ArticleRequest) (scheduleChange, error) {
	var change scheduleChange
	oldTitleEn := article.Translations.Exact(model.LangEn).Title

	setText := func(lang string, title, body *string) {
		if title == nil && body == nil {
			return
		}
		t := article.Translations.Exact(lang)
		if title != nil {
			t.Title = strings.TrimSpace(*title)
		}
		if body != nil {
			t.Body = *body
		}
		article.Translations[lang] = t
	}
	if article.Translations == nil {
		article.Translations = model.Translations[model.TextTranslation]{}
	}
	setText(model.LangFa, req.TitleFa, req.BodyFa)
	setText(model.LangEn, req.TitleEn, req.BodyEn)

	complete := false
	for _, lang := range model.Languages {
		t := article.Translations.Exact(lang)
		if t.Title != "" && strings.TrimSpace(t.Body) != "" {
			complete = true
		}
	}
	if !complete {
		return change, newValidationError("translations", msgTranslationRequired)
	}

	for _, lang := range model.Languages {
		title := article.Translations.Exact(lang).Title
		if title == "" {
			continue
		}
		exists, err := s.articles.TitleExists(ctx, lang, title, article.ID)
		if err != nil {
			return change, err
		}
		if exists {
			return change, newValidationError("title_"+lang, msgTitleExists)
		}
	}

	if req.Type != nil {
		article.Type = *req.Type
	}
	if req.VideoURL != nil {
		url := strings.TrimSpace(*req.VideoURL)
		if url == "" {
			article.VideoURL = nil
		} else {
			article.VideoURL = &url
		}
	}
	if article.Type == model.ArticleTypeVideo && article.VideoURL == nil {
		return change, newValidationError("video_url", msgVideoURLRequired)
	}

	switch {
	case req.ClearTeam:
		article.TeamID = nil
		article.Team = nil
	case req.TeamID != nil:
		team, err := s.teams.FindByID(ctx, *req.TeamID)
		if err != nil {
			return change, err
		}
		if team == nil {
			return change, newValidationError("team_id", msgTeamNotFound)
		}
		article.TeamID = &team.ID
		article.Team = team
	}

	wasPublished := article.Status == model.ArticleStatusPublished
	if req.Status != nil {
		article.Status = *req.Status
	}

	if article.ID == 0 || article.Translations.Exact(model.LangEn).Title != oldTitleEn {
		slug, err := uniqueSlug(ctx, article.Translations.Exact(model.LangEn).Title, article.ID, s.articles.SlugExists)
		if err != nil {
			return change, err
		}
		article.Slug = slug
	}

	previousTask := valueOr(article.ScheduledTaskID, "")
	switch {
	case req.ScheduledPublishAt != nil:
		if !req.ScheduledPublishAt.After(s.now()) {
			return change, newValidationError("scheduled_publish_at", msgScheduleInPast)
		}
		runAt := req.ScheduledPublishAt.UTC()
		taskID := uuid.NewString()
		article.Status = model.ArticleStatusDraft
		article.ScheduledPublishAt = &runAt
		article.ScheduledTaskID = &taskID
		change.cancelTaskID = previousTask
		change.enqueue = true
	case req.ClearSchedule || (req.Status != nil && *req.Status == model.ArticleStatusPublished):
		article.ScheduledPublishAt = nil
		article.ScheduledTaskID = nil
		change.cancelTaskID = previousTask
	case wasPublished && article.Status == model.ArticleStatusDraft:
		// withdrawn: keep the publish time for time_ago, drop the task
		article.ScheduledTaskID = nil
		change.cancelTaskID = previousTask
	}
	return change, nil
}

func (s *articleService) save(ctx context.Context, article *model.Article, req model.ArticleRequest, isNew bool) (*model.Article, error) {
	change, err := s.applyRequest(ctx, article, req)
	if err != nil {
		return nil, err
	}

	if isNew {
		err = s.articles.Create(ctx, article)
	} else {
		err = s.articles.Update(ctx, article)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrArticleNotFound
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newValidationError("title_en", msgTitleExists)
		}
		return nil, fmt.Errorf("failed to save article: %w", err)
	}

	s.applySchedule(ctx, article, change)
	return article, nil
}

// applySchedule updates the queue after the row is committed. Failures are logged;
// RestoreSchedules re-enqueues anything the queue lost on the next start.
func (s *articleService) applySchedule(ctx context.Context, article *model.Article, change scheduleChange) {
	if change.cancelTaskID != "" {
		if err := s.queue.Cancel(ctx, article.ID, change.cancelTaskID); err != nil {
			s.logger.Error("failed to cancel scheduled publication",
				slog.Int64("article_id", article.ID), slog.String("task_id", change.cancelTaskID), slog.String("error", err.Error()))
		}
	}
	if change.enqueue && article.ScheduledTaskID != nil && article.ScheduledPublishAt != nil {
		job := scheduler.Job{ArticleID: article.ID, TaskID: *article.ScheduledTaskID, RunAt: *article.ScheduledPublishAt}
		if err := s.queue.Schedule(ctx, job); err != nil {
			s.logger.Error("failed to schedule publication",
				slog.Int64("article_id", article.ID), slog.String("task_id", job.TaskID), slog.String("error", err.Error()))
			return
		}
		s.logger.Info("article publication scheduled",
			slog.Int64("article_id", article.ID), slog.Time("run_at", job.RunAt))
	}
}

func (s *articleService) remove(ctx context.Context, article *model.Article) error {
	if err := s.articles.Delete(ctx, article.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrArticleNotFound
		}
		return err
	}
	s.applySchedule(ctx, article, scheduleChange{cancelTaskID: valueOr(article.ScheduledTaskID, "")})
	for _, img := range article.Images {
		if err := s.store.Delete(ctx, img.ObjectKey); err != nil {
			s.logger.Warn("failed to delete article image", slog.String("key", img.ObjectKey), slog.String("error", err.Error()))
		}
	}
	return nil
}

func (s *articleService) DeleteOwn(ctx context.Context, authorID int, slug string) error {
	article, err := s.GetOwn(ctx, authorID, slug)
	if err != nil {
		return err
	}
	return s.remove(ctx, article)
}

// Delete removes an article and returns it so callers can report its title.
func (s *articleService) Delete(ctx context.Context, id int64) (*model.Article, error) {
	article, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.remove(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

// UploadImage stores the file and attaches it; the object is removed again if the row can't be written.
func (s *articleService) UploadImage(ctx context.Context, authorID int, slug string, file *multipart.FileHeader) (*model.ArticleImage, error) {
	article, err := s.GetOwn(ctx, authorID, slug)
	if err != nil {
		return nil, err
	}

	info, err := uploadImage(ctx, s.store, "articles", file)
	if err != nil {
		return nil, err
	}

	image := &model.ArticleImage{ArticleID: article.ID, ObjectKey: info.Key, URL: info.URL}
	if err := s.articles.AddImage(ctx, image); err != nil {
		if delErr := s.store.Delete(ctx, info.Key); delErr != nil {
			s.logger.Error("failed to roll back uploaded image", slog.String("key", info.Key), slog.String("error", delErr.Error()))
		}
		return nil, err
	}
	return image, nil
}

// PublishScheduled runs a claimed job. Stale jobs, whose task id no longer matches the article, are skipped.
func (s *articleService) PublishScheduled(ctx context.Context, articleID int64, taskID string) (scheduler.Result, error) {
	article, err := s.articles.FindByID(ctx, articleID)
	if err != nil {
		return scheduler.ResultFailed, err
	}
	if article == nil {
		return scheduler.ResultNotFound, nil
	}
	if article.Status != model.ArticleStatusDraft || valueOr(article.ScheduledTaskID, "") != taskID {
		return scheduler.ResultSkipped, nil
	}

	published, err := s.articles.PublishIfDraft(ctx, articleID, taskID)
	if err != nil {
		return scheduler.ResultFailed, err
	}
	if !published {
		return scheduler.ResultSkipped, nil
	}
	return scheduler.ResultPublished, nil
}

// RestoreSchedules enqueues every scheduled draft again. Re-adding a queued job only refreshes its run time.
func (s *articleService) RestoreSchedules(ctx context.Context) (int, error) {
	articles, err := s.articles.ListScheduled(ctx)
	if err != nil {
		return 0, err
	}
	restored := 0
	for _, a := range articles {
		if !a.IsScheduled() {
			continue
		}
		job := scheduler.Job{ArticleID: a.ID, TaskID: *a.ScheduledTaskID, RunAt: *a.ScheduledPublishAt}
		if err := s.queue.Schedule(ctx, job); err != nil {
			return restored, err
		}
		restored++
	}
	return restored, nil
}
