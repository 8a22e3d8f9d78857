package repository

import (
	"context"
	"errors"
	"fmt"

	"tam_website/internal/model"

	"github.com/jackc/pgx/v5"
)

// ArticleRepository defines operations for articles and their hits, likes and images
type ArticleRepository interface {
	Create(ctx context.Context, article *model.Article) error
	Update(ctx context.Context, article *model.Article) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*model.Article, error)
	FindBySlug(ctx context.Context, slug string) (*model.Article, error)
	List(ctx context.Context, filters model.ArticleFilters) ([]model.Article, int, error)
	ListScheduled(ctx context.Context) ([]model.Article, error)
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
	TitleExists(ctx context.Context, lang, title string, excludeID int64) (bool, error)
	PublishIfDraft(ctx context.Context, id int64, taskID string) (bool, error)
	AddImage(ctx context.Context, image *model.ArticleImage) error
	RecordHit(ctx context.Context, articleID int64, ip string) (bool, error)
	ToggleLike(ctx context.Context, articleID int64, ip string) (*model.LikeResult, error)
}

type articleRepository struct {
	db DB
}

func NewArticleRepository(db DB) ArticleRepository {
	return &articleRepository{db: db}
}

const articleSelect = `SELECT a.id, a.author_id, a.team_id, a.slug, a.status, a.type, a.video_url,
	a.scheduled_publish_at, a.scheduled_task_id, a.created_at, a.updated_at,
	p.id, p.kind, p.first_name, p.last_name,
	t.slug, t.image_url,
	(SELECT COUNT(*) FROM article_hits h WHERE h.article_id = a.id),
	(SELECT COUNT(*) FROM article_likes l WHERE l.article_id = a.id)
	FROM articles a
	LEFT JOIN profiles p ON p.user_id = a.author_id
	LEFT JOIN teams t ON t.id = a.team_id`

func scanArticle(row pgx.Row) (*model.Article, error) {
	a := &model.Article{Translations: model.Translations[model.TextTranslation]{}}
	var profileID *int
	var kind, firstName, lastName *string
	var teamSlug, teamImage *string
	err := row.Scan(
		&a.ID, &a.AuthorID, &a.TeamID, &a.Slug, &a.Status, &a.Type, &a.VideoURL,
		&a.ScheduledPublishAt, &a.ScheduledTaskID, &a.CreatedAt, &a.UpdatedAt,
		&profileID, &kind, &firstName, &lastName,
		&teamSlug, &teamImage,
		&a.HitsCount, &a.LikesCount,
	)
	if err != nil {
		return nil, err
	}
	if profileID != nil {
		a.Author = &model.Profile{ID: *profileID, FirstName: firstName, LastName: lastName}
		if a.AuthorID != nil {
			a.Author.UserID = *a.AuthorID
		}
		if kind != nil {
			a.Author.Kind = *kind
		}
	}
	if a.TeamID != nil && teamSlug != nil {
		a.Team = &model.Team{ID: *a.TeamID, Slug: *teamSlug, ImageURL: teamImage, Translations: model.Translations[model.NameTranslation]{}}
	}
	return a, nil
}

func (r *articleRepository) saveTranslations(ctx context.Context, tx pgx.Tx, a *model.Article) error {
	for _, lang := range model.Languages {
		t := a.Translations.Exact(lang)
		if err := articleTranslations.save(ctx, tx, a.ID, lang, t.IsEmpty(), t.Title, t.Body); err != nil {
			return err
		}
	}
	return nil
}

// hydrate loads translations and team names for the given articles.
func (r *articleRepository) hydrate(ctx context.Context, articles []*model.Article) error {
	if len(articles) == 0 {
		return nil
	}
	byID := make(map[int64]*model.Article, len(articles))
	ids := make([]int64, 0, len(articles))
	var teamIDs []int64
	for _, a := range articles {
		byID[a.ID] = a
		ids = append(ids, a.ID)
		if a.Team != nil {
			teamIDs = append(teamIDs, a.Team.ID)
		}
	}

	err := articleTranslations.load(ctx, r.db, ids, func(rows pgx.Rows) error {
		var id int64
		var lang string
		var t model.TextTranslation
		if err := rows.Scan(&id, &lang, &t.Title, &t.Body); err != nil {
			return err
		}
		if a, ok := byID[id]; ok {
			a.Translations[lang] = t
		}
		return nil
	})
	if err != nil {
		return err
	}

	names, err := loadNameTranslations(ctx, r.db, teamTranslations, teamIDs)
	if err != nil {
		return err
	}
	for _, a := range articles {
		if a.Team != nil {
			if tr, ok := names[a.Team.ID]; ok {
				a.Team.Translations = tr
			}
		}
	}
	return nil
}

func (r *articleRepository) loadImages(ctx context.Context, a *model.Article) error {
	rows, err := r.db.Query(ctx, `SELECT id, article_id, object_key, url, created_at FROM article_images
	                              WHERE article_id = $1 ORDER BY id`, a.ID)
	if err != nil {
		return fmt.Errorf("failed to query article images: %w", err)
	}
	defer rows.Close()

	a.Images = []model.ArticleImage{}
	for rows.Next() {
		var img model.ArticleImage
		if err := rows.Scan(&img.ID, &img.ArticleID, &img.ObjectKey, &img.URL, &img.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan article image row: %w", err)
		}
		a.Images = append(a.Images, img)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating article image rows: %w", err)
	}
	return nil
}

func (r *articleRepository) Create(ctx context.Context, article *model.Article) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		sql := `INSERT INTO articles (author_id, team_id, slug, status, type, video_url, scheduled_publish_at, scheduled_task_id)
	            VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at, updated_at`
		err := tx.QueryRow(ctx, sql, article.AuthorID, article.TeamID, article.Slug, article.Status, article.Type,
			article.VideoURL, article.ScheduledPublishAt, article.ScheduledTaskID).
			Scan(&article.ID, &article.CreatedAt, &article.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("failed to create article: %w", ErrDuplicate)
			}
			return fmt.Errorf("failed to create article: %w", err)
		}
		return r.saveTranslations(ctx, tx, article)
	})
}

func (r *articleRepository) Update(ctx context.Context, article *model.Article) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		sql := `UPDATE articles SET team_id = $1, slug = $2, status = $3, type = $4, video_url = $5,
	            scheduled_publish_at = $6, scheduled_task_id = $7
	            WHERE id = $8 RETURNING updated_at`
		err := tx.QueryRow(ctx, sql, article.TeamID, article.Slug, article.Status, article.Type, article.VideoURL,
			article.ScheduledPublishAt, article.ScheduledTaskID, article.ID).Scan(&article.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			if isUniqueViolation(err) {
				return fmt.Errorf("failed to update article: %w", ErrDuplicate)
			}
			return fmt.Errorf("failed to update article: %w", err)
		}
		return r.saveTranslations(ctx, tx, article)
	})
}

func (r *articleRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "articles", id)
}

func (r *articleRepository) findOne(ctx context.Context, where string, arg any) (*model.Article, error) {
	article, err := scanArticle(r.db.QueryRow(ctx, articleSelect+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find article: %w", err)
	}
	if err := r.hydrate(ctx, []*model.Article{article}); err != nil {
		return nil, err
	}
	if err := r.loadImages(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

func (r *articleRepository) FindByID(ctx context.Context, id int64) (*model.Article, error) {
	return r.findOne(ctx, ` WHERE a.id = $1`, id)
}

func (r *articleRepository) FindBySlug(ctx context.Context, slug string) (*model.Article, error) {
	return r.findOne(ctx, ` WHERE a.slug = $1`, slug)
}

func articleFilterBuilder(filters model.ArticleFilters) *filterBuilder {
	b := &filterBuilder{}
	if filters.PublishedOnly {
		b.add("a.status = $%d", model.ArticleStatusPublished)
	}
	if filters.Status != nil {
		switch *filters.Status {
		case model.ArticleStatusScheduled:
			b.add("a.status = $%d AND a.scheduled_publish_at IS NOT NULL AND a.scheduled_task_id IS NOT NULL", model.ArticleStatusDraft)
		case model.ArticleStatusDraft, model.ArticleStatusPublished:
			b.add("a.status = $%d", *filters.Status)
		}
	}
	if filters.Type != nil && *filters.Type != "" {
		b.add("a.type = $%d", *filters.Type)
	}
	if filters.TeamID != nil {
		b.add("a.team_id = $%d", *filters.TeamID)
	}
	if filters.AuthorID != nil {
		b.add("a.author_id = $%d", *filters.AuthorID)
	}
	if filters.Search != nil && *filters.Search != "" {
		lang := filters.Lang
		if lang == "" {
			lang = model.DefaultLanguage
		}
		b.add(articleTranslations.searchCondition("a", "title"), lang, likePattern(*filters.Search))
	}
	return b
}

func (r *articleRepository) collect(ctx context.Context, sql string, args ...any) ([]model.Article, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	var ptrs []*model.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		ptrs = append(ptrs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}
	rows.Close()

	if err := r.hydrate(ctx, ptrs); err != nil {
		return nil, err
	}
	articles := make([]model.Article, len(ptrs))
	for i, a := range ptrs {
		articles[i] = *a
	}
	return articles, nil
}

// List returns one page of articles, newest first, and the total count
func (r *articleRepository) List(ctx context.Context, filters model.ArticleFilters) ([]model.Article, int, error) {
	b := articleFilterBuilder(filters)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM articles a`+b.where(), b.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count articles: %w", err)
	}

	limit, args := b.limitOffset(filters.Page.Limit(), filters.Page.Offset())
	articles, err := r.collect(ctx, articleSelect+b.where()+` ORDER BY a.created_at DESC, a.id DESC`+limit, args...)
	if err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

// ListScheduled returns drafts that still carry a publish time and task id.
func (r *articleRepository) ListScheduled(ctx context.Context) ([]model.Article, error) {
	return r.collect(ctx, articleSelect+` WHERE a.status = $1 AND a.scheduled_publish_at IS NOT NULL
	    AND a.scheduled_task_id IS NOT NULL ORDER BY a.scheduled_publish_at`, model.ArticleStatusDraft)
}

func (r *articleRepository) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	return slugExists(ctx, r.db, "articles", slug, excludeID)
}

func (r *articleRepository) TitleExists(ctx context.Context, lang, title string, excludeID int64) (bool, error) {
	return articleTranslations.exists(ctx, r.db, "title", lang, title, excludeID)
}

// PublishIfDraft publishes a draft still owned by taskID and reports whether a row changed.
// The task id is cleared so a later revert to draft is not scheduled; scheduled_publish_at stays.
func (r *articleRepository) PublishIfDraft(ctx context.Context, id int64, taskID string) (bool, error) {
	cmdTag, err := r.db.Exec(ctx, `UPDATE articles SET status = $1, scheduled_task_id = NULL
	    WHERE id = $2 AND status = $3 AND scheduled_task_id = $4`,
		model.ArticleStatusPublished, id, model.ArticleStatusDraft, taskID)
	if err != nil {
		return false, fmt.Errorf("failed to publish article: %w", err)
	}
	return cmdTag.RowsAffected() == 1, nil
}

func (r *articleRepository) AddImage(ctx context.Context, image *model.ArticleImage) error {
	sql := `INSERT INTO article_images (article_id, object_key, url) VALUES ($1, $2, $3) RETURNING id, created_at`
	if err := r.db.QueryRow(ctx, sql, image.ArticleID, image.ObjectKey, image.URL).Scan(&image.ID, &image.CreatedAt); err != nil {
		return fmt.Errorf("failed to add article image: %w", err)
	}
	return nil
}

// RecordHit stores one view per (article, ip) and reports whether it was new.
func (r *articleRepository) RecordHit(ctx context.Context, articleID int64, ip string) (bool, error) {
	cmdTag, err := r.db.Exec(ctx, `INSERT INTO article_hits (article_id, ip) VALUES ($1, $2) ON CONFLICT DO NOTHING`, articleID, ip)
	if err != nil {
		return false, fmt.Errorf("failed to record hit: %w", err)
	}
	return cmdTag.RowsAffected() == 1, nil
}

// ToggleLike removes the like of ip if present, otherwise adds it.
func (r *articleRepository) ToggleLike(ctx context.Context, articleID int64, ip string) (*model.LikeResult, error) {
	result := &model.LikeResult{}
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx, `DELETE FROM article_likes WHERE article_id = $1 AND ip = $2`, articleID, ip)
		if err != nil {
			return fmt.Errorf("failed to remove like: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			if _, err := tx.Exec(ctx, `INSERT INTO article_likes (article_id, ip) VALUES ($1, $2) ON CONFLICT DO NOTHING`, articleID, ip); err != nil {
				return fmt.Errorf("failed to add like: %w", err)
			}
			result.Liked = true
		}
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM article_likes WHERE article_id = $1`, articleID).Scan(&result.LikesCount); err != nil {
			return fmt.Errorf("failed to count likes: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
