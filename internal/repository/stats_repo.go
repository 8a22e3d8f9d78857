package repository

import (
	"context"
	"fmt"

	"tam_website/internal/model"
)

// StatsRepository reads the aggregates shown on the admin dashboard
type StatsRepository interface {
	Counts(ctx context.Context) (*model.DashboardCounts, error)
	TopViewed(ctx context.Context, limit int) ([]model.ArticleRank, error)
	TopLiked(ctx context.Context, limit int) ([]model.ArticleRank, error)
}

type statsRepository struct {
	db DB
}

func NewStatsRepository(db DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Counts(ctx context.Context) (*model.DashboardCounts, error) {
	sql := `SELECT
	    (SELECT COUNT(*) FROM users),
	    (SELECT COUNT(*) FROM articles),
	    (SELECT COUNT(*) FROM teams),
	    (SELECT COUNT(*) FROM players),
	    (SELECT COUNT(*) FROM article_hits),
	    (SELECT COUNT(*) FROM articles WHERE status = $1),
	    (SELECT COUNT(*) FROM articles WHERE status = $2)`

	c := &model.DashboardCounts{}
	err := r.db.QueryRow(ctx, sql, model.ArticleStatusPublished, model.ArticleStatusDraft).Scan(
		&c.Users, &c.Articles, &c.Teams, &c.Players, &c.TotalViews, &c.PublishedArticles, &c.DraftArticles,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read dashboard counts: %w", err)
	}
	return c, nil
}

// rankBy joins the hits or likes table, so articles with no rows are left out.
func (r *statsRepository) rankBy(ctx context.Context, table string, limit int) ([]model.ArticleRank, error) {
	sql := fmt.Sprintf(`SELECT a.id, a.slug, COALESCE(fa.title, ''), COALESCE(en.title, ''), COUNT(x.ip) AS total
	    FROM articles a
	    JOIN %s x ON x.article_id = a.id
	    LEFT JOIN article_translations fa ON fa.article_id = a.id AND fa.language_code = $1
	    LEFT JOIN article_translations en ON en.article_id = a.id AND en.language_code = $2
	    GROUP BY a.id, a.slug, fa.title, en.title
	    ORDER BY total DESC, a.id ASC
	    LIMIT $3`, table)

	rows, err := r.db.Query(ctx, sql, model.LangFa, model.LangEn, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top articles: %w", err)
	}
	defer rows.Close()

	ranks := []model.ArticleRank{}
	for rows.Next() {
		var rank model.ArticleRank
		if err := rows.Scan(&rank.ID, &rank.Slug, &rank.TitleFa, &rank.TitleEn, &rank.Count); err != nil {
			return nil, fmt.Errorf("failed to scan top article row: %w", err)
		}
		ranks = append(ranks, rank)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top article rows: %w", err)
	}
	return ranks, nil
}

func (r *statsRepository) TopViewed(ctx context.Context, limit int) ([]model.ArticleRank, error) {
	return r.rankBy(ctx, "article_hits", limit)
}

func (r *statsRepository) TopLiked(ctx context.Context, limit int) ([]model.ArticleRank, error) {
	return r.rankBy(ctx, "article_likes", limit)
}
