package service

import (
	"context"

	"tam_website/internal/model"
	"tam_website/internal/repository"
)

const topArticlesLimit = 3

type DashboardService interface {
	Stats(ctx context.Context) (*model.DashboardStats, error)
}

type dashboardService struct {
	repo repository.StatsRepository
}

func NewDashboardService(repo repository.StatsRepository) DashboardService {
	return &dashboardService{repo: repo}
}

func (s *dashboardService) Stats(ctx context.Context) (*model.DashboardStats, error) {
	counts, err := s.repo.Counts(ctx)
	if err != nil {
		return nil, err
	}
	viewed, err := s.repo.TopViewed(ctx, topArticlesLimit)
	if err != nil {
		return nil, err
	}
	liked, err := s.repo.TopLiked(ctx, topArticlesLimit)
	if err != nil {
		return nil, err
	}

	stats := &model.DashboardStats{
		Users:             counts.Users,
		Articles:          counts.Articles,
		Teams:             counts.Teams,
		Players:           counts.Players,
		TotalViews:        counts.TotalViews,
		PublishedArticles: counts.PublishedArticles,
		DraftArticles:     counts.DraftArticles,
		TopViewedArticles: make([]model.TopViewedArticle, 0, len(viewed)),
		TopLikedArticles:  make([]model.TopLikedArticle, 0, len(liked)),
	}
	for _, r := range viewed {
		stats.TopViewedArticles = append(stats.TopViewedArticles, model.TopViewedArticle{ID: r.ID, Title: r.Title(), Views: r.Count, Slug: r.Slug})
	}
	for _, r := range liked {
		stats.TopLikedArticles = append(stats.TopLikedArticles, model.TopLikedArticle{ID: r.ID, Title: r.Title(), Likes: r.Count, Slug: r.Slug})
	}
	return stats, nil
}
