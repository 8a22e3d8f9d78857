package handler

import (
	"time"

	"tam_website/internal/model"
	"tam_website/internal/utils"
)

const summaryWords = 10

func articleListItem(a *model.Article, lang string, now time.Time, withStatus bool) model.ArticleListItem {
	item := model.ArticleListItem{
		ID:         a.ID,
		Title:      a.Title(lang),
		Body:       utils.TruncateWords(a.Body(lang), summaryWords),
		AuthorName: a.AuthorName(),
		Slug:       a.Slug,
		ViewCount:  a.HitsCount,
		LikeCount:  a.LikesCount,
		TimeAgo:    utils.TimeAgo(a.TimeReference(), now, lang),
	}
	if withStatus {
		status := a.Status
		item.Status = &status
	}
	return item
}

func articleView(a *model.Article, lang string, now time.Time, withStatus bool) model.ArticleView {
	view := model.ArticleView{
		ID:         a.ID,
		Title:      a.Title(lang),
		Body:       a.Body(lang),
		AuthorName: a.AuthorName(),
		Slug:       a.Slug,
		Type:       a.Type,
		VideoURL:   a.VideoURL,
		Images:     a.Images,
		ViewCount:  a.HitsCount,
		LikeCount:  a.LikesCount,
		TimeAgo:    utils.TimeAgo(a.TimeReference(), now, lang),
	}
	if view.Images == nil {
		view.Images = []model.ArticleImage{}
	}
	if a.Team != nil {
		team := a.Team.ListItem(lang)
		view.Team = &team
	}
	if withStatus {
		status := a.Status
		view.Status = &status
	}
	return view
}

func adminArticleItem(a *model.Article, lang string) model.AdminArticleItem {
	item := model.AdminArticleItem{
		ID:         a.ID,
		Title:      a.Title(lang),
		Status:     a.Status,
		Type:       a.Type,
		HitsCount:  a.HitsCount,
		LikesCount: a.LikesCount,
		UpdatedAt:  a.UpdatedAt,
		CreatedAt:  a.CreatedAt,
	}
	if a.Team != nil {
		name := a.Team.Name(lang)
		item.Team = &name
	}
	return item
}

func adminArticleDetail(a *model.Article) model.AdminArticleDetail {
	fa := a.Translations.Exact(model.LangFa)
	en := a.Translations.Exact(model.LangEn)
	d := model.AdminArticleDetail{
		ID:                 a.ID,
		TitleFa:            fa.Title,
		TitleEn:            en.Title,
		BodyFa:             fa.Body,
		BodyEn:             en.Body,
		Slug:               a.Slug,
		Status:             a.Status,
		Type:               a.Type,
		TeamID:             a.TeamID,
		AuthorID:           a.AuthorID,
		AuthorName:         a.AuthorName(),
		VideoURL:           a.VideoURL,
		ScheduledPublishAt: a.ScheduledPublishAt,
		Images:             a.Images,
		HitsCount:          a.HitsCount,
		LikesCount:         a.LikesCount,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
	if d.Images == nil {
		d.Images = []model.ArticleImage{}
	}
	return d
}

// mapSlice converts every element of in with fn.
func mapSlice[In, Out any](in []In, fn func(*In) Out) []Out {
	out := make([]Out, 0, len(in))
	for i := range in {
		out = append(out, fn(&in[i]))
	}
	return out
}
