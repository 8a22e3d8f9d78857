package model

// ArticleRank is an entry of the dashboard top lists. Count is views or likes.
type ArticleRank struct {
	ID      int64  `json:"id"`
	Slug    string `json:"slug"`
	TitleFa string `json:"-"`
	TitleEn string `json:"-"`
	Count   int    `json:"-"`
}

// Title prefers the Persian title.
func (r ArticleRank) Title() string {
	if r.TitleFa != "" {
		return r.TitleFa
	}
	return r.TitleEn
}

type TopViewedArticle struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Views int    `json:"views"`
	Slug  string `json:"slug"`
}

type TopLikedArticle struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Likes int    `json:"likes"`
	Slug  string `json:"slug"`
}

// DashboardCounts are the raw totals read from the database.
type DashboardCounts struct {
	Users             int
	Articles          int
	Teams             int
	Players           int
	TotalViews        int
	PublishedArticles int
	DraftArticles     int
}

// DashboardStats is the admin dashboard payload
type DashboardStats struct {
	Users             int                `json:"users"`
	Articles          int                `json:"articles"`
	Teams             int                `json:"teams"`
	Players           int                `json:"players"`
	TotalViews        int                `json:"total_views"`
	PublishedArticles int                `json:"published_articles"`
	DraftArticles     int                `json:"draft_articles"`
	TopViewedArticles []TopViewedArticle `json:"top_viewed_articles"`
	TopLikedArticles  []TopLikedArticle  `json:"top_liked_articles"`
}
