package model

import "time"

const (
	ArticleStatusDraft     = "DR"
	ArticleStatusPublished = "PB"
	// ArticleStatusScheduled is a filter value only: a draft with a publish time.
	ArticleStatusScheduled = "ST"

	ArticleTypeText      = "TX"
	ArticleTypeSlideShow = "SS"
	ArticleTypeVideo     = "VD"
)

// ArticleStatusLabels and ArticleTypeLabels feed the admin filter options.
var ArticleStatusLabels = map[string]string{
	"":                     "همه وضعیت‌ها",
	ArticleStatusDraft:     "پیش نویس",
	ArticleStatusPublished: "منتشر شده",
	ArticleStatusScheduled: "زمان‌بندی شده",
}

var ArticleTypeLabels = map[string]string{
	"":                   "همه نوع‌ها",
	ArticleTypeText:      "عادی",
	ArticleTypeSlideShow: "اسلایدشو",
	ArticleTypeVideo:     "ویدیو",
}

// Article is a bilingual news item
type Article struct {
	ID                 int64                         `json:"id"`
	AuthorID           *int                          `json:"author_id"`
	TeamID             *int64                        `json:"team_id"`
	Slug               string                        `json:"slug"`
	Status             string                        `json:"status"`
	Type               string                        `json:"type"`
	VideoURL           *string                       `json:"video_url"`
	ScheduledPublishAt *time.Time                    `json:"scheduled_publish_at"`
	ScheduledTaskID    *string                       `json:"scheduled_task_id"`
	CreatedAt          time.Time                     `json:"created_at"`
	UpdatedAt          time.Time                     `json:"updated_at"`
	Translations       Translations[TextTranslation] `json:"-"`

	// Read side, filled by the repository
	Author     *Profile       `json:"-"`
	Team       *Team          `json:"-"`
	Images     []ArticleImage `json:"-"`
	HitsCount  int            `json:"-"`
	LikesCount int            `json:"-"`
}

// Title returns the title in lang, falling back across languages.
func (a *Article) Title(lang string) string {
	t, _ := a.Translations.Get(lang)
	return t.Title
}

// Body returns the body in lang, falling back across languages.
func (a *Article) Body(lang string) string {
	t, _ := a.Translations.Get(lang)
	return t.Body
}

// TimeReference is the instant "time ago" is measured from.
func (a *Article) TimeReference() time.Time {
	if a.ScheduledPublishAt != nil {
		return *a.ScheduledPublishAt
	}
	return a.CreatedAt
}

// IsScheduled reports whether the article is a draft waiting for publication.
func (a *Article) IsScheduled() bool {
	return a.Status == ArticleStatusDraft && a.ScheduledPublishAt != nil && a.ScheduledTaskID != nil
}

func (a *Article) AuthorName() string {
	return a.Author.FullName()
}

// ArticleImage is an uploaded image attached to an article
type ArticleImage struct {
	ID        int64     `json:"id"`
	ArticleID int64     `json:"-"`
	ObjectKey string    `json:"-"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// ArticleRequest is used for create and partial update. Nil fields are not changed.
type ArticleRequest struct {
	TitleFa            *string    `json:"title_fa" binding:"omitempty,max=250"`
	TitleEn            *string    `json:"title_en" binding:"omitempty,max=250"`
	BodyFa             *string    `json:"body_fa"`
	BodyEn             *string    `json:"body_en"`
	Status             *string    `json:"status" binding:"omitempty,oneof=DR PB"`
	Type               *string    `json:"type" binding:"omitempty,oneof=TX SS VD"`
	TeamID             *int64     `json:"team_id" binding:"omitempty,min=1"`
	ClearTeam          bool       `json:"clear_team"`
	VideoURL           *string    `json:"video_url" binding:"omitempty,url"`
	ScheduledPublishAt *time.Time `json:"scheduled_publish_at"`
	ClearSchedule      bool       `json:"clear_schedule"`
}

// ArticleFilters narrows article list queries
type ArticleFilters struct {
	Status        *string
	Type          *string
	TeamID        *int64
	AuthorID      *int
	Search        *string
	Lang          string
	PublishedOnly bool
	Page          Page
}

// ArticleListItem is the public list representation.
type ArticleListItem struct {
	ID         int64   `json:"id"`
	Title      string  `json:"title"`
	Body       string  `json:"body"`
	AuthorName string  `json:"author_name"`
	Slug       string  `json:"slug"`
	ViewCount  int     `json:"view_count"`
	LikeCount  int     `json:"like_count"`
	TimeAgo    string  `json:"time_ago"`
	Status     *string `json:"status,omitempty"`
}

// ArticleView is the public detail representation.
type ArticleView struct {
	ID         int64          `json:"id"`
	Title      string         `json:"title"`
	Body       string         `json:"body"`
	AuthorName string         `json:"author_name"`
	Slug       string         `json:"slug"`
	Type       string         `json:"type"`
	VideoURL   *string        `json:"video_url"`
	Team       *TeamListItem  `json:"team"`
	Images     []ArticleImage `json:"images"`
	ViewCount  int            `json:"view_count"`
	LikeCount  int            `json:"like_count"`
	TimeAgo    string         `json:"time_ago"`
	Status     *string        `json:"status,omitempty"`
}

// AdminArticleItem is a row in the admin article table.
type AdminArticleItem struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Status     string    `json:"status"`
	Type       string    `json:"type"`
	Team       *string   `json:"team"`
	HitsCount  int       `json:"hits_count"`
	LikesCount int       `json:"likes_count"`
	UpdatedAt  time.Time `json:"updated_date"`
	CreatedAt  time.Time `json:"created_date"`
}

// AdminArticleDetail exposes both translations for editing.
type AdminArticleDetail struct {
	ID                 int64          `json:"id"`
	TitleFa            string         `json:"title_fa"`
	TitleEn            string         `json:"title_en"`
	BodyFa             string         `json:"body_fa"`
	BodyEn             string         `json:"body_en"`
	Slug               string         `json:"slug"`
	Status             string         `json:"status"`
	Type               string         `json:"type"`
	TeamID             *int64         `json:"team_id"`
	AuthorID           *int           `json:"author_id"`
	AuthorName         string         `json:"author_name"`
	VideoURL           *string        `json:"video_url"`
	ScheduledPublishAt *time.Time     `json:"scheduled_publish_at"`
	Images             []ArticleImage `json:"images"`
	HitsCount          int            `json:"hits_count"`
	LikesCount         int            `json:"likes_count"`
	CreatedAt          time.Time      `json:"created_date"`
	UpdatedAt          time.Time      `json:"updated_date"`
}

// LikeResult is returned by the like toggle.
type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likes_count"`
}
