package model

import "time"

// Team is a club with a bilingual name
type Team struct {
	ID           int64                         `json:"id"`
	Slug         string                        `json:"slug"`
	ImageKey     *string                       `json:"-"`
	ImageURL     *string                       `json:"image"`
	CreatedAt    time.Time                     `json:"created_at"`
	Translations Translations[NameTranslation] `json:"-"`
}

func (t *Team) Name(lang string) string {
	n, _ := t.Translations.Get(lang)
	return n.Name
}

// TeamListItem is a team shown in one language.
type TeamListItem struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Image *string `json:"image"`
	Slug  string  `json:"slug"`
}

// TeamDetail exposes both names for editing.
type TeamDetail struct {
	ID     int64   `json:"id"`
	NameFa string  `json:"name_fa"`
	NameEn string  `json:"name_en"`
	Image  *string `json:"image"`
	Slug   string  `json:"slug"`
}

func (t *Team) ListItem(lang string) TeamListItem {
	return TeamListItem{ID: t.ID, Name: t.Name(lang), Image: t.ImageURL, Slug: t.Slug}
}

func (t *Team) Detail() TeamDetail {
	return TeamDetail{
		ID:     t.ID,
		NameFa: t.Name(LangFa),
		NameEn: t.Name(LangEn),
		Image:  t.ImageURL,
		Slug:   t.Slug,
	}
}

// TeamRequest carries multipart form values; nil means unchanged on update.
type TeamRequest struct {
	NameFa *string `form:"name_fa" binding:"omitempty,max=250"`
	NameEn *string `form:"name_en" binding:"omitempty,max=250"`
}

// NameFilters is shared by the team and player lists.
type NameFilters struct {
	Search   *string
	Lang     string
	Position *string
	Page     Page
}
