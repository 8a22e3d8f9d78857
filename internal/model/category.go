package model

import "time"

// Category groups articles, with a translated name and description
type Category struct {
	ID           int64                             `json:"id"`
	Slug         string                            `json:"slug"`
	ImageKey     *string                           `json:"-"`
	ImageURL     *string                           `json:"image"`
	CreatedAt    time.Time                         `json:"created_at"`
	Translations Translations[CategoryTranslation] `json:"-"`
}

type CategoryListItem struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Image       *string `json:"image"`
	Slug        string  `json:"slug"`
}

type CategoryDetail struct {
	ID            int64   `json:"id"`
	NameFa        string  `json:"name_fa"`
	NameEn        string  `json:"name_en"`
	DescriptionFa string  `json:"description_fa"`
	DescriptionEn string  `json:"description_en"`
	Image         *string `json:"image"`
	Slug          string  `json:"slug"`
}

func (c *Category) ListItem(lang string) CategoryListItem {
	t, _ := c.Translations.Get(lang)
	return CategoryListItem{ID: c.ID, Name: t.Name, Description: t.Description, Image: c.ImageURL, Slug: c.Slug}
}

func (c *Category) Detail() CategoryDetail {
	fa := c.Translations.Exact(LangFa)
	en := c.Translations.Exact(LangEn)
	return CategoryDetail{
		ID:            c.ID,
		NameFa:        fa.Name,
		NameEn:        en.Name,
		DescriptionFa: fa.Description,
		DescriptionEn: en.Description,
		Image:         c.ImageURL,
		Slug:          c.Slug,
	}
}

type CategoryRequest struct {
	NameFa        *string `form:"name_fa" binding:"omitempty,max=250"`
	NameEn        *string `form:"name_en" binding:"omitempty,max=250"`
	DescriptionFa *string `form:"description_fa"`
	DescriptionEn *string `form:"description_en"`
}
