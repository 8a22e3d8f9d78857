package model

import "strings"

const (
	LangFa = "fa"
	LangEn = "en"

	DefaultLanguage = LangFa
)

// Languages lists supported language codes in fallback order.
var Languages = []string{LangFa, LangEn}

// NormalizeLanguage returns a supported language code or the default.
func NormalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	for _, l := range Languages {
		if l == lang {
			return l
		}
	}
	return DefaultLanguage
}

// IsSupportedLanguage reports whether lang is one of Languages.
func IsSupportedLanguage(lang string) bool {
	for _, l := range Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// Translations holds per-language rows of a translatable model.
type Translations[T interface{ IsEmpty() bool }] map[string]T

// Has reports whether a non-empty translation exists for lang.
func (t Translations[T]) Has(lang string) bool {
	v, ok := t[lang]
	return ok && !v.IsEmpty()
}

// Get looks up lang, then the default language, then any language.
func (t Translations[T]) Get(lang string) (T, bool) {
	if t.Has(lang) {
		return t[lang], true
	}
	if t.Has(DefaultLanguage) {
		return t[DefaultLanguage], true
	}
	for _, l := range Languages {
		if t.Has(l) {
			return t[l], true
		}
	}
	var zero T
	return zero, false
}

// Exact returns the translation for lang without fallback.
func (t Translations[T]) Exact(lang string) T {
	return t[lang]
}

// TextTranslation is an article translation row.
type TextTranslation struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (t TextTranslation) IsEmpty() bool { return t.Title == "" && t.Body == "" }

// NameTranslation is a team/player translation row.
type NameTranslation struct {
	Name string `json:"name"`
}

func (t NameTranslation) IsEmpty() bool { return t.Name == "" }

// CategoryTranslation is a category translation row.
type CategoryTranslation struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (t CategoryTranslation) IsEmpty() bool { return t.Name == "" && t.Description == "" }
