package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTranslations_Get(t *testing.T) {
	tr := Translations[NameTranslation]{
		LangFa: {Name: "پرسپولیس"},
		LangEn: {Name: "Persepolis"},
	}

	v, ok := tr.Get(LangEn)
	assert.True(t, ok)
	assert.Equal(t, "Persepolis", v.Name)

	v, ok = tr.Get("de")
	assert.True(t, ok)
	assert.Equal(t, "پرسپولیس", v.Name)
}

func TestTranslations_GetFallsBackToAnyLanguage(t *testing.T) {
	tr := Translations[NameTranslation]{LangEn: {Name: "Esteghlal"}}

	v, ok := tr.Get(LangFa)
	assert.True(t, ok)
	assert.Equal(t, "Esteghlal", v.Name)
}

func TestTranslations_EmptyCountsAsMissing(t *testing.T) {
	tr := Translations[NameTranslation]{LangFa: {Name: ""}, LangEn: {Name: "Sepahan"}}

	assert.False(t, tr.Has(LangFa))
	v, _ := tr.Get(LangFa)
	assert.Equal(t, "Sepahan", v.Name)

	_, ok := Translations[NameTranslation]{}.Get(LangFa)
	assert.False(t, ok)
}

func TestNormalizeLanguage(t *testing.T) {
	assert.Equal(t, LangEn, NormalizeLanguage("en-US"))
	assert.Equal(t, LangFa, NormalizeLanguage("FA"))
	assert.Equal(t, LangFa, NormalizeLanguage("fr"))
	assert.Equal(t, LangFa, NormalizeLanguage(""))
}

func TestUser_Permissions(t *testing.T) {
	u := &User{}
	assert.Equal(t, PermissionNormal, u.Permissions())
	assert.Equal(t, ProfileKindUser, u.ProfileKind())

	u.IsSeller = true
	assert.Equal(t, "seller", u.Permissions())
	assert.Equal(t, ProfileKindSeller, u.ProfileKind())

	u.IsSuperuser = true
	u.IsAuthor = true
	assert.Equal(t, "admin,seller,author", u.Permissions())
	assert.Equal(t, ProfileKindAuthor, u.ProfileKind())
}

func TestProfile_FullName(t *testing.T) {
	first, last := "Ali", "Daei"
	assert.Equal(t, "Ali Daei", (&Profile{FirstName: &first, LastName: &last}).FullName())
	assert.Equal(t, "Unknown", (&Profile{FirstName: &first}).FullName())

	var p *Profile
	assert.Equal(t, "Unknown", p.FullName())
}

func TestOtpCode_ExpiryBoundary(t *testing.T) {
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	otp := &OtpCode{CreatedAt: created}
	ttl := 2 * time.Minute

	assert.False(t, otp.IsExpired(created.Add(ttl-time.Nanosecond), ttl))
	assert.True(t, otp.IsExpired(created.Add(ttl), ttl))
	assert.Equal(t, 30*time.Second, otp.Remaining(created.Add(90*time.Second), ttl))
	assert.Equal(t, time.Duration(0), otp.Remaining(created.Add(5*time.Minute), ttl))
}

func TestPage(t *testing.T) {
	p := NewPage(0, 500)
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, MaxPageSize, p.Size)

	p = NewPage(3, 0)
	assert.Equal(t, DefaultPageSize, p.Size)
	assert.Equal(t, 16, p.Offset())
	assert.True(t, p.InRange(17))
	assert.False(t, p.InRange(16))
	assert.False(t, p.HasNext(24))
	assert.True(t, p.HasNext(25))

	assert.True(t, NewPage(1, 8).InRange(0))
}

func TestPlayer_ListItemLocalizesPosition(t *testing.T) {
	p := &Player{
		Position:     PositionGoalkeeper,
		Translations: Translations[NameTranslation]{LangFa: {Name: "علیرضا"}, LangEn: {Name: "Alireza"}},
	}

	fa := p.ListItem(LangFa)
	assert.Equal(t, "دروازه‌بان", fa.Position)
	assert.Equal(t, "علیرضا", fa.Name)

	en := p.ListItem(LangEn)
	assert.Equal(t, PositionGoalkeeper, en.Position)
	assert.Equal(t, "Alireza", en.Name)

	p.Position = "SWEEPER"
	assert.Equal(t, "SWEEPER", p.ListItem(LangFa).Position)
}

func TestArticle_TimeReference(t *testing.T) {
	created := time.Now().Add(-time.Hour)
	a := &Article{CreatedAt: created, Status: ArticleStatusDraft}
	assert.Equal(t, created, a.TimeReference())
	assert.False(t, a.IsScheduled())

	at := time.Now().Add(time.Hour)
	a.ScheduledPublishAt = &at
	assert.Equal(t, at, a.TimeReference())
	assert.False(t, a.IsScheduled(), "a publish time without a task is history, not a schedule")

	task := "task-1"
	a.ScheduledTaskID = &task
	assert.True(t, a.IsScheduled())
}
