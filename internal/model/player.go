package model

import "time"

const (
	PositionDefender   = "DEFENDER"
	PositionMidfielder = "MIDFIELDER"
	PositionForward    = "FORWARD"
	PositionGoalkeeper = "GOALKEEPER"
)

// PlayerPositions is ordered the way the options are listed.
var PlayerPositions = []string{PositionDefender, PositionMidfielder, PositionForward, PositionGoalkeeper}

// PositionLabelsFa are the Persian display values of positions.
var PositionLabelsFa = map[string]string{
	PositionDefender:   "مدافع",
	PositionMidfielder: "هافبک",
	PositionForward:    "مهاجم",
	PositionGoalkeeper: "دروازه‌بان",
}

// IsValidPosition reports whether p is a known position key.
func IsValidPosition(p string) bool {
	_, ok := PositionLabelsFa[p]
	return ok
}

// Player is a squad member with a bilingual name
type Player struct {
	ID           int64                         `json:"id"`
	ImageKey     *string                       `json:"-"`
	ImageURL     *string                       `json:"image"`
	Number       int                           `json:"number"`
	Position     string                        `json:"position"`
	Goals        int                           `json:"goals"`
	Games        int                           `json:"games"`
	CreatedAt    time.Time                     `json:"created_at"`
	Translations Translations[NameTranslation] `json:"-"`
}

func (p *Player) Name(lang string) string {
	n, _ := p.Translations.Get(lang)
	return n.Name
}

// PlayerListItem is a player shown in one language.
type PlayerListItem struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Image    *string `json:"image"`
	Number   int     `json:"number"`
	Position string  `json:"position"`
	Goals    int     `json:"goals"`
	Games    int     `json:"games"`
}

// PlayerDetail exposes both names for editing.
type PlayerDetail struct {
	ID       int64   `json:"id"`
	NameFa   string  `json:"name_fa"`
	NameEn   string  `json:"name_en"`
	Image    *string `json:"image"`
	Number   int     `json:"number"`
	Position string  `json:"position"`
	Goals    int     `json:"goals"`
	Games    int     `json:"games"`
}

// ListItem renders the player for lang. The position stays a key for en.
func (p *Player) ListItem(lang string) PlayerListItem {
	position := p.Position
	if label, ok := PositionLabelsFa[p.Position]; ok && lang != LangEn {
		position = label
	}
	return PlayerListItem{
		ID:       p.ID,
		Name:     p.Name(lang),
		Image:    p.ImageURL,
		Number:   p.Number,
		Position: position,
		Goals:    p.Goals,
		Games:    p.Games,
	}
}

func (p *Player) Detail() PlayerDetail {
	return PlayerDetail{
		ID:       p.ID,
		NameFa:   p.Name(LangFa),
		NameEn:   p.Name(LangEn),
		Image:    p.ImageURL,
		Number:   p.Number,
		Position: p.Position,
		Goals:    p.Goals,
		Games:    p.Games,
	}
}

// PlayerRequest carries multipart form values; nil means unchanged on update.
type PlayerRequest struct {
	NameFa   *string `form:"name_fa" binding:"omitempty,max=250"`
	NameEn   *string `form:"name_en" binding:"omitempty,max=250"`
	Number   *int    `form:"number"`
	Position *string `form:"position"`
	Goals    *int    `form:"goals" binding:"omitempty,min=0"`
	Games    *int    `form:"games" binding:"omitempty,min=0"`
}
