package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var persianDigits = []rune{'۰', '۱', '۲', '۳', '۴', '۵', '۶', '۷', '۸', '۹'}

// PersianDigits renders n with Persian digits.
func PersianDigits(n int) string {
	s := strconv.Itoa(n)
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(persianDigits[r-'0'])
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type timeUnit struct {
	size time.Duration
	en   string
	fa   string
}

var timeUnits = []timeUnit{
	{365 * 24 * time.Hour, "year", "سال"},
	{30 * 24 * time.Hour, "month", "ماه"},
	{24 * time.Hour, "day", "روز"},
	{time.Hour, "hour", "ساعت"},
	{time.Minute, "minute", "دقیقه"},
	{time.Second, "second", "ثانیه"},
}

// TimeAgo renders the distance between t and now in lang ("fa" or "en").
// Times in the future are shown as zero seconds.
func TimeAgo(t, now time.Time, lang string) string {
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}

	unit := timeUnits[len(timeUnits)-1]
	count := int(d / unit.size)
	for _, u := range timeUnits {
		if d >= u.size {
			unit = u
			count = int(d / u.size)
			break
		}
	}

	if lang == "en" {
		if count == 0 {
			return "now"
		}
		if count == 1 {
			return fmt.Sprintf("a %s ago", unit.en)
		}
		return fmt.Sprintf("%d %ss ago", count, unit.en)
	}
	if count == 0 {
		return "هم‌اکنون"
	}
	return fmt.Sprintf("%s %s پیش", PersianDigits(count), unit.fa)
}
