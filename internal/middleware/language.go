package middleware

import (
	"strings"

	"tam_website/internal/model"

	"github.com/gin-gonic/gin"
)

const LangKey = "lang"

// Language picks the response language from ?lang, then Accept-Language, then the default.
func Language() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := model.DefaultLanguage
		if q := c.Query("lang"); q != "" && model.IsSupportedLanguage(strings.ToLower(q)) {
			lang = strings.ToLower(q)
		} else if header := c.GetHeader("Accept-Language"); header != "" {
			// primary tag of the first entry, e.g. "en-US,en;q=0.9" -> "en"
			first := strings.TrimSpace(strings.SplitN(header, ",", 2)[0])
			first = strings.SplitN(first, ";", 2)[0]
			lang = model.NormalizeLanguage(first)
		}
		c.Set(LangKey, lang)
		c.Next()
	}
}

// Lang returns the request language, or the default when Language did not run.
func Lang(c *gin.Context) string {
	if v, ok := c.Get(LangKey); ok {
		if lang, ok := v.(string); ok {
			return lang
		}
	}
	return model.DefaultLanguage
}
