package handler

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"tam_website/internal/model"
	"tam_website/internal/service"

	"github.com/gin-gonic/gin"
)

const msgInvalidPage = "Invalid page."

// respondError maps service errors to HTTP responses. Unknown errors are logged and hidden.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{vErr.Field: vErr.Message}})
		return
	}
	var rlErr *service.RateLimitError
	if errors.As(err, &rlErr) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "Too many OTP requests, please try again later.",
			"retry_after": int(math.Ceil(rlErr.RetryAfter.Seconds())),
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "You must be the author of this article to perform this action."})
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrArticleNotFound),
		errors.Is(err, service.ErrTeamNotFound),
		errors.Is(err, service.ErrPlayerNotFound),
		errors.Is(err, service.ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUserAlreadyExists),
		errors.Is(err, service.ErrPhoneRegistered),
		errors.Is(err, service.ErrPhoneNotRegistered),
		errors.Is(err, service.ErrOTPNotSent),
		errors.Is(err, service.ErrOTPExpired),
		errors.Is(err, service.ErrOTPInvalid),
		errors.Is(err, service.ErrRegistrationNotFound),
		errors.Is(err, service.ErrResetNotVerified),
		errors.Is(err, service.ErrInvalidFileFormat),
		errors.Is(err, service.ErrFileSizeExceeded):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.ErrorContext(c.Request.Context(), "request failed",
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found."})
		return 0, false
	}
	return id, true
}

func queryPtr(c *gin.Context, key string) *string {
	v, ok := c.GetQuery(key)
	if !ok || v == "" {
		return nil
	}
	return &v
}

func queryInt64Ptr(c *gin.Context, key string) *int64 {
	v, err := strconv.ParseInt(c.Query(key), 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func queryBool(c *gin.Context, key string) bool {
	v, _ := strconv.ParseBool(c.Query(key))
	return v
}

// searchLanguage reads ?search_language for admin lists; fa unless en is asked for.
func searchLanguage(c *gin.Context) string {
	return model.NormalizeLanguage(c.Query("search_language"))
}

func parsePage(c *gin.Context) model.Page {
	number, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.Query("page_size"))
	return model.NewPage(number, size)
}

// pageURL returns the absolute request URL with page replaced.
func pageURL(c *gin.Context, number int) *string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	u := url.URL{Scheme: scheme, Host: c.Request.Host, Path: c.Request.URL.Path}
	q := c.Request.URL.Query()
	if number <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(number))
	}
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}

// respondPage writes the paginated envelope, or 404 when the page is past the end.
func respondPage[T any](c *gin.Context, page model.Page, total int, results []T) {
	if !page.InRange(total) {
		c.JSON(http.StatusNotFound, gin.H{"error": msgInvalidPage})
		return
	}
	if results == nil {
		results = []T{}
	}
	out := model.Paginated[T]{Count: total, Results: results}
	if page.HasNext(total) {
		out.Next = pageURL(c, page.Number+1)
	}
	if page.Number > 1 {
		out.Previous = pageURL(c, page.Number-1)
	}
	c.JSON(http.StatusOK, out)
}
