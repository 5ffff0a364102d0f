package httpserver

import (
	"net/http"
	"net/url"
	"strconv"

	"customer-api/internal/domain"
	"github.com/gin-gonic/gin"
)

// envelope is the JSON body of every API response.
type envelope struct {
	Success   bool                `json:"success"`
	Message   string              `json:"message"`
	Data      any                 `json:"data,omitempty"`
	ErrorCode string              `json:"error_code,omitempty"`
	Errors    map[string][]string `json:"errors,omitempty"`
	Meta      *pageMeta           `json:"meta,omitempty"`
	Links     *pageLinks          `json:"links,omitempty"`
}

type pageMeta struct {
	CurrentPage int  `json:"current_page"`
	LastPage    int  `json:"last_page"`
	PerPage     int  `json:"per_page"`
	Total       int  `json:"total"`
	From        *int `json:"from"`
	To          *int `json:"to"`
}

type pageLinks struct {
	First string  `json:"first"`
	Last  string  `json:"last"`
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
}

func respondOK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func respondError(c *gin.Context, status int, code, message string, fields map[string][]string) {
	c.AbortWithStatusJSON(status, envelope{
		Success:   false,
		Message:   message,
		ErrorCode: code,
		Errors:    fields,
	})
}

func respondPage[T any](c *gin.Context, message string, page domain.Page[T], data any) {
	meta := &pageMeta{
		CurrentPage: page.Page,
		LastPage:    page.LastPage(),
		PerPage:     page.PerPage,
		Total:       page.Total,
	}
	if len(page.Items) > 0 {
		from, to := page.From(), page.To()
		meta.From, meta.To = &from, &to
	}

	links := &pageLinks{
		First: pageURL(c.Request, 1),
		Last:  pageURL(c.Request, meta.LastPage),
	}
	if page.Page > 1 {
		prev := pageURL(c.Request, page.Page-1)
		links.Prev = &prev
	}
	if page.Page < meta.LastPage {
		next := pageURL(c.Request, page.Page+1)
		links.Next = &next
	}

	c.JSON(http.StatusOK, envelope{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
		Links:   links,
	})
}

// pageURL rewrites the page parameter of the current request URL, keeping
// the other query parameters.
func pageURL(r *http.Request, page int) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	q := r.URL.Query()
	q.Set("page", strconv.Itoa(page))
	u := url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path, RawQuery: q.Encode()}
	return u.String()
}
