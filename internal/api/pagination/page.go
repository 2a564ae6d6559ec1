package pagination

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

type ParamError struct {
	Param   string
	Message string
}

func (e ParamError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Message)
}

// Page is a 1-indexed offset page request.
type Page struct {
	Number  int
	PerPage int
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// Parse reads page and per_page from query parameters, applying defaults
// and bounds. page must be >= 1; per_page must be in [1, MaxPerPage].
func Parse(values url.Values) (Page, error) {
	page := Page{Number: 1, PerPage: DefaultPerPage}

	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return page, ParamError{Param: "page", Message: "must be a number"}
		}
		if parsed < 1 {
			return page, ParamError{Param: "page", Message: "must be >= 1"}
		}
		page.Number = parsed
	}

	if raw := strings.TrimSpace(values.Get("per_page")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return page, ParamError{Param: "per_page", Message: "must be a number"}
		}
		if parsed < 1 || parsed > MaxPerPage {
			return page, ParamError{Param: "per_page", Message: fmt.Sprintf("must be between 1 and %d", MaxPerPage)}
		}
		page.PerPage = parsed
	}

	return page, nil
}

type Meta struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewMeta computes pagination metadata for a total row count.
// TotalPages is ceil(total/per_page), zero when total is zero.
func NewMeta(page Page, total int) Meta {
	meta := Meta{
		Page:    page.Number,
		PerPage: page.PerPage,
		Total:   total,
	}
	if total > 0 {
		meta.TotalPages = (total + page.PerPage - 1) / page.PerPage
	}
	return meta
}
