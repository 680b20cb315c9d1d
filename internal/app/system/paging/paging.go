// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/dalemusser/ideatrack/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
)

// DefaultPerPage is the page size used when the request does not set perPage.
const DefaultPerPage = 10

// MaxPerPage caps perPage so a single request cannot ask for an unbounded page.
const MaxPerPage = 100

// Metered is any report row that exposes the four counters by name.
// Every row type embeds models.Metrics, which provides Metric.
type Metered interface {
	Metric(field string) int64
}

// Params holds the page request.
type Params struct {
	Page    int    // 1-based
	PerPage int    // rows per page
	SortBy  string // metric name, "" for no sort
	Desc    bool   // descending when SortBy was given as "-field"
}

// ParseParams reads pageIndex, perPage and sortBy from the query string.
// Invalid numbers fall back to defaults. sortBy is kept only when it names
// one of the four metrics; a leading "-" selects descending order.
func ParseParams(r *http.Request) Params {
	p := Params{
		Page:    positiveInt(query.Get(r, "pageIndex"), 1),
		PerPage: positiveInt(query.Get(r, "perPage"), DefaultPerPage),
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}

	sortBy := strings.TrimSpace(query.Get(r, "sortBy"))
	desc := strings.HasPrefix(sortBy, "-")
	sortBy = strings.TrimPrefix(sortBy, "-")
	if models.IsMetricField(sortBy) {
		p.SortBy = sortBy
		p.Desc = desc
	}
	return p
}

// ParseIsPagination reads is_pagination. Only "false" and "0" (any case)
// turn pagination off.
func ParseIsPagination(r *http.Request) bool {
	v := strings.ToLower(strings.TrimSpace(query.Get(r, "is_pagination")))
	return v != "false" && v != "0"
}

func positiveInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Pagination describes the returned page.
type Pagination struct {
	TotalCount int  `json:"total_count"`
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalPages int  `json:"total_pages"`
	IsNext     bool `json:"is_next"`
	IsPrev     bool `json:"is_prev"`
	NextPage   *int `json:"next_page"`
}

// Page is one page of rows plus its metadata.
type Page[T any] struct {
	Rows       []T
	Pagination Pagination
}

// Project sorts rows by the requested metric (stable, so equal values keep
// their incoming order) and slices out the requested page. rows is not modified.
// A page past the end returns no rows but still reports the total.
func Project[T Metered](rows []T, p Params) Page[T] {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}

	sorted := rows
	if p.SortBy != "" {
		sorted = slices.Clone(rows)
		slices.SortStableFunc(sorted, func(a, b T) int {
			av, bv := a.Metric(p.SortBy), b.Metric(p.SortBy)
			if p.Desc {
				av, bv = bv, av
			}
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		})
	}

	total := len(sorted)
	totalPages := (total + p.PerPage - 1) / p.PerPage

	start := (p.Page - 1) * p.PerPage
	if start > total {
		start = total
	}
	end := start + p.PerPage
	if end > total {
		end = total
	}

	pg := Pagination{
		TotalCount: total,
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalPages: totalPages,
		IsNext:     p.Page < totalPages,
		IsPrev:     p.Page > 1,
	}
	if pg.IsNext {
		next := p.Page + 1
		pg.NextPage = &next
	}

	out := make([]T, end-start)
	copy(out, sorted[start:end])
	return Page[T]{Rows: out, Pagination: pg}
}
