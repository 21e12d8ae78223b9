package internal

import (
	"net/http"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest carries the page/size/sortBy/sortDir query parameters shared by
// every list endpoint. Page numbering starts at zero.
type PageRequest struct {
	Page    int
	Size    int
	SortBy  string
	SortDir string
}

// ParsePageRequest reads paging parameters from the request query, falling
// back to the given default sort column when sortBy is absent or not in the
// allowed set. Unknown sort columns are rejected rather than passed through to
// the query layer.
func ParsePageRequest(r *http.Request, defaultSortBy string, allowedSortBy ...string) PageRequest {
	pr := PageRequest{
		Page:    0,
		Size:    DefaultPageSize,
		SortBy:  defaultSortBy,
		SortDir: "asc",
	}

	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			pr.Page = n
		}
	}
	if v := r.URL.Query().Get("size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= MaxPageSize {
			pr.Size = n
		}
	}
	if v := snakeCase(r.URL.Query().Get("sortBy")); v != "" {
		for _, allowed := range allowedSortBy {
			if v == allowed {
				pr.SortBy = v
				break
			}
		}
	}
	if v := r.URL.Query().Get("sortDir"); strings.EqualFold(v, "desc") {
		pr.SortDir = "desc"
	}

	return pr
}

// snakeCase folds camelCase sort keys (lastName) onto their column names
// (last_name), so clients may use either spelling.
func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// OrderClause renders the sort as a SQL ORDER BY fragment. SortBy is only ever
// one of the allow-listed column names, never raw user input.
func (p PageRequest) OrderClause() string {
	dir := "ASC"
	if p.SortDir == "desc" {
		dir = "DESC"
	}
	return p.SortBy + " " + dir
}

// Page is the response envelope for paged lists.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
}

func NewPage[T any](content []T, req PageRequest, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page[T]{
		Content:       content,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    totalPages,
	}
}
