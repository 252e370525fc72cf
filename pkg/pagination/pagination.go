package pagination

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Params holds pagination and sort parameters extracted from a request.
type Params struct {
	Page          int
	PerPage       int
	SortField     string
	SortDirection string
}

// FromContext extracts pagination parameters from the echo context. A
// page or per_page value that is present but not a positive integer is a
// client error; absent values fall back to defaults.
func FromContext(c echo.Context) (Params, error) {
	p := Params{
		Page:          DefaultPage,
		PerPage:       DefaultPerPage,
		SortDirection: "desc",
	}

	if raw := c.QueryParam("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page <= 0 {
			return Params{}, fmt.Errorf("page must be a positive integer, got %q", raw)
		}
		p.Page = page
	}

	if raw := c.QueryParam("per_page"); raw != "" {
		perPage, err := strconv.Atoi(raw)
		if err != nil || perPage <= 0 {
			return Params{}, fmt.Errorf("per_page must be a positive integer, got %q", raw)
		}
		p.PerPage = perPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}

	p.SortField = c.QueryParam("sort_field")
	if dir := strings.ToLower(c.QueryParam("sort_direction")); dir != "" {
		if dir != "asc" && dir != "desc" {
			return Params{}, fmt.Errorf("sort_direction must be asc or desc, got %q", dir)
		}
		p.SortDirection = dir
	}

	return p, nil
}

// Offset returns the row offset for the current page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// SQL returns the LIMIT and OFFSET clause for SQL queries.
func (p Params) SQL() string {
	return fmt.Sprintf("LIMIT %d OFFSET %d", p.PerPage, p.Offset())
}

// OrderBy returns an ORDER BY clause over the given column, with id as a
// stable tiebreak. The column must come from a caller-side allowlist, never
// straight from the request.
func (p Params) OrderBy(column string) string {
	dir := "DESC"
	if p.SortDirection == "asc" {
		dir = "ASC"
	}
	if column == "" || column == "id" {
		return fmt.Sprintf("ORDER BY id %s", dir)
	}
	return fmt.Sprintf("ORDER BY %s %s, id DESC", column, dir)
}

// HasNext returns true if there are more results after the current page.
func (p Params) HasNext(total int) bool {
	return p.Offset()+p.PerPage < total
}
