package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(t *testing.T, query string) (Params, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	rec := httptest.NewRecorder()
	return FromContext(e.NewContext(req, rec))
}

func TestFromContext_Defaults(t *testing.T) {
	p, err := paramsFor(t, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Page != DefaultPage || p.PerPage != DefaultPerPage {
		t.Errorf("unexpected defaults: %+v", p)
	}
	if p.SortDirection != "desc" {
		t.Errorf("expected desc default, got %s", p.SortDirection)
	}
}

func TestFromContext_Values(t *testing.T) {
	p, err := paramsFor(t, "page=3&per_page=10&sort_field=name&sort_direction=asc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Page != 3 || p.PerPage != 10 || p.SortField != "name" || p.SortDirection != "asc" {
		t.Errorf("unexpected params: %+v", p)
	}
	if p.Offset() != 20 {
		t.Errorf("expected offset 20, got %d", p.Offset())
	}
}

func TestFromContext_Invalid(t *testing.T) {
	for _, query := range []string{
		"page=0", "page=-1", "page=abc", "page=1.5",
		"per_page=0", "per_page=-5", "per_page=many",
		"sort_direction=sideways",
	} {
		if _, err := paramsFor(t, query); err == nil {
			t.Errorf("%q: expected error", query)
		}
	}
}

func TestFromContext_PerPageCap(t *testing.T) {
	p, err := paramsFor(t, "per_page=10000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.PerPage != MaxPerPage {
		t.Errorf("expected cap %d, got %d", MaxPerPage, p.PerPage)
	}
}

func TestOrderBy(t *testing.T) {
	p := Params{SortDirection: "asc"}
	if got := p.OrderBy("name"); got != "ORDER BY name ASC, id DESC" {
		t.Errorf("unexpected clause: %q", got)
	}
	if got := p.OrderBy(""); got != "ORDER BY id ASC" {
		t.Errorf("unexpected clause: %q", got)
	}

	p.SortDirection = "desc"
	if got := p.OrderBy("created_at"); got != "ORDER BY created_at DESC, id DESC" {
		t.Errorf("unexpected clause: %q", got)
	}
}

func TestSQL(t *testing.T) {
	p := Params{Page: 2, PerPage: 25}
	if got := p.SQL(); got != "LIMIT 25 OFFSET 25" {
		t.Errorf("unexpected clause: %q", got)
	}
}

func TestHasNext(t *testing.T) {
	p := Params{Page: 1, PerPage: 10}
	if !p.HasNext(11) {
		t.Error("expected more pages")
	}
	if p.HasNext(10) {
		t.Error("expected no more pages")
	}
}
