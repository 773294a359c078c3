package ui

import (
	"encoding/json"
	"html"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func newCtx(method, target string, inertia bool) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	if inertia {
		req.Header.Set(HeaderInertia, "true")
		req.Header.Set(HeaderVersion, "v1")
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRenderJSON(t *testing.T) {
	r, err := NewRenderer("Ledger", "v1")
	require.NoError(t, err)
	r.SetShared(func(echo.Context) map[string]any {
		return map[string]any{"auth": "someone", "title": "global"}
	})
	c, rec := newCtx(http.MethodGet, "/categories?page=2", true)
	Share(c, "flash", map[string]string{"success": "ok"})
	Share(c, "title", "shared")

	require.NoError(t, r.Render(c, http.StatusOK, "Categories/Index", map[string]any{"title": "own"}))
	require.Equal(t, "true", rec.Header().Get(HeaderInertia))
	require.Equal(t, HeaderInertia, rec.Header().Get(echo.HeaderVary))

	var page Page
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Equal(t, "Categories/Index", page.Component)
	require.Equal(t, "/categories?page=2", page.URL)
	require.Equal(t, "v1", page.Version)
	require.Equal(t, "own", page.Props["title"])
	require.NotNil(t, page.Props["flash"])
	require.Equal(t, "someone", page.Props["auth"])
}

func TestRenderHTMLShell(t *testing.T) {
	r, err := NewRenderer("Ledger", "v1")
	require.NoError(t, err)
	c, rec := newCtx(http.MethodGet, "/dashboard", false)

	require.NoError(t, r.Render(c, http.StatusOK, "Dashboard", map[string]any{"note": "<b>"}))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "<title>Ledger</title>")

	m := regexp.MustCompile(`data-page="([^"]*)"`).FindStringSubmatch(body)
	require.Len(t, m, 2)
	var page Page
	require.NoError(t, json.Unmarshal([]byte(html.UnescapeString(m[1])), &page))
	require.Equal(t, "Dashboard", page.Component)
	require.Equal(t, "<b>", page.Props["note"])
}

func TestVersionMiddleware(t *testing.T) {
	r, _ := NewRenderer("Ledger", "v2")
	h := r.VersionMiddleware()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	c, rec := newCtx(http.MethodGet, "/expenses", true)
	require.NoError(t, h(c))
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "/expenses", rec.Header().Get(HeaderLocation))

	c, rec = newCtx(http.MethodPost, "/expenses", true)
	require.NoError(t, h(c))
	require.Equal(t, http.StatusOK, rec.Code)

	c, rec = newCtx(http.MethodGet, "/expenses", false)
	require.NoError(t, h(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRedirects(t *testing.T) {
	c, rec := newCtx(http.MethodPut, "/categories/1", true)
	require.NoError(t, Redirect(c, "/categories"))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	c, rec = newCtx(http.MethodGet, "/", false)
	require.NoError(t, Redirect(c, "/dashboard"))
	require.Equal(t, http.StatusFound, rec.Code)

	c, rec = newCtx(http.MethodDelete, "/expenses/1", true)
	c.Request().Header.Set("Referer", "/expenses/1/edit")
	require.NoError(t, Back(c, "/expenses"))
	require.Equal(t, "/expenses/1/edit", rec.Header().Get(echo.HeaderLocation))

	c, rec = newCtx(http.MethodPost, "/expenses", true)
	require.NoError(t, Back(c, "/expenses"))
	require.Equal(t, "/expenses", rec.Header().Get(echo.HeaderLocation))

	c, rec = newCtx(http.MethodGet, "/auth/google/redirect", true)
	require.NoError(t, Location(c, "https://accounts.google.com/o"))
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "https://accounts.google.com/o", rec.Header().Get(HeaderLocation))

	c, rec = newCtx(http.MethodGet, "/auth/google/redirect", false)
	require.NoError(t, Location(c, "https://accounts.google.com/o"))
	require.Equal(t, http.StatusFound, rec.Code)
}
