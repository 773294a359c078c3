package ui

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	HeaderInertia  = "X-Inertia"
	HeaderVersion  = "X-Inertia-Version"
	HeaderLocation = "X-Inertia-Location"

	sharedKey = "ui.shared"
)

//go:embed templates/app.html
var templatesFS embed.FS

// Page is the payload the client side router consumes: which component to
// mount and with which props.
type Page struct {
	Component string         `json:"component"`
	Props     map[string]any `json:"props"`
	URL       string         `json:"url"`
	Version   string         `json:"version"`
}

type Renderer struct {
	version string
	title   string
	shell   *template.Template
	shared  func(c echo.Context) map[string]any
}

func NewRenderer(title, version string) (*Renderer, error) {
	shell, err := template.ParseFS(templatesFS, "templates/app.html")
	if err != nil {
		return nil, fmt.Errorf("NewRenderer: %w", err)
	}
	return &Renderer{version: version, title: title, shell: shell}, nil
}

func (r *Renderer) Version() string { return r.version }

// SetShared registers props computed for every page at render time, such as
// the signed in user or pending flash messages.
func (r *Renderer) SetShared(fn func(c echo.Context) map[string]any) { r.shared = fn }

// Share adds a prop to every page rendered for the current request.
func Share(c echo.Context, key string, value any) {
	shared, _ := c.Get(sharedKey).(map[string]any)
	if shared == nil {
		shared = map[string]any{}
		c.Set(sharedKey, shared)
	}
	shared[key] = value
}

func IsInertia(c echo.Context) bool {
	return c.Request().Header.Get(HeaderInertia) == "true"
}

// Render answers a client navigation with the page as JSON and a full page
// load with the HTML shell that embeds it.
func (r *Renderer) Render(c echo.Context, status int, component string, props map[string]any) error {
	page := Page{
		Component: component,
		Props:     map[string]any{},
		URL:       c.Request().URL.RequestURI(),
		Version:   r.version,
	}
	if r.shared != nil {
		for k, v := range r.shared(c) {
			page.Props[k] = v
		}
	}
	if shared, ok := c.Get(sharedKey).(map[string]any); ok {
		for k, v := range shared {
			page.Props[k] = v
		}
	}
	for k, v := range props {
		page.Props[k] = v
	}

	res := c.Response()
	res.Header().Add(echo.HeaderVary, HeaderInertia)
	if IsInertia(c) {
		res.Header().Set(HeaderInertia, "true")
		return c.JSON(status, page)
	}

	raw, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("Render: %w", err)
	}
	res.Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	res.WriteHeader(status)
	return r.shell.Execute(res, struct {
		Title    string
		Page     Page
		PageJSON string
	}{Title: r.title, Page: page, PageJSON: string(raw)})
}

// VersionMiddleware forces a full reload when the client was built against
// other assets. Only GET navigations are affected.
func (r *Renderer) VersionMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if IsInertia(c) && req.Method == http.MethodGet && req.Header.Get(HeaderVersion) != r.version {
				c.Response().Header().Set(HeaderLocation, req.URL.RequestURI())
				return c.NoContent(http.StatusConflict)
			}
			return next(c)
		}
	}
}

// Redirect sends the client to url. Writes answer with 303 so the follow-up
// request is a GET.
func Redirect(c echo.Context, url string) error {
	switch c.Request().Method {
	case http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodPost:
		return c.Redirect(http.StatusSeeOther, url)
	}
	return c.Redirect(http.StatusFound, url)
}

// Back redirects to the referring page, or fallback when there is none.
func Back(c echo.Context, fallback string) error {
	if ref := c.Request().Referer(); ref != "" {
		return Redirect(c, ref)
	}
	return Redirect(c, fallback)
}

// Location leaves the client side router, e.g. towards an OAuth provider.
func Location(c echo.Context, url string) error {
	if IsInertia(c) {
		c.Response().Header().Set(HeaderLocation, url)
		return c.NoContent(http.StatusConflict)
	}
	return c.Redirect(http.StatusFound, url)
}
