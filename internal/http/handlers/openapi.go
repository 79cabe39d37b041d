package handlers

import (
	_ "embed"
	"encoding/json"
	"html/template"
	"net/http"
	"path"
	"sync"
)

//go:embed openapi.json
var openAPISpec []byte

var docsTemplate = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} {{.Version}}</title>
<style>body{margin:0}redoc{display:block;height:100vh}</style>
</head>
<body>
<redoc spec-url="{{.SpecURL}}"></redoc>
<script src="https://cdn.jsdelivr.net/npm/redoc@2.2.0/bundles/redoc.standalone.js"></script>
</body>
</html>
`))

type docsPage struct {
	Title   string
	Version string
	SpecURL string
}

// apiInfo is read once from the embedded document so the docs page never
// drifts from it.
var apiInfo = sync.OnceValue(func() docsPage {
	var doc struct {
		Info struct {
			Title   string `json:"title"`
			Version string `json:"version"`
		} `json:"info"`
	}
	_ = json.Unmarshal(openAPISpec, &doc)
	page := docsPage{Title: doc.Info.Title, Version: doc.Info.Version}
	if page.Title == "" {
		page.Title = "API"
	}
	return page
})

// OpenAPIJSON serves the embedded OpenAPI document.
func (a *App) OpenAPIJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openAPISpec)
}

// OpenAPIDocs renders a Redoc page for the document mounted next to it, so
// /api/docs points at /api/openapi.json wherever the router places both.
func (a *App) OpenAPIDocs(w http.ResponseWriter, r *http.Request) {
	page := apiInfo()
	page.SpecURL = path.Join(path.Dir(r.URL.Path), "openapi.json")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := docsTemplate.Execute(w, page); err != nil {
		a.Logger.Error().Err(err).Msg("render api docs")
	}
}
