package apispec

import (
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/patric-chuzhbe/apidemo/internal/logger"
)

const swaggerUIVersion = "5.17.14"

var docsPage = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@{{.Version}}/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui" data-url="{{.DocumentURL}}"></div>
  <script src="https://unpkg.com/swagger-ui-dist@{{.Version}}/swagger-ui-bundle.js" crossorigin></script>
  <script>
    window.onload = function () {
      var root = document.getElementById("swagger-ui");
      window.ui = SwaggerUIBundle({url: root.dataset.url, dom_id: "#swagger-ui"});
    };
  </script>
</body>
</html>
`))

// ServeDocs renders the Swagger UI page for the document.
func (s *Spec) ServeDocs(response http.ResponseWriter, request *http.Request) {
	response.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := docsPage.Execute(response, struct {
		Title       string
		Version     string
		DocumentURL string
	}{
		Title:       s.Title(),
		Version:     swaggerUIVersion,
		DocumentURL: DocumentPath,
	})
	if err != nil {
		logger.Log.Errorln("rendering the docs page failed", zap.Error(err))
	}
}

// ServeDocument serves the raw YAML document.
func (s *Spec) ServeDocument(response http.ResponseWriter, request *http.Request) {
	response.Header().Set("Content-Type", "application/yaml")
	if _, err := response.Write(s.raw); err != nil {
		logger.Log.Debugln("writing the document failed", zap.Error(err))
	}
}
