package handler

import "net/http"

// scalarPage embeds the Scalar API reference UI, pointed at the served spec.
// Serving docs from the binary keeps them in sync with the running code.
const scalarPage = `<!doctype html>
<html>
  <head>
    <title>Recipe Box API</title>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
  </head>
  <body>
    <script id="api-reference" data-url="/openapi.yaml"></script>
    <script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
  </body>
</html>`

// GetOpenAPI handles GET /openapi.yaml, serving the embedded spec document.
func (s *Server) GetOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write(s.openapi)
}

// GetDocs handles GET /docs, serving the Scalar reference UI.
func (s *Server) GetDocs(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write([]byte(scalarPage))
}
