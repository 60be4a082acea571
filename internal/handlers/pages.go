package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const indexTemplate = "index.html"

// fallbackPage is served when no template directory is available, so the
// API stays usable from a bare binary.
const fallbackPage = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Job Finder</title></head>
<body>
<h1>Job Finder API</h1>
<p>POST /api/search, then poll GET /api/status and fetch GET /api/results.</p>
</body>
</html>`

type PageHandler struct {
	HasTemplates bool
}

// Home is GET /.
func (h *PageHandler) Home(c *gin.Context) {
	if !h.HasTemplates {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(fallbackPage))
		return
	}
	c.HTML(http.StatusOK, indexTemplate, gin.H{"Title": "Job Finder"})
}
