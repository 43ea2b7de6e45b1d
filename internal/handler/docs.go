package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterDocs(r *gin.Engine) {
	r.GET("/docs", func(c *gin.Context) {
		c.Header("Content-Type", "text/markdown; charset=utf-8")
		c.String(http.StatusOK, `# Continuum API

Curated database of company postmortems and incident writeups.

## Public

- GET /healthz
- GET /readyz
- GET /postmortems?company=&severity=&status=&sort_by=&sort_dir=&limit=&offset=
- GET /postmortems/{id}

## Admin (X-Admin-Secret header required)

- GET /admin/queue
- PATCH /admin/postmortems/{id}/publish
- PATCH /admin/postmortems/{id}/reject
- DELETE /admin/postmortems/{id}
- GET /admin/sources
- POST /admin/sources
- PATCH /admin/sources/{id}
- DELETE /admin/sources/{id}
- POST /admin/sources/{id}/sync (SSE progress stream)

Sync streams typed events: start, commits_page, commits_done, fetching,
incident, then exactly one of done or error.
`)
	})
}
