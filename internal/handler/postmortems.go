package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"continuum/internal/models"
	"continuum/internal/repository"
)

// PostmortemHandler serves the public listing and detail API.
type PostmortemHandler struct {
	Repo   repository.Repository
	Logger *zap.Logger
}

func (h *PostmortemHandler) Register(r *gin.Engine) {
	r.GET("/postmortems", h.list)
	r.GET("/postmortems/:id", h.get)
}

func (h *PostmortemHandler) list(c *gin.Context) {
	status := strings.TrimSpace(c.DefaultQuery("status", models.StatusPublished))
	params := repository.ListPostmortemsParams{
		Company:  strQueryPtr(c, "company"),
		Severity: strQueryPtr(c, "severity"),
		Status:   &status,
		SortBy:   c.DefaultQuery("sort_by", "published_at"),
		SortDesc: c.DefaultQuery("sort_dir", "desc") != "asc",
		Limit:    intQuery(c, "limit", 20),
		Offset:   intQuery(c, "offset", 0),
	}

	ctx := c.Request.Context()
	items, err := h.Repo.ListPostmortems(ctx, params)
	if err != nil {
		h.logErr("list postmortems failed", err)
		Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	total, err := h.Repo.CountPostmortems(ctx, params)
	if err != nil {
		h.logErr("count postmortems failed", err)
		Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	if items == nil {
		items = []models.Postmortem{}
	}
	c.JSON(http.StatusOK, gin.H{"data": items, "total": total})
}

func (h *PostmortemHandler) get(c *gin.Context) {
	item, err := h.Repo.GetPostmortemByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logErr("get postmortem failed", err)
		Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "Not found")
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *PostmortemHandler) logErr(msg string, err error) {
	if h.Logger != nil {
		h.Logger.Warn(msg, zap.Error(err))
	}
}
