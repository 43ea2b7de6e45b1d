package handler

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"continuum/internal/ingest"
	"continuum/internal/models"
	"continuum/internal/repository"
)

// SourceHandler serves admin source CRUD and the on-demand sync stream.
type SourceHandler struct {
	Repo   repository.Repository
	Syncer *ingest.Syncer
	Logger *zap.Logger
	Secret string
}

func (h *SourceHandler) Register(r *gin.Engine) {
	group := r.Group("/admin/sources", RequireAdminSecret(h.Secret))
	group.GET("", h.list)
	group.POST("", h.create)
	group.PATCH("/:id", h.update)
	group.DELETE("/:id", h.delete)
	group.POST("/:id/sync", h.sync)
}

type sourceCreateRequest struct {
	Company string         `json:"company" binding:"required"`
	Slug    string         `json:"slug" binding:"required"`
	Method  string         `json:"method"`
	Config  map[string]any `json:"config"`
	Active  *bool          `json:"active"`
}

type sourceUpdateRequest struct {
	Company *string         `json:"company"`
	Method  *string         `json:"method"`
	Config  *map[string]any `json:"config"`
	Active  *bool           `json:"active"`
}

func (h *SourceHandler) list(c *gin.Context) {
	items, err := h.Repo.ListSources(c.Request.Context())
	if err != nil {
		h.logErr("list sources failed", err)
		Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	if items == nil {
		items = []models.Source{}
	}
	c.JSON(http.StatusOK, items)
}

func (h *SourceHandler) create(c *gin.Context) {
	var req sourceCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error())
		return
	}
	method := req.Method
	if method == "" {
		method = models.MethodGitHubJSON
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	item := models.Source{
		ID:        uuid.NewString(),
		Company:   req.Company,
		Slug:      req.Slug,
		Method:    method,
		Config:    datatypes.JSONMap(req.Config),
		Active:    active,
		CreatedAt: time.Now().UTC(),
	}
	if item.Config == nil {
		item.Config = datatypes.JSONMap{}
	}
	if err := h.Repo.InsertSource(c.Request.Context(), &item); err != nil {
		h.logErr("create source failed", err)
		Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *SourceHandler) update(c *gin.Context) {
	item, err := h.Repo.GetSourceByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logErr("get source failed", err)
		Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "Source not found")
		return
	}
	var req sourceUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Company != nil {
		item.Company = *req.Company
	}
	if req.Method != nil {
		item.Method = *req.Method
	}
	if req.Config != nil {
		item.Config = datatypes.JSONMap(*req.Config)
	}
	if req.Active != nil {
		item.Active = *req.Active
	}
	if err := h.Repo.UpdateSource(c.Request.Context(), item); err != nil {
		h.logErr("update source failed", err)
		Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *SourceHandler) delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.Repo.DeleteSource(c.Request.Context(), id); err != nil {
		h.logErr("delete source failed", err)
		Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// sync starts a run and streams its progress events over SSE. The run is
// detached from the request context: a disconnected admin tab must not
// abort inserts mid-pass, and id-based dedup makes the rerun safe anyway.
func (h *SourceHandler) sync(c *gin.Context) {
	src, err := h.Repo.GetSourceByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logErr("get source failed", err)
		Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	if src == nil {
		Error(c, http.StatusNotFound, "Source not found")
		return
	}
	if !src.Active {
		Error(c, http.StatusBadRequest, "Source is not active")
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	events := h.Syncer.Run(context.Background(), *src)
	c.Stream(func(w io.Writer) bool {
		event, ok := <-events
		if !ok {
			return false
		}
		c.SSEvent("message", event)
		return true
	})
	// Client may be gone; drain so the producer can finish the pass.
	go func() {
		for range events {
		}
	}()
}

func (h *SourceHandler) logErr(msg string, err error) {
	if h.Logger != nil {
		h.Logger.Warn(msg, zap.Error(err))
	}
}
