package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"continuum/internal/models"
	"continuum/internal/repository"
)

// AdminHandler serves the review queue: pending candidates waiting for a
// human publish/reject decision.
type AdminHandler struct {
	Repo   repository.Repository
	Logger *zap.Logger
	Secret string
}

func (h *AdminHandler) Register(r *gin.Engine) {
	group := r.Group("/admin", RequireAdminSecret(h.Secret))
	group.GET("/queue", h.queue)
	group.PATCH("/postmortems/:id/publish", h.publish)
	group.PATCH("/postmortems/:id/reject", h.reject)
	group.DELETE("/postmortems/:id", h.delete)
}

func (h *AdminHandler) queue(c *gin.Context) {
	status := models.StatusPending
	items, err := h.Repo.ListPostmortems(c.Request.Context(), repository.ListPostmortemsParams{
		Status:   &status,
		SortBy:   "created_at",
		SortDesc: true,
		Limit:    100,
	})
	if err != nil {
		h.logErr("list queue failed", err)
		Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	if items == nil {
		items = []models.Postmortem{}
	}
	c.JSON(http.StatusOK, items)
}

func (h *AdminHandler) publish(c *gin.Context) {
	h.setStatus(c, models.StatusPublished)
}

func (h *AdminHandler) reject(c *gin.Context) {
	h.setStatus(c, models.StatusRejected)
}

func (h *AdminHandler) setStatus(c *gin.Context, status string) {
	id := c.Param("id")
	updated, err := h.Repo.UpdatePostmortemStatus(c.Request.Context(), id, status)
	if err != nil {
		h.logErr("update status failed", err)
		Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	if updated == 0 {
		Error(c, http.StatusNotFound, "Not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": status})
}

func (h *AdminHandler) delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.Repo.DeletePostmortem(c.Request.Context(), id); err != nil {
		h.logErr("delete postmortem failed", err)
		Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *AdminHandler) logErr(msg string, err error) {
	if h.Logger != nil {
		h.Logger.Warn(msg, zap.Error(err))
	}
}
