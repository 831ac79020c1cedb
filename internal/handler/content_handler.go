package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/mentor-site-api/internal/dashboard"
	"github.com/noah-isme/mentor-site-api/pkg/response"
)

// ContentService is the admin surface of one content type.
type ContentService[T, C, U any] interface {
	dashboard.ContentService[T, C, U]
	Get(ctx context.Context, id string) (*T, error)
}

// ContentHandler serves the admin CRUD endpoints of one content type.
type ContentHandler[T, C, U any] struct {
	name    string
	service ContentService[T, C, U]
	logger  *zap.Logger
}

// NewContentHandler constructs a handler; name is used in prompts and logs.
func NewContentHandler[T, C, U any](name string, svc ContentService[T, C, U], logger *zap.Logger) *ContentHandler[T, C, U] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentHandler[T, C, U]{name: name, service: svc, logger: logger}
}

func (h *ContentHandler[T, C, U]) editor(c *gin.Context) *dashboard.Editor[T, C, U] {
	list := dashboard.NewListController(h.name, h.service.List, h.logger)
	return dashboard.NewEditor(h.name, list, dashboard.ForActor[T, C, U](h.service, claimsFromContext(c)), confirmFromRequest(c), h.logger)
}

// List returns every record for the admin table.
func (h *ContentHandler[T, C, U]) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, map[string]interface{}{"total": len(items)})
}

// Get returns one record.
func (h *ContentHandler[T, C, U]) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item)
}

// Create stores a new record and returns it with the re-fetched list.
func (h *ContentHandler[T, C, U]) Create(c *gin.Context) {
	var draft C
	if !bindJSON(c, &draft, "invalid "+h.name+" payload") {
		return
	}
	editor := h.editor(c)
	editor.SetDraft(draft)
	item, err := editor.Create(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item, map[string]interface{}{"list": viewOf(editor.List())})
}

// Update merges the provided fields into a record.
func (h *ContentHandler[T, C, U]) Update(c *gin.Context) {
	var patch U
	if !bindJSON(c, &patch, "invalid "+h.name+" payload") {
		return
	}
	editor := h.editor(c)
	item, err := editor.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, map[string]interface{}{"list": viewOf(editor.List())})
}

// Delete removes a record when the request carries confirmation.
func (h *ContentHandler[T, C, U]) Delete(c *gin.Context) {
	editor := h.editor(c)
	deleted, err := editor.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !deleted {
		declined(c)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": true}, map[string]interface{}{"list": viewOf(editor.List())})
}
