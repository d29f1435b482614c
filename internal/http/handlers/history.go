package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/supplesafe-backend/internal/http/middleware"
	"github.com/yungbote/supplesafe-backend/internal/http/response"
	svcerr "github.com/yungbote/supplesafe-backend/internal/pkg/errors"
	"github.com/yungbote/supplesafe-backend/internal/services"
)

type HistoryHandler struct {
	workspaces *services.WorkspaceStore
}

func NewHistoryHandler(workspaces *services.WorkspaceStore) *HistoryHandler {
	return &HistoryHandler{workspaces: workspaces}
}

// GET /api/history
func (h *HistoryHandler) List(c *gin.Context) {
	ws := workspaceFor(c, h.workspaces)
	records, err := ws.History.List(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"history": records})
}

// DELETE /api/history/:id
func (h *HistoryHandler) Remove(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondErr(c, fmt.Errorf("%w: invalid history id", svcerr.ErrValidation))
		return
	}
	ws := workspaceFor(c, h.workspaces)
	if err := ws.History.Remove(c.Request.Context(), middleware.SessionFrom(c), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
