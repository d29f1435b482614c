package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/supplesafe-backend/internal/http/middleware"
	"github.com/yungbote/supplesafe-backend/internal/http/response"
	svcerr "github.com/yungbote/supplesafe-backend/internal/pkg/errors"
	"github.com/yungbote/supplesafe-backend/internal/services"
)

type MedicationHandler struct {
	workspaces *services.WorkspaceStore
}

func NewMedicationHandler(workspaces *services.WorkspaceStore) *MedicationHandler {
	return &MedicationHandler{workspaces: workspaces}
}

// GET /api/medications
func (h *MedicationHandler) List(c *gin.Context) {
	ws := workspaceFor(c, h.workspaces)
	source := "demo"
	if ws.Session().Authenticated() {
		source = "account"
	}
	response.RespondOK(c, gin.H{
		"medications": ws.Registry.Load(c.Request.Context(), ws.Session()),
		"source":      source,
	})
}

// POST /api/medications
func (h *MedicationHandler) Add(c *gin.Context) {
	var req services.MedicationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	ws := workspaceFor(c, h.workspaces)
	m, err := ws.Registry.Add(c.Request.Context(), middleware.SessionFrom(c), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"medication": m})
}

// DELETE /api/medications/:id
func (h *MedicationHandler) Remove(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondErr(c, fmt.Errorf("%w: invalid medication id", svcerr.ErrValidation))
		return
	}
	ws := workspaceFor(c, h.workspaces)
	if err := ws.Registry.Remove(c.Request.Context(), middleware.SessionFrom(c), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/medications/seed
func (h *MedicationHandler) Seed(c *gin.Context) {
	ws := workspaceFor(c, h.workspaces)
	seeded, err := ws.Registry.SeedDefaults(c.Request.Context(), middleware.SessionFrom(c))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"medications": seeded})
}
