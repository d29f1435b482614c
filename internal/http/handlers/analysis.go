package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/supplesafe-backend/internal/http/response"
	"github.com/yungbote/supplesafe-backend/internal/modules/analysis"
	svcerr "github.com/yungbote/supplesafe-backend/internal/pkg/errors"
	"github.com/yungbote/supplesafe-backend/internal/services"
)

type AnalysisHandler struct {
	workspaces    *services.WorkspaceStore
	maxImageBytes int64
}

func NewAnalysisHandler(workspaces *services.WorkspaceStore, maxImageBytes int64) *AnalysisHandler {
	if maxImageBytes <= 0 {
		maxImageBytes = analysis.DefaultMaxImageBytes
	}
	return &AnalysisHandler{workspaces: workspaces, maxImageBytes: maxImageBytes}
}

// GET /api/analysis
func (h *AnalysisHandler) Get(c *gin.Context) {
	ws := workspaceFor(c, h.workspaces)
	response.RespondOK(c, ws.Controller.Snapshot())
}

// POST /api/analysis/image (multipart field "image")
func (h *AnalysisHandler) StageImage(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", fmt.Errorf("missing image file: %w", err))
		return
	}
	if fh.Size > h.maxImageBytes {
		response.RespondErr(c, fmt.Errorf("%w: image exceeds %d bytes", svcerr.ErrValidation, h.maxImageBytes))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.maxImageBytes+1))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	ws := workspaceFor(c, h.workspaces)
	snap, err := ws.Controller.StageImage(data)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, snap)
}

// POST /api/analysis/check
func (h *AnalysisHandler) Check(c *gin.Context) {
	ws := workspaceFor(c, h.workspaces)
	snap, started, err := ws.Analyze(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"started": started, "analysis": snap})
}

// POST /api/analysis/reset
func (h *AnalysisHandler) Reset(c *gin.Context) {
	ws := workspaceFor(c, h.workspaces)
	response.RespondOK(c, ws.Controller.Reset())
}
