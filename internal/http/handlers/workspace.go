package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/supplesafe-backend/internal/http/middleware"
	"github.com/yungbote/supplesafe-backend/internal/services"
)

func workspaceFor(c *gin.Context, store *services.WorkspaceStore) *services.Workspace {
	return store.Acquire(c.Request.Context(), middleware.SessionFrom(c), middleware.ClientIDFrom(c))
}
