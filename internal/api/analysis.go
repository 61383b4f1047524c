package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/famnudger/fam/backend/internal/service"
	"github.com/famnudger/fam/backend/internal/types"
)

// AnalysisHandler serves product analyses.
type AnalysisHandler struct {
	analyses service.IAnalysisService
}

func NewAnalysisHandler(analyses service.IAnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analyses: analyses}
}

// RegisterRoutes expects router to be behind AuthMiddleware. limit, when
// non-nil, guards analysis creation only.
func (h *AnalysisHandler) RegisterRoutes(router *gin.RouterGroup, limit gin.HandlerFunc) {
	analyses := router.Group("/analyses")
	{
		create := []gin.HandlerFunc{h.Create}
		if limit != nil {
			create = append([]gin.HandlerFunc{limit}, create...)
		}
		analyses.POST("", create...)
		analyses.GET("/:id", h.Get)
		analyses.GET("/:id/alternatives", h.Alternatives)
	}
}

func (h *AnalysisHandler) Create(c *gin.Context) {
	household, ok := householdID(c)
	if !ok {
		return
	}
	var req types.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.analyses.Analyze(c.Request.Context(), household, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if resp.Cached {
		status = http.StatusOK
	}
	c.JSON(status, resp)
}

func (h *AnalysisHandler) Get(c *gin.Context) {
	household, ok := householdID(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, service.ErrAnalysisNotFound)
		return
	}
	resp, err := h.analyses.GetAnalysis(c.Request.Context(), household, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AnalysisHandler) Alternatives(c *gin.Context) {
	household, ok := householdID(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, service.ErrAnalysisNotFound)
		return
	}
	alts, err := h.analyses.Alternatives(c.Request.Context(), household, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alternatives": alts})
}
