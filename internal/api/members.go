package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/famnudger/fam/backend/internal/service"
	"github.com/famnudger/fam/backend/internal/types"
)

// MemberHandler serves the household roster.
type MemberHandler struct {
	roster service.IRosterService
}

func NewMemberHandler(roster service.IRosterService) *MemberHandler {
	return &MemberHandler{roster: roster}
}

// RegisterRoutes expects router to be behind AuthMiddleware.
func (h *MemberHandler) RegisterRoutes(router *gin.RouterGroup) {
	members := router.Group("/members")
	{
		members.GET("", h.List)
		members.POST("", h.Create)
		members.PUT("/:id", h.Update)
		members.DELETE("/:id", h.Delete)
	}
}

func (h *MemberHandler) List(c *gin.Context) {
	household, ok := householdID(c)
	if !ok {
		return
	}
	members, err := h.roster.ListMembers(c.Request.Context(), household)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

func (h *MemberHandler) Create(c *gin.Context) {
	household, ok := householdID(c)
	if !ok {
		return
	}
	var req types.CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	member, err := h.roster.CreateMember(c.Request.Context(), household, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

func (h *MemberHandler) Update(c *gin.Context) {
	household, ok := householdID(c)
	if !ok {
		return
	}
	memberID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, service.ErrMemberNotFound)
		return
	}
	var update types.MemberUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		badRequest(c, err)
		return
	}
	member, err := h.roster.UpdateMember(c.Request.Context(), household, memberID, update)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *MemberHandler) Delete(c *gin.Context) {
	household, ok := householdID(c)
	if !ok {
		return
	}
	memberID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, service.ErrMemberNotFound)
		return
	}
	if err := h.roster.DeleteMember(c.Request.Context(), household, memberID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
