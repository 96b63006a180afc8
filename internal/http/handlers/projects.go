package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/qtohub/internal/domain/project"
	"github.com/gin-gonic/gin"
)

type ProjectService interface {
	Create(ctx context.Context, req project.Request) (project.Project, error)
	List(ctx context.Context) ([]project.Project, error)
	Get(ctx context.Context, id string) (project.Project, error)
	Update(ctx context.Context, id string, req project.Request) (project.Project, error)
	Delete(ctx context.Context, id string) error
}

type ProjectsHandler struct {
	svc ProjectService
}

func NewProjectsHandler(svc ProjectService) *ProjectsHandler {
	return &ProjectsHandler{svc: svc}
}

func (h *ProjectsHandler) CreateProject(ctx *gin.Context) {
	var req project.Request

	if !BindJSON(ctx, &req) {
		return
	}

	p, err := h.svc.Create(ctx.Request.Context(), req)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message":   "Project created successfully!",
		"type":      "success",
		"projectId": p.ID,
		"project":   p,
	})
}

func (h *ProjectsHandler) ListProjects(ctx *gin.Context) {
	projects, err := h.svc.List(ctx.Request.Context())
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"items": projects,
		"count": len(projects),
	})
}

func (h *ProjectsHandler) GetProject(ctx *gin.Context) {
	p, err := h.svc.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, p)
}

func (h *ProjectsHandler) UpdateProject(ctx *gin.Context) {
	var req project.Request

	if !BindJSON(ctx, &req) {
		return
	}

	p, err := h.svc.Update(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Project updated successfully!",
		"type":    "success",
		"project": p,
	})
}

func (h *ProjectsHandler) DeleteProject(ctx *gin.Context) {
	if err := h.svc.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Project deleted successfully.",
		"type":    "success",
	})
}
