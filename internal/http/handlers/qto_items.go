package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/qtohub/internal/domain/qtoitem"
	"github.com/gin-gonic/gin"
)

type ItemService interface {
	Create(ctx context.Context, projectID string, req qtoitem.Request) (qtoitem.Item, error)
	List(ctx context.Context, projectID string) ([]qtoitem.Item, error)
	Update(ctx context.Context, projectID, itemID string, req qtoitem.Request) (qtoitem.Item, error)
	Delete(ctx context.Context, projectID, itemID string) error
}

type ItemsHandler struct {
	svc ItemService
}

func NewItemsHandler(svc ItemService) *ItemsHandler {
	return &ItemsHandler{svc: svc}
}

func (h *ItemsHandler) CreateItem(ctx *gin.Context) {
	var req qtoitem.Request

	if !BindJSON(ctx, &req) {
		return
	}

	it, err := h.svc.Create(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "QTO Item added successfully!",
		"type":    "success",
		"item":    it,
	})
}

func (h *ItemsHandler) ListItems(ctx *gin.Context) {
	items, err := h.svc.List(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"items":              items,
		"count":              len(items),
		"totalEstimatedCost": qtoitem.SumTotalCost(items),
	})
}

func (h *ItemsHandler) UpdateItem(ctx *gin.Context) {
	var req qtoitem.Request

	if !BindJSON(ctx, &req) {
		return
	}

	it, err := h.svc.Update(ctx.Request.Context(), ctx.Param("id"), ctx.Param("itemId"), req)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "QTO Item updated successfully!",
		"type":    "success",
		"item":    it,
	})
}

func (h *ItemsHandler) DeleteItem(ctx *gin.Context) {
	if err := h.svc.Delete(ctx.Request.Context(), ctx.Param("id"), ctx.Param("itemId")); err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "QTO Item deleted successfully.",
		"type":    "success",
	})
}
