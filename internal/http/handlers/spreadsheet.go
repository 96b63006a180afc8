package handlers

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/geocoder89/qtohub/internal/spreadsheet"
	"github.com/gin-gonic/gin"
)

type SpreadsheetBridge interface {
	Export(ctx context.Context, projectID string) (spreadsheet.Export, error)
	Import(ctx context.Context, projectID string, r io.Reader) (spreadsheet.ImportResult, error)
}

type SpreadsheetHandler struct {
	bridge SpreadsheetBridge
}

func NewSpreadsheetHandler(bridge SpreadsheetBridge) *SpreadsheetHandler {
	return &SpreadsheetHandler{bridge: bridge}
}

func (h *SpreadsheetHandler) ExportProject(ctx *gin.Context) {
	out, err := h.bridge.Export(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": out.FileName}))
	ctx.Data(http.StatusOK, spreadsheet.ContentType, out.Content)
}

func (h *SpreadsheetHandler) ImportProject(ctx *gin.Context) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			RespondError(ctx, http.StatusRequestEntityTooLarge, "file_too_large", "The uploaded file is too large.", nil)
			return
		}
		RespondBadRequest(ctx, "No file uploaded.", gin.H{"field": "file"})
		return
	}

	if !strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
		RespondBadRequest(ctx, "Invalid file type. Please upload an .xlsx file.", gin.H{"field": "file"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		RespondInternal(ctx, "Could not read the uploaded file.")
		return
	}
	defer f.Close()

	res, err := h.bridge.Import(ctx.Request.Context(), ctx.Param("id"), f)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, res)
}
