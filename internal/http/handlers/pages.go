package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// PagesHandler serves the HTML shells for the browser UI from a static
// directory. The pages call the JSON API.
type PagesHandler struct {
	dir string
}

func NewPagesHandler(dir string) *PagesHandler {
	return &PagesHandler{dir: dir}
}

func (h *PagesHandler) Home(ctx *gin.Context) {
	ctx.Redirect(http.StatusFound, "/projects")
}

func (h *PagesHandler) LoginPage(ctx *gin.Context) {
	ctx.File(filepath.Join(h.dir, "login.html"))
}

func (h *PagesHandler) RegisterPage(ctx *gin.Context) {
	ctx.File(filepath.Join(h.dir, "register.html"))
}
