package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/qtohub/internal/apperr"
	"github.com/geocoder89/qtohub/internal/domain/project"
	"github.com/geocoder89/qtohub/internal/domain/qtoitem"
	"github.com/geocoder89/qtohub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test
func init() {
	gin.SetMode(gin.TestMode)
}

type fakeProjectService struct {
	createFn func(ctx context.Context, req project.Request) (project.Project, error)
	listFn   func(ctx context.Context) ([]project.Project, error)
	getFn    func(ctx context.Context, id string) (project.Project, error)
	updateFn func(ctx context.Context, id string, req project.Request) (project.Project, error)
	deleteFn func(ctx context.Context, id string) error
}

func (f *fakeProjectService) Create(ctx context.Context, req project.Request) (project.Project, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}
	return project.Project{}, nil
}

func (f *fakeProjectService) List(ctx context.Context) ([]project.Project, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return []project.Project{}, nil
}

func (f *fakeProjectService) Get(ctx context.Context, id string) (project.Project, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return project.Project{}, nil
}

func (f *fakeProjectService) Update(ctx context.Context, id string, req project.Request) (project.Project, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}
	return project.Project{}, nil
}

func (f *fakeProjectService) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

type fakeItemService struct {
	createFn func(ctx context.Context, projectID string, req qtoitem.Request) (qtoitem.Item, error)
	listFn   func(ctx context.Context, projectID string) ([]qtoitem.Item, error)
	updateFn func(ctx context.Context, projectID, itemID string, req qtoitem.Request) (qtoitem.Item, error)
	deleteFn func(ctx context.Context, projectID, itemID string) error
}

func (f *fakeItemService) Create(ctx context.Context, projectID string, req qtoitem.Request) (qtoitem.Item, error) {
	if f.createFn != nil {
		return f.createFn(ctx, projectID, req)
	}
	return qtoitem.Item{}, nil
}

func (f *fakeItemService) List(ctx context.Context, projectID string) ([]qtoitem.Item, error) {
	if f.listFn != nil {
		return f.listFn(ctx, projectID)
	}
	return []qtoitem.Item{}, nil
}

func (f *fakeItemService) Update(ctx context.Context, projectID, itemID string, req qtoitem.Request) (qtoitem.Item, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, projectID, itemID, req)
	}
	return qtoitem.Item{}, nil
}

func (f *fakeItemService) Delete(ctx context.Context, projectID, itemID string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, projectID, itemID)
	}
	return nil
}

// small helper which returns a gin engine with one handler mounted
func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h)

	return r
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type errorEnvelope struct {
	Error handlers.APIError `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) handlers.APIError {
	t.Helper()

	var env errorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode error envelope: %v body=%s", err, w.Body.String())
	}
	return env.Error
}

func str(s string) *string { return &s }

func TestCreateProjectHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		createFn   func(ctx context.Context, req project.Request) (project.Project, error)
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name: "created",
			body: `{"projectName":"Tower A","projectNumber":"T-1"}`,
			createFn: func(ctx context.Context, req project.Request) (project.Project, error) {
				return project.Project{ID: "p-1", Name: req.Name, Number: str(req.Number), Status: project.StatusPlanning}, nil
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "bad date format rejected at binding",
			body:       `{"projectName":"Tower A","startDate":"01/02/2024"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name: "service validation error",
			body: `{"projectName":""}`,
			createFn: func(ctx context.Context, req project.Request) (project.Project, error) {
				return project.Project{}, apperr.Validation("projectName", "Project Name is required.")
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
			wantMsg:    "Project Name is required.",
		},
		{
			name: "duplicate number",
			body: `{"projectName":"Tower B","projectNumber":"T-1"}`,
			createFn: func(ctx context.Context, req project.Request) (project.Project, error) {
				return project.Project{}, apperr.Conflict("projectNumber", "Project Number must be unique.")
			},
			wantStatus: http.StatusConflict,
			wantCode:   "conflict",
			wantMsg:    "Project Number must be unique.",
		},
		{
			name: "storage failure does not leak",
			body: `{"projectName":"Tower C"}`,
			createFn: func(ctx context.Context, req project.Request) (project.Project, error) {
				return project.Project{}, apperr.Storage("Failed to create project due to a server error.", errors.New("pq: connection refused"))
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
			wantMsg:    "Failed to create project due to a server error.",
		},
		{
			name: "unclassified error gets generic message",
			body: `{"projectName":"Tower D"}`,
			createFn: func(ctx context.Context, req project.Request) (project.Project, error) {
				return project.Project{}, errors.New("dial tcp 10.0.0.3:5432: i/o timeout")
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
			wantMsg:    "Something went wrong. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewProjectsHandler(&fakeProjectService{createFn: tt.createFn})
			r := setupRouter(http.MethodPost, "/projects", h.CreateProject)

			w := doJSON(r, http.MethodPost, "/projects", tt.body)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d body=%s", tt.wantStatus, w.Code, w.Body.String())
			}

			if tt.wantCode == "" {
				return
			}

			apiErr := decodeError(t, w)
			if apiErr.Code != tt.wantCode {
				t.Fatalf("expected code %q, got %q", tt.wantCode, apiErr.Code)
			}
			if tt.wantMsg != "" && apiErr.Message != tt.wantMsg {
				t.Fatalf("expected message %q, got %q", tt.wantMsg, apiErr.Message)
			}
			if strings.Contains(w.Body.String(), "connection refused") || strings.Contains(w.Body.String(), "10.0.0.3") {
				t.Fatalf("diagnostic detail leaked: %s", w.Body.String())
			}
		})
	}
}

func TestProjectHandlers_StatusMapping(t *testing.T) {
	svc := &fakeProjectService{
		getFn: func(ctx context.Context, id string) (project.Project, error) {
			return project.Project{}, apperr.NotFound("Project not found.")
		},
		updateFn: func(ctx context.Context, id string, req project.Request) (project.Project, error) {
			return project.Project{}, apperr.Authorization("You do not have permission to update this project.")
		},
		deleteFn: func(ctx context.Context, id string) error {
			return apperr.Authentication("User not authenticated. Please login.")
		},
	}
	h := handlers.NewProjectsHandler(svc)

	r := gin.New()
	r.GET("/projects/:id", h.GetProject)
	r.PUT("/projects/:id", h.UpdateProject)
	r.DELETE("/projects/:id", h.DeleteProject)

	if w := doJSON(r, http.MethodGet, "/projects/x", ""); w.Code != http.StatusNotFound {
		t.Fatalf("get: expected 404, got %d", w.Code)
	}
	if w := doJSON(r, http.MethodPut, "/projects/x", `{"projectName":"n"}`); w.Code != http.StatusForbidden {
		t.Fatalf("update: expected 403, got %d", w.Code)
	}
	if w := doJSON(r, http.MethodDelete, "/projects/x", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("delete: expected 401, got %d", w.Code)
	}
}

func TestListProjectsETag(t *testing.T) {
	svc := &fakeProjectService{listFn: func(ctx context.Context) ([]project.Project, error) {
		return []project.Project{{ID: "p-1", Name: "Tower"}}, nil
	}}
	r := setupRouter(http.MethodGet, "/projects", handlers.NewProjectsHandler(svc).ListProjects)

	w := doJSON(r, http.MethodGet, "/projects", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("expected ETag header")
	}

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", w.Code)
	}
}

func TestItemHandlers(t *testing.T) {
	var gotProject, gotItem string

	svc := &fakeItemService{
		listFn: func(ctx context.Context, projectID string) ([]qtoitem.Item, error) {
			total := 1500.0
			return []qtoitem.Item{{ID: "i-1", ProjectID: projectID, Description: "Concrete", TotalCost: &total}, {ID: "i-2", ProjectID: projectID, Description: "TBD"}}, nil
		},
		updateFn: func(ctx context.Context, projectID, itemID string, req qtoitem.Request) (qtoitem.Item, error) {
			gotProject, gotItem = projectID, itemID
			return qtoitem.Item{ID: itemID, ProjectID: projectID, Description: req.Description}, nil
		},
		createFn: func(ctx context.Context, projectID string, req qtoitem.Request) (qtoitem.Item, error) {
			return qtoitem.Item{}, apperr.Authorization("You do not have permission to add items to this project.")
		},
	}
	h := handlers.NewItemsHandler(svc)

	r := gin.New()
	r.GET("/projects/:id/items", h.ListItems)
	r.POST("/projects/:id/items", h.CreateItem)
	r.PUT("/projects/:id/items/:itemId", h.UpdateItem)

	w := doJSON(r, http.MethodGet, "/projects/p-1/items", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}

	var list struct {
		Count              int     `json:"count"`
		TotalEstimatedCost float64 `json:"totalEstimatedCost"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Count != 2 || list.TotalEstimatedCost != 1500 {
		t.Fatalf("unexpected list summary: %+v", list)
	}

	w = doJSON(r, http.MethodPut, "/projects/p-1/items/i-9", `{"itemDescription":"Rebar","quantity":2,"unitRate":3}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d body=%s", w.Code, w.Body.String())
	}
	if gotProject != "p-1" || gotItem != "i-9" {
		t.Fatalf("update routed to wrong ids: project=%q item=%q", gotProject, gotItem)
	}

	w = doJSON(r, http.MethodPost, "/projects/p-1/items", `{"itemDescription":"x"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("create: expected 403, got %d", w.Code)
	}
}
