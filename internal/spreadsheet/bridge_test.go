package spreadsheet

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/geocoder89/qtohub/internal/access"
	"github.com/geocoder89/qtohub/internal/actorctx"
	"github.com/geocoder89/qtohub/internal/domain/project"
	"github.com/geocoder89/qtohub/internal/domain/qtoitem"
	"github.com/geocoder89/qtohub/internal/repo/memory"
	"github.com/geocoder89/qtohub/internal/service"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var (
	owner    = access.Actor{ID: "owner-1", Username: "owner@example.com", Role: access.RoleProjectManager}
	stranger = access.Actor{ID: "other-1", Username: "other@example.com", Role: access.RoleDataEntry}
)

func as(actor access.Actor) context.Context {
	return actorctx.WithActor(context.Background(), actor)
}

type fixture struct {
	projects *service.Projects
	items    *service.Items
	bridge   *Bridge
	rows     *countingObserver
}

type countingObserver struct {
	counts map[string]int
}

func (o *countingObserver) ObserveImportRow(result string) {
	o.counts[result]++
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st := memory.NewStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	projects := service.NewProjects(st.Projects, log)
	items := service.NewItems(st.Items, st.Projects, log)
	obs := &countingObserver{counts: map[string]int{}}

	b := NewBridge(projects, items, obs, log)
	b.now = func() time.Time { return time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC) }

	return &fixture{projects: projects, items: items, bridge: b, rows: obs}
}

func (fx *fixture) project(t *testing.T, name string) project.Project {
	t.Helper()

	p, err := fx.projects.Create(as(owner), project.Request{Name: name, Number: name + "-no", ClientName: "ACME"})
	require.NoError(t, err)

	return p
}

func num(v float64) *float64 { return &v }

// workbook builds an xlsx with a single sheet holding rows.
func workbook(t *testing.T, rows ...[]interface{}) *bytes.Reader {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &rows[i]))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	return bytes.NewReader(buf.Bytes())
}

// flakyItems fails Create for one description and delegates the rest.
type flakyItems struct {
	ItemService
	failOn string
}

func (s flakyItems) Create(ctx context.Context, projectID string, req qtoitem.Request) (qtoitem.Item, error) {
	if req.Description == s.failOn {
		return qtoitem.Item{}, errors.New("connection reset by peer")
	}
	return s.ItemService.Create(ctx, projectID, req)
}
