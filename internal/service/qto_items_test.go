package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/geocoder89/qtohub/internal/apperr"
	"github.com/geocoder89/qtohub/internal/domain/project"
	"github.com/geocoder89/qtohub/internal/domain/qtoitem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemCreateComputesTotal(t *testing.T) {
	projects, items, _ := newServices(t)

	p, err := projects.Create(as(alice), project.Request{Name: "Slab"})
	require.NoError(t, err)

	it, err := items.Create(as(alice), p.ID, qtoitem.Request{
		CSICode:     "03 30 00",
		Description: "Concrete slab",
		Quantity:    f(10),
		Unit:        "CY",
		UnitRate:    f(150),
	})
	require.NoError(t, err)
	require.NotNil(t, it.TotalCost)
	assert.Equal(t, 1500.0, *it.TotalCost)
	assert.Equal(t, alice.ID, it.CreatedByID)

	noRate, err := items.Create(as(alice), p.ID, qtoitem.Request{Description: "Unknown rate", Quantity: f(10)})
	require.NoError(t, err)
	assert.Nil(t, noRate.TotalCost)
}

func TestItemCreateValidation(t *testing.T) {
	projects, items, _ := newServices(t)

	p, err := projects.Create(as(alice), project.Request{Name: "Slab"})
	require.NoError(t, err)

	_, err = items.Create(as(alice), p.ID, qtoitem.Request{Description: "  "})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = items.Create(as(alice), "missing-project", qtoitem.Request{Description: "x"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestItemCreateRejectsNonFiniteNumbers(t *testing.T) {
	projects, items, store := newServices(t)

	p, err := projects.Create(as(alice), project.Request{Name: "Slab"})
	require.NoError(t, err)

	_, err = items.Create(as(alice), p.ID, qtoitem.Request{Description: "Overflow", Quantity: f(1e200), UnitRate: f(1e200)})
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "unitRate", apperr.FieldOf(err))
	assert.Equal(t, "Total cost is out of range.", apperr.MessageOf(err))

	_, err = items.Create(as(alice), p.ID, qtoitem.Request{Description: "NaN qty", Quantity: f(math.NaN())})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = items.Create(as(alice), p.ID, qtoitem.Request{Description: "Inf rate", UnitRate: f(math.Inf(1))})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	ok, err := items.Create(as(alice), p.ID, qtoitem.Request{Description: "Fine", Quantity: f(2), UnitRate: f(3)})
	require.NoError(t, err)

	_, err = items.Update(as(alice), p.ID, ok.ID, qtoitem.Request{Description: "Fine", Quantity: f(1e300), UnitRate: f(1e10)})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	stored, err := store.Items.ListByProject(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 6.0, *stored[0].TotalCost)
}

func TestItemCreateOnForeignProjectDenied(t *testing.T) {
	projects, items, _ := newServices(t)

	p, err := projects.Create(as(alice), project.Request{Name: "Alice's"})
	require.NoError(t, err)

	_, err = items.Create(as(bob), p.ID, qtoitem.Request{Description: "sneaky"})
	assert.ErrorIs(t, err, apperr.ErrAuthorization)

	_, err = items.List(as(bob), p.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestItemListNewestFirst(t *testing.T) {
	projects, items, _ := newServices(t)

	p, err := projects.Create(as(alice), project.Request{Name: "Slab"})
	require.NoError(t, err)

	for _, d := range []string{"first", "second", "third"} {
		_, err := items.Create(as(alice), p.ID, qtoitem.Request{Description: d, IsBOQItem: d == "second"})
		require.NoError(t, err)
	}

	list, err := items.List(as(alice), p.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].Description)
	assert.True(t, list[1].IsBOQItem)
	assert.Equal(t, "first", list[2].Description)
}

// Items use the broader three-way rule: an item's author may edit it even
// without owning the project.
func TestItemModifyThreeWayPolicy(t *testing.T) {
	projects, items, st := newServices(t)

	p, err := projects.Create(as(alice), project.Request{Name: "Alice's"})
	require.NoError(t, err)

	// an item authored by bob inside alice's project, e.g. written before
	// ownership rules tightened or by an admin import acting for bob
	bobsItem := qtoitem.NewFromRequest(p.ID, qtoitem.Request{Description: "Bob's line"}, bob.ID)
	require.NoError(t, st.Items.Insert(context.Background(), bobsItem))

	updated, err := items.Update(as(bob), bobsItem.ProjectID, bobsItem.ID, qtoitem.Request{Description: "Bob's line", Quantity: f(4), UnitRate: f(2.5)})
	require.NoError(t, err)
	require.NotNil(t, updated.TotalCost)
	assert.Equal(t, 10.0, *updated.TotalCost)
	assert.Equal(t, bob.ID, updated.CreatedByID)
	assert.Equal(t, p.ID, updated.ProjectID)

	// project owner may edit any item in the project
	_, err = items.Update(as(alice), bobsItem.ProjectID, bobsItem.ID, qtoitem.Request{Description: "Owner edit"})
	require.NoError(t, err)

	// a stranger may not
	carol := bob
	carol.ID = "carol"
	_, err = items.Update(as(carol), bobsItem.ProjectID, bobsItem.ID, qtoitem.Request{Description: "nope"})
	assert.ErrorIs(t, err, apperr.ErrAuthorization)
	assert.ErrorIs(t, items.Delete(as(carol), bobsItem.ProjectID, bobsItem.ID), apperr.ErrAuthorization)

	require.NoError(t, items.Delete(as(bob), bobsItem.ProjectID, bobsItem.ID))
	assert.ErrorIs(t, items.Delete(as(bob), bobsItem.ProjectID, bobsItem.ID), apperr.ErrNotFound)
}

func TestItemUpdateValidatesAndRecomputes(t *testing.T) {
	projects, items, _ := newServices(t)

	p, err := projects.Create(as(alice), project.Request{Name: "Slab"})
	require.NoError(t, err)
	it, err := items.Create(as(alice), p.ID, qtoitem.Request{Description: "x", Quantity: f(2), UnitRate: f(2)})
	require.NoError(t, err)

	_, err = items.Update(as(alice), it.ProjectID, it.ID, qtoitem.Request{Description: ""})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	updated, err := items.Update(as(alice), it.ProjectID, it.ID, qtoitem.Request{Description: "x", Quantity: nil, UnitRate: f(2)})
	require.NoError(t, err)
	assert.Nil(t, updated.TotalCost)
}

type failingItemStore struct {
	ItemStore
}

func (failingItemStore) Insert(context.Context, qtoitem.Item) error {
	return errors.New("disk full")
}

func TestItemCreateStorageFailure(t *testing.T) {
	projects, _, st := newServices(t)
	items := NewItems(failingItemStore{st.Items}, st.Projects, quietLogger())

	p, err := projects.Create(as(alice), project.Request{Name: "Slab"})
	require.NoError(t, err)

	_, err = items.Create(as(alice), p.ID, qtoitem.Request{Description: "x"})
	assert.ErrorIs(t, err, apperr.ErrStorage)
	assert.Equal(t, "Failed to add QTO Item due to a server error.", apperr.MessageOf(err))
}

func TestItemModifyScopedToProject(t *testing.T) {
	projects, items, _ := newServices(t)

	one, err := projects.Create(as(alice), project.Request{Name: "One"})
	require.NoError(t, err)
	two, err := projects.Create(as(alice), project.Request{Name: "Two"})
	require.NoError(t, err)

	it, err := items.Create(as(alice), one.ID, qtoitem.Request{Description: "Stairs"})
	require.NoError(t, err)

	_, err = items.Update(as(alice), two.ID, it.ID, qtoitem.Request{Description: "moved?"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, items.Delete(as(alice), two.ID, it.ID), apperr.ErrNotFound)

	require.NoError(t, items.Delete(as(alice), one.ID, it.ID))
}
