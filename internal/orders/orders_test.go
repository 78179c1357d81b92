package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruralcare/telemed/internal/kvstore"
	"github.com/ruralcare/telemed/internal/model"
)

func newTestBook() *Book {
	b := NewBook(kvstore.NewMemStore(), nil)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	b.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
	return b
}

func TestCreateAndList(t *testing.T) {
	b := newTestBook()

	order := b.Create("Asha", "Paracetamol 500mg", "Twice daily after food", "Dr. Rao")
	assert.Contains(t, order.ID, "ORD-")
	assert.Equal(t, model.OrderStatusReceived, order.Status)

	b.Create("Ravi", "ORS sachets", "As needed", "Dr. Rao")

	all := b.List()
	require.Len(t, all, 2)
	assert.Equal(t, "Asha", all[0].PatientName)
	assert.Equal(t, "Ravi", all[1].PatientName)
}

func TestAdvance_FollowsFulfillmentFlow(t *testing.T) {
	b := newTestBook()
	order := b.Create("Asha", "Paracetamol", "", "Dr. Rao")

	for _, next := range []model.OrderStatus{
		model.OrderStatusAccepted,
		model.OrderStatusReady,
		model.OrderStatusPickedUp,
	} {
		got, err := b.Advance(order.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, got.Status)
	}

	// Terminal state has no next step.
	_, err := b.Advance(order.ID, model.OrderStatusReceived)
	assert.Error(t, err)
}

func TestAdvance_RejectsSkippedSteps(t *testing.T) {
	b := newTestBook()
	order := b.Create("Asha", "Paracetamol", "", "Dr. Rao")

	_, err := b.Advance(order.ID, model.OrderStatusReady)
	assert.Error(t, err)

	// The failed advance must not be persisted.
	assert.Equal(t, model.OrderStatusReceived, b.List()[0].Status)
}

func TestAdvance_UnknownOrder(t *testing.T) {
	b := newTestBook()
	_, err := b.Advance("ORD-missing", model.OrderStatusAccepted)
	assert.Error(t, err)
}

func TestList_MalformedReadsEmpty(t *testing.T) {
	store := kvstore.NewMemStore()
	store.Set(kvstore.KeyPharmacyOrders, "][")

	b := NewBook(store, nil)
	assert.Empty(t, b.List())
}
