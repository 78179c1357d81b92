// Package orders keeps the device-local pharmacy order book. Orders
// are created from doctor prescription replies and advanced by the
// pharmacy role; the order list is shared across roles on the device,
// not scoped per patient.
package orders

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ruralcare/telemed/internal/kvstore"
	"github.com/ruralcare/telemed/internal/model"
	"github.com/ruralcare/telemed/pkg/logger"
)

type Book struct {
	store  kvstore.Store
	logger *logger.Logger
	now    func() time.Time
}

func NewBook(store kvstore.Store, log *logger.Logger) *Book {
	if log == nil {
		log = logger.Nop()
	}
	return &Book{store: store, logger: log.WithComponent("orders"), now: time.Now}
}

// Create appends a new order in RECEIVED state and persists it.
func (b *Book) Create(patientName, medication, instruction, prescribedBy string) model.PharmacyOrder {
	now := b.now()
	order := model.PharmacyOrder{
		ID:           fmt.Sprintf("ORD-%d", now.UnixNano()),
		PatientName:  patientName,
		Medication:   medication,
		Instruction:  instruction,
		Timestamp:    now.UnixMilli(),
		Status:       model.OrderStatusReceived,
		PrescribedBy: prescribedBy,
	}
	all := b.List()
	all = append(all, order)
	b.persist(all)
	return order
}

// List returns every order, oldest first. Malformed state reads empty.
func (b *Book) List() []model.PharmacyOrder {
	raw, ok := b.store.Get(kvstore.KeyPharmacyOrders)
	if !ok {
		return []model.PharmacyOrder{}
	}
	var all []model.PharmacyOrder
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		b.logger.Error(err, "malformed order list, treating as empty")
		return []model.PharmacyOrder{}
	}
	return all
}

// Advance moves one order along the fulfillment flow. Skipping steps or
// moving backwards is rejected.
func (b *Book) Advance(orderID string, to model.OrderStatus) (model.PharmacyOrder, error) {
	all := b.List()
	for i := range all {
		if all[i].ID != orderID {
			continue
		}
		if err := all[i].Advance(to); err != nil {
			return model.PharmacyOrder{}, err
		}
		b.persist(all)
		return all[i], nil
	}
	return model.PharmacyOrder{}, fmt.Errorf("order %s not found", orderID)
}

func (b *Book) persist(all []model.PharmacyOrder) {
	data, err := json.Marshal(all)
	if err != nil {
		b.logger.Error(err, "failed to marshal order list")
		return
	}
	b.store.Set(kvstore.KeyPharmacyOrders, string(data))
}
