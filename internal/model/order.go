package model

import "fmt"

type OrderStatus string

const (
	OrderStatusReceived OrderStatus = "RECEIVED"
	OrderStatusAccepted OrderStatus = "ACCEPTED"
	OrderStatusReady    OrderStatus = "READY"
	OrderStatusPickedUp OrderStatus = "PICKED_UP"
)

// PharmacyOrder is created when a doctor submits a prescription reply
// and advanced by the pharmacy role. Patients and doctors never mutate
// it after creation.
type PharmacyOrder struct {
	ID           string      `json:"id"`
	PatientName  string      `json:"patientName"`
	Medication   string      `json:"medication"`
	Instruction  string      `json:"instruction"`
	Timestamp    int64       `json:"timestamp"`
	Status       OrderStatus `json:"status"`
	PrescribedBy string      `json:"prescribedBy,omitempty"`
}

var orderNext = map[OrderStatus]OrderStatus{
	OrderStatusReceived: OrderStatusAccepted,
	OrderStatusAccepted: OrderStatusReady,
	OrderStatusReady:    OrderStatusPickedUp,
}

// NextStatus returns the status that follows s in the fulfillment flow.
func (s OrderStatus) NextStatus() (OrderStatus, bool) {
	next, ok := orderNext[s]
	return next, ok
}

// Advance moves the order one step along RECEIVED -> ACCEPTED -> READY
// -> PICKED_UP. Any other transition is rejected.
func (o *PharmacyOrder) Advance(to OrderStatus) error {
	next, ok := o.Status.NextStatus()
	if !ok {
		return fmt.Errorf("order %s is already %s", o.ID, o.Status)
	}
	if to != next {
		return fmt.Errorf("order %s cannot go from %s to %s", o.ID, o.Status, to)
	}
	o.Status = to
	return nil
}
