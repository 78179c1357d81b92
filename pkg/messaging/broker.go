package messaging

import (
	"context"
)

// Event channels published by the backend.
const (
	ChannelPacketCreated   = "packet.created"
	ChannelPacketProcessed = "packet.processed"
	ChannelDoctorMessage   = "doctor.message"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// NopBroker discards all publishes. Used when no broker is configured;
// the packet stores are authoritative either way.
type NopBroker struct{}

func NewNopBroker() *NopBroker { return &NopBroker{} }

func (NopBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	return nil
}

func (NopBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	ch := make(chan []byte)
	close(ch)
	return ch, nil
}

func (NopBroker) Close() error { return nil }
