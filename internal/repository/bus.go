package repository

// MessageBus publishes committed-purchase events to whichever provider is
// configured (NATS or gRPC).
type MessageBus interface {
	Publish(topic string, data []byte) error
}
