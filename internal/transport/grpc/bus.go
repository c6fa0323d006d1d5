package grpc

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Bus publishes events to a remote Ledger service over gRPC. Publishing is
// asynchronous through a bounded buffer so a slow peer never stalls the
// purchase path.
type Bus struct {
	conn   *grpc.ClientConn
	events chan busEvent
	done   chan struct{}
	once   sync.Once
}

type busEvent struct {
	topic   string
	payload []byte
}

var ErrBusFull = errors.New("grpc bus buffer is full")

// NewBusFromAddr dials the remote Ledger service and returns a Bus and a
// cleanup function.
func NewBusFromAddr(addr string, buffer int) (*Bus, func(), error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, err
	}
	b := &Bus{
		conn:   conn,
		events: make(chan busEvent, buffer),
		done:   make(chan struct{}),
	}
	go b.drain()

	cleanup := func() {
		b.once.Do(func() { close(b.events) })
		<-b.done
		_ = conn.Close()
	}
	return b, cleanup, nil
}

// Publish enqueues an event. Returns ErrBusFull instead of blocking when the
// buffer is saturated.
func (b *Bus) Publish(topic string, data []byte) error {
	select {
	case b.events <- busEvent{topic: topic, payload: data}:
		return nil
	default:
		return ErrBusFull
	}
}

func (b *Bus) drain() {
	defer close(b.done)
	for ev := range b.events {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		out := new(EventResponse)
		err := b.conn.Invoke(ctx, "/"+serviceName+"/Publish",
			&EventRequest{Topic: ev.topic, Payload: ev.payload}, out,
			grpc.ForceCodec(jsonCodec{}))
		cancel()
		if err != nil {
			slog.Error("grpc bus: publish failed", "topic", ev.topic, "error", err)
		}
	}
}
