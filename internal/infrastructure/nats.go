package infrastructure

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sethvargo/go-retry"
)

func connectNats(url string) (*nats.Conn, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var nc *nats.Conn
	backoff := retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		conn, err := nats.Connect(url)
		if err != nil {
			return retry.RetryableError(err)
		}
		nc = conn
		return nil
	})
	if err != nil {
		return nil, err
	}

	return nc, nil
}
