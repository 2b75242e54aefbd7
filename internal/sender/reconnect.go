package sender

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DialFunc opens the underlying transport connection (TCP, optionally
// behind a proxy) to one datacenter endpoint.
type DialFunc func(ctx context.Context) (net.Conn, error)

// dialWithBackoff retries dial using an exponential backoff schedule,
// honoring ctx cancellation, until it either succeeds or ctx is done.
func dialWithBackoff(ctx context.Context, dial DialFunc) (net.Conn, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = 0 // retry indefinitely; the caller's ctx is the only cutoff

	var conn net.Conn
	op := func() error {
		c, err := dial(ctx)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, fmt.Errorf("sender: dial: %w", err)
	}
	return conn, nil
}
