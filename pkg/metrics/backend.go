package metrics

import (
	"context"
	"time"

	"github.com/dmitrymomot/webauth/pkg/storage"
)

// Ensure instrumentedBackend implements storage.Backend.
var _ storage.Backend = (*instrumentedBackend)(nil)

type instrumentedBackend struct {
	next    storage.Backend
	metrics *Metrics
	name    string
}

// InstrumentBackend wraps b so that every call is counted and timed under
// the given backend label. Results and errors pass through untouched.
func InstrumentBackend(b storage.Backend, m *Metrics, name string) storage.Backend {
	if m == nil {
		return b
	}
	return &instrumentedBackend{next: b, metrics: m, name: name}
}

func (b *instrumentedBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	data, found, err := b.next.Get(ctx, key)
	b.observe("get", start, getResult(found, err))
	return data, found, err
}

func (b *instrumentedBackend) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	op := "set"
	if data == nil {
		op = "delete"
	}

	start := time.Now()
	err := b.next.Set(ctx, key, data, ttl)
	result := "ok"
	if err != nil {
		result = "error"
	}
	b.observe(op, start, result)
	return err
}

func (b *instrumentedBackend) observe(op string, start time.Time, result string) {
	b.metrics.BackendDuration.WithLabelValues(b.name, op).Observe(time.Since(start).Seconds())
	b.metrics.BackendOps.WithLabelValues(b.name, op, result).Inc()
}

func getResult(found bool, err error) string {
	switch {
	case err != nil:
		return "error"
	case found:
		return "hit"
	default:
		return "miss"
	}
}
