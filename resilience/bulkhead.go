package resilience

import (
	"context"
	"errors"
	"time"
)

// ErrBulkheadFull is returned when no slot frees up within MaxWait.
var ErrBulkheadFull = errors.New("too many concurrent requests")

// BulkheadConfig caps concurrent in-flight calls to one backend.
type BulkheadConfig struct {
	// MaxConcurrent is the number of simultaneous calls. Zero disables the cap.
	MaxConcurrent int `mapstructure:"max_concurrent" yaml:"max_concurrent"`
	// MaxWait is how long a call may queue for a slot. Zero fails immediately.
	MaxWait time.Duration `mapstructure:"max_wait" yaml:"max_wait"`
}

// Bulkhead is a counting semaphore with a bounded wait.
type Bulkhead struct {
	maxWait time.Duration
	sem     chan struct{}
}

// NewBulkhead returns nil when cfg.MaxConcurrent is not positive.
func NewBulkhead(cfg BulkheadConfig) *Bulkhead {
	if cfg.MaxConcurrent <= 0 {
		return nil
	}
	return &Bulkhead{maxWait: cfg.MaxWait, sem: make(chan struct{}, cfg.MaxConcurrent)}
}

// Execute runs fn while holding a slot. A nil Bulkhead runs fn directly.
func (b *Bulkhead) Execute(ctx context.Context, fn func() error) error {
	if b == nil {
		return fn()
	}
	if err := b.acquire(ctx); err != nil {
		return err
	}
	defer func() { <-b.sem }()
	return fn()
}

func (b *Bulkhead) acquire(ctx context.Context) error {
	select {
	case b.sem <- struct{}{}:
		return nil
	default:
	}
	if b.maxWait <= 0 {
		return ErrBulkheadFull
	}

	timer := time.NewTimer(b.maxWait)
	defer timer.Stop()
	select {
	case b.sem <- struct{}{}:
		return nil
	case <-timer.C:
		return ErrBulkheadFull
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InUse returns the number of held slots.
func (b *Bulkhead) InUse() int {
	if b == nil {
		return 0
	}
	return len(b.sem)
}
