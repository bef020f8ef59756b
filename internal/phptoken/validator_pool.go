package phptoken

import (
	"context"
	"sync"
)

// ValidatorPool gives each Validate call its own Validator, so one pool can
// serve parallel workers.
type ValidatorPool struct {
	pool sync.Pool
}

// NewValidatorPool creates an empty pool.
func NewValidatorPool() *ValidatorPool {
	return &ValidatorPool{pool: sync.Pool{New: func() any { return NewValidator() }}}
}

// Validate checks src with a pooled Validator.
func (p *ValidatorPool) Validate(ctx context.Context, src []byte) error {
	v := p.pool.Get().(*Validator)
	defer p.pool.Put(v)
	return v.Validate(ctx, src)
}
