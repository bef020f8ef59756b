//go:build !cgo

package phptoken

import "context"

// Validator is a no-op for non-CGO builds; only the lexer checks syntax.
type Validator struct{}

// NewValidator returns nil when CGO is disabled.
func NewValidator() *Validator {
	return nil
}

// IsAvailable returns false when CGO is disabled.
func IsAvailable() bool {
	return false
}

// Validate always succeeds in non-CGO builds.
func (v *Validator) Validate(ctx context.Context, src []byte) error {
	return nil
}
