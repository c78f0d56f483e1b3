package plugin

import (
	"errors"
	"fmt"
)

var (
	ErrRegistryClosed     = errors.New("plugin registry is shut down")
	ErrDuplicateProcessor = errors.New("duplicate processor id")
	ErrUnknownPlugin      = errors.New("unknown plugin")
)

// ProcessorError reports a processor that failed or panicked. It aborts the
// whole run; callers must not persist anything derived from the text.
type ProcessorError struct {
	ProcessorID string
	Err         error
}

func (e *ProcessorError) Error() string {
	return fmt.Sprintf("processor %q failed: %v", e.ProcessorID, e.Err)
}

func (e *ProcessorError) Unwrap() error { return e.Err }

// CapabilityViolation reports a plugin reaching for something its capability
// handle does not grant.
type CapabilityViolation struct {
	Plugin     string
	Capability string
	Reason     string
}

func (e *CapabilityViolation) Error() string {
	return fmt.Sprintf("plugin %q: capability %q denied: %s", e.Plugin, e.Capability, e.Reason)
}
