package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Run applies the registry's processors to the texts of one import batch.
// Process may be called from several goroutines. A processor caught using its
// capability handle is skipped for every later Process call on the same Run.
type Run struct {
	ID string

	reg   *Registry
	log   *slog.Logger
	steps []step

	mu      sync.Mutex
	skipped map[string]*CapabilityViolation
}

// Process feeds text through every processor that supports lang, in
// registration order. The first failing processor aborts with a
// *ProcessorError and no output.
func (run *Run) Process(ctx context.Context, lang, text string) (string, error) {
	for _, s := range run.steps {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if run.reg.closed.Load() {
			return "", ErrRegistryClosed
		}
		id := s.proc.ID()
		if !Supports(s.proc, lang) || run.isSkipped(id) {
			continue
		}

		s.handle.enter(id)
		before := s.handle.violations.Load()
		out, err := call(s.proc, text)
		violated := s.handle.violations.Load() != before
		s.handle.leave()
		if violated {
			v := &CapabilityViolation{Plugin: s.handle.plugin, Capability: CapRegister, Reason: fmt.Sprintf("used by processor %q while processing", id)}
			run.skip(id, v)
			continue
		}
		if err != nil {
			run.log.Error("processor failed", "processor", id, "language", lang, "error", err)
			return "", &ProcessorError{ProcessorID: id, Err: err}
		}
		text = out
	}
	return text, nil
}

// Skipped returns the processors disabled for this run and why.
func (run *Run) Skipped() map[string]*CapabilityViolation {
	run.mu.Lock()
	defer run.mu.Unlock()
	out := make(map[string]*CapabilityViolation, len(run.skipped))
	for k, v := range run.skipped {
		out[k] = v
	}
	return out
}

func (run *Run) isSkipped(id string) bool {
	run.mu.Lock()
	defer run.mu.Unlock()
	_, ok := run.skipped[id]
	return ok
}

func (run *Run) skip(id string, v *CapabilityViolation) {
	run.mu.Lock()
	defer run.mu.Unlock()
	if _, ok := run.skipped[id]; ok {
		return
	}
	run.skipped[id] = v
	run.log.Warn("processor disabled for run", "processor", id, "error", v)
}

func call(p Processor, text string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return p.ProcessText(text)
}
