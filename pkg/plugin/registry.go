package plugin

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/oklog/ulid/v2"
)

// Registry holds the loaded plugins and their processors in registration
// order. It is constructed once by the owning process and shut down by it.
type Registry struct {
	log *slog.Logger

	mu      sync.Mutex
	plugins []Plugin
	steps   []step
	ids     map[string]struct{}
	entropy *ulid.MonotonicEntropy
	closed  atomic.Bool
}

type step struct {
	proc   Processor
	handle *handle
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		log:     log.With("component", "plugins"),
		ids:     make(map[string]struct{}),
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// handle is the per-plugin capability object. It only accepts registrations
// while its plugin's Register call is in progress; any later use counts as a
// violation.
type handle struct {
	reg        *Registry
	plugin     string
	open       atomic.Bool
	violations atomic.Int64

	pending []Processor

	// Only one of the plugin's processors runs at a time, so a change of
	// violations during a call belongs to that processor. Calls of the same
	// processor may overlap.
	gate    sync.Mutex
	idle    *sync.Cond
	active  string
	running int
}

func newHandle(r *Registry, plugin string) *handle {
	h := &handle{reg: r, plugin: plugin}
	h.idle = sync.NewCond(&h.gate)
	return h
}

// enter blocks until no other processor of the plugin is running.
func (h *handle) enter(id string) {
	h.gate.Lock()
	for h.running > 0 && h.active != id {
		h.idle.Wait()
	}
	h.active = id
	h.running++
	h.gate.Unlock()
}

func (h *handle) leave() {
	h.gate.Lock()
	h.running--
	if h.running == 0 {
		h.active = ""
		h.idle.Broadcast()
	}
	h.gate.Unlock()
}

func (h *handle) Register(p Processor) error {
	if !h.open.Load() {
		h.violations.Add(1)
		v := &CapabilityViolation{Plugin: h.plugin, Capability: CapRegister, Reason: "registration phase is over"}
		h.reg.log.Warn("capability violation", "plugin", h.plugin, "error", v)
		return v
	}
	if p == nil || p.ID() == "" {
		return fmt.Errorf("plugin %q: processor must have an id", h.plugin)
	}
	for _, q := range h.pending {
		if q.ID() == p.ID() {
			return fmt.Errorf("%w: %q", ErrDuplicateProcessor, p.ID())
		}
	}
	h.pending = append(h.pending, p)
	return nil
}

// Load registers plugins in order. A plugin whose Register fails contributes
// no processors and stops the load.
func (r *Registry) Load(plugins ...Plugin) error {
	for _, p := range plugins {
		if err := r.load(p); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) load(p Plugin) error {
	if r.closed.Load() {
		return ErrRegistryClosed
	}
	h := newHandle(r, p.Name())
	h.open.Store(true)
	err := p.Register(h)
	h.open.Store(false)
	if err != nil {
		return fmt.Errorf("load plugin %q: %w", p.Name(), err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, proc := range h.pending {
		if _, dup := r.ids[proc.ID()]; dup {
			return fmt.Errorf("load plugin %q: %w: %q", p.Name(), ErrDuplicateProcessor, proc.ID())
		}
	}
	for _, proc := range h.pending {
		r.ids[proc.ID()] = struct{}{}
		r.steps = append(r.steps, step{proc: proc, handle: h})
		r.log.Debug("processor registered", "plugin", p.Name(), "processor", proc.ID(), "languages", proc.SupportedLanguages())
	}
	h.pending = nil
	r.plugins = append(r.plugins, p)
	return nil
}

// LoadManifest resolves each manifest entry against catalog and loads the
// resulting plugins in manifest order. Entries asking for capabilities other
// than registration are refused, logged and skipped.
func (r *Registry) LoadManifest(m Manifest, catalog Catalog) error {
	for _, e := range m.Plugins {
		if v := e.checkCapabilities(); v != nil {
			r.log.Warn("plugin skipped", "plugin", e.Name, "error", v)
			continue
		}
		factory, ok := catalog[e.Name]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownPlugin, e.Name)
		}
		p, err := factory(e.Options)
		if err != nil {
			return fmt.Errorf("configure plugin %q: %w", e.Name, err)
		}
		if len(e.Languages) > 0 {
			p = languageScope{Plugin: p, languages: e.Languages}
		}
		if err := r.load(p); err != nil {
			return err
		}
	}
	return nil
}

// Processors returns the registered processors in run order.
func (r *Registry) Processors() []Processor {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Processor, len(r.steps))
	for i, s := range r.steps {
		out[i] = s.proc
	}
	return out
}

// NewRun starts a run over the processors registered so far. Processors
// loaded afterwards do not join it.
func (r *Registry) NewRun() *Run {
	r.mu.Lock()
	id := ulid.MustNew(ulid.Now(), r.entropy).String()
	steps := append([]step(nil), r.steps...)
	r.mu.Unlock()
	return &Run{
		ID:      id,
		reg:     r,
		log:     r.log.With("run_id", id),
		steps:   steps,
		skipped: make(map[string]*CapabilityViolation),
	}
}

// Shutdown closes every plugin implementing io.Closer and empties the
// registry. Runs still holding processors fail with ErrRegistryClosed.
func (r *Registry) Shutdown() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	r.mu.Lock()
	plugins := r.plugins
	r.plugins, r.steps = nil, nil
	r.ids = make(map[string]struct{})
	r.mu.Unlock()

	var errs []error
	for i := len(plugins) - 1; i >= 0; i-- {
		c, ok := plugins[i].(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close plugin %q: %w", plugins[i].Name(), err))
		}
	}
	r.log.Debug("plugin registry shut down", "plugins", len(plugins))
	return errors.Join(errs...)
}

// languageScope narrows every processor a plugin registers to a fixed
// language set.
type languageScope struct {
	Plugin
	languages []string
}

func (s languageScope) Register(host Host) error {
	return s.Plugin.Register(scopedHost{host: host, languages: s.languages})
}

func (s languageScope) Close() error {
	if c, ok := s.Plugin.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

type scopedHost struct {
	host      Host
	languages []string
}

func (h scopedHost) Register(p Processor) error {
	return h.host.Register(scoped{Processor: p, languages: h.languages})
}
