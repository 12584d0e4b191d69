package meta

import "fmt"

// Host is a general-purpose [Target]. It exposes the included registry at
// the type level through [Host.Meta] and per instance through
// [Instance.Meta], and stores kind-specific state as extensions.
type Host struct {
	typeMeta     func() *Registry
	instanceMeta func() *Registry
	extensions   map[string]any
	name         string
}

// NewHost creates a [Host] named name.
func NewHost(name string) *Host {
	return &Host{
		name:       name,
		extensions: map[string]any{},
	}
}

// Name returns the host's name.
func (h *Host) Name() string {
	return h.name
}

// Include adopts r as the host's metadata source. A host can include only
// one registry.
func (h *Host) Include(r *Registry) error {
	if h.typeMeta != nil {
		return fmt.Errorf("host %q: %w", h.name, ErrAlreadyIncluded)
	}

	if r == nil {
		return fmt.Errorf("%w: nil registry", ErrArgument)
	}

	return r.Include(h)
}

// SetTypeMeta implements [Target].
func (h *Host) SetTypeMeta(fn func() *Registry) {
	h.typeMeta = fn
}

// SetInstanceMeta implements [Target].
func (h *Host) SetInstanceMeta(fn func() *Registry) {
	h.instanceMeta = fn
}

// Meta returns the included registry, or nil.
func (h *Host) Meta() *Registry {
	if h.typeMeta == nil {
		return nil
	}

	return h.typeMeta()
}

// Extension implements [Extensible].
func (h *Host) Extension(key string) (any, bool) {
	v, ok := h.extensions[key]

	return v, ok
}

// SetExtension implements [Extensible].
func (h *Host) SetExtension(key string, value any) {
	h.extensions[key] = value
}

// NewInstance creates an [Instance] of the host.
func (h *Host) NewInstance() *Instance {
	return &Instance{host: h}
}

// Instance is a value of a [Host] type.
type Instance struct {
	host *Host
}

// Host returns the instance's host.
func (i *Instance) Host() *Host {
	return i.host
}

// Meta returns the registry included into the instance's host, or nil.
func (i *Instance) Meta() *Registry {
	if i.host.instanceMeta == nil {
		return nil
	}

	return i.host.instanceMeta()
}
