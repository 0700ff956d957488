// Package logsource implements the Log-Source Registry (C8): a static
// bijection between internal backing-store names and user-facing display
// names, consumed by log-reader collaborators so API surfaces use display
// names exclusively. Grounded on the shape of the teacher's
// shared/logging multi-stream loggers (LogControlPlane/LogSecurity/...),
// each of which targets a distinct backing table this registry would name.
package logsource

// Source describes one known log stream.
type Source struct {
	InternalName string
	DisplayName  string
}

// Registry holds the static bijection. Zero value is usable (empty map);
// construct with New(defaultSources) for the module's built-in set.
type Registry struct {
	toDisplay  map[string]string
	toInternal map[string]string
}

// defaultSources mirrors the teacher's distinct ClickHouse-backed log
// streams (control-plane, security, AIOps, pipeline), renamed to this
// module's domain-neutral display names.
var defaultSources = []Source{
	{InternalName: "control_plane_logs", DisplayName: "insforge.logs"},
	{InternalName: "security_events", DisplayName: "insforge.audit"},
	{InternalName: "aiops_logs", DisplayName: "insforge.ai"},
	{InternalName: "pipeline_logs", DisplayName: "insforge.functions"},
}

// New builds a Registry from sources, falling back to the module's
// built-in defaults when sources is empty.
func New(sources []Source) *Registry {
	if len(sources) == 0 {
		sources = defaultSources
	}
	r := &Registry{
		toDisplay:  make(map[string]string, len(sources)),
		toInternal: make(map[string]string, len(sources)),
	}
	for _, s := range sources {
		r.toDisplay[s.InternalName] = s.DisplayName
		r.toInternal[s.DisplayName] = s.InternalName
	}
	return r
}

// ToDisplay translates an internal name to its display name, identity on
// unknown input (spec §4.8, Testable Property 9).
func (r *Registry) ToDisplay(internal string) string {
	if d, ok := r.toDisplay[internal]; ok {
		return d
	}
	return internal
}

// ToInternal translates a display name to its internal name, identity on
// unknown input.
func (r *Registry) ToInternal(display string) string {
	if i, ok := r.toInternal[display]; ok {
		return i
	}
	return display
}
