package oauth

import "sync/atomic"

// atomicSnapshot publishes/reads a *Snapshot without a lock, so readers
// never block behind a reload in progress (spec §4.4: "in-flight OAuth
// exchanges using the old snapshot complete unaffected").
type atomicSnapshot struct {
	p atomic.Pointer[Snapshot]
}

func (a *atomicSnapshot) store(s *Snapshot) { a.p.Store(s) }

func (a *atomicSnapshot) load() *Snapshot { return a.p.Load() }
