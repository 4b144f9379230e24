package discovery

import (
	"context"
	"time"

	"lports/listen"
)

// Entry is what one instance reported during a discovery pass.
type Entry struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Type       string        `json:"type"`
	Ports      []listen.Port `json:"ports"`
	Violations []string      `json:"violations,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// Snapshot is the result of one discovery pass.
type Snapshot struct {
	Taken   time.Time `json:"taken"`
	Entries []Entry   `json:"components"`
}

// PortCount returns the number of ports across all entries.
func (s Snapshot) PortCount() int {
	n := 0
	for _, e := range s.Entries {
		n += len(e.Ports)
	}
	return n
}

// Violations returns the number of conformance violations.
func (s Snapshot) Violations() int {
	n := 0
	for _, e := range s.Entries {
		n += len(e.Violations)
	}
	return n
}

// ── Diff ─────────────────────────────────────────────────────────────

// PortChange is one port that appeared, disappeared or changed between
// two snapshots.  Before is nil for added ports, After for removed ones.
type PortChange struct {
	Component string       `json:"component"`
	Before    *listen.Port `json:"before,omitempty"`
	After     *listen.Port `json:"after,omitempty"`
}

// Changes groups the differences between two snapshots.
type Changes struct {
	Added   []PortChange `json:"added"`
	Removed []PortChange `json:"removed"`
	Changed []PortChange `json:"changed"`
}

// Empty reports whether nothing changed.
func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Changed) == 0
}

type portRef struct {
	component string
	port      listen.Port
}

func index(s Snapshot) (map[string]portRef, []string) {
	m := map[string]portRef{}
	var order []string
	for _, e := range s.Entries {
		for _, p := range e.Ports {
			k := e.Name + "\x00" + p.Key()
			if _, dup := m[k]; dup {
				continue
			}
			m[k] = portRef{component: e.Name, port: p}
			order = append(order, k)
		}
	}
	return m, order
}

// Diff compares two snapshots.  Ports are matched by component name
// and port key; a matched port whose number or protocols differ is
// reported as changed.
func Diff(prev, next Snapshot) Changes {
	before, beforeOrder := index(prev)
	after, afterOrder := index(next)

	c := Changes{Added: []PortChange{}, Removed: []PortChange{}, Changed: []PortChange{}}
	for _, k := range afterOrder {
		a := after[k]
		b, ok := before[k]
		switch {
		case !ok:
			c.Added = append(c.Added, PortChange{Component: a.component, After: &a.port})
		case !b.port.Equal(a.port):
			c.Changed = append(c.Changed, PortChange{Component: a.component, Before: &b.port, After: &a.port})
		}
	}
	for _, k := range beforeOrder {
		if _, ok := after[k]; !ok {
			b := before[k]
			c.Removed = append(c.Removed, PortChange{Component: b.component, Before: &b.port})
		}
	}
	return c
}

// ── Watch ────────────────────────────────────────────────────────────

// Watch runs a discovery pass every interval and calls fn with each
// snapshot and its changes against the previous one.  The first call
// reports every port as added.  Watch returns nil when ctx ends.
func (h *Host) Watch(ctx context.Context, interval time.Duration, fn func(Snapshot, Changes)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var prev Snapshot
	for {
		snap, err := h.Discover(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		fn(snap, Diff(prev, snap))
		prev = snap

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
