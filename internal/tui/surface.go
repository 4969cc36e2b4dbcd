package tui

import "github.com/jask/gemq/internal/session"

// overlaySurface is the TUI's transient floating surface. The destroyed
// flag is the liveness token every session action checks; once set it never
// clears, so a stale reference can only ever no-op.
type overlaySurface struct {
	destroyed bool
	lines     []string
	geo       session.Geometry
	kind      string
	meta      string
}

func (s *overlaySurface) Alive() bool             { return !s.destroyed }
func (s *overlaySurface) Destroy()                { s.destroyed = true }
func (s *overlaySurface) Lines() []string         { return s.lines }
func (s *overlaySurface) SetLines(lines []string) { s.lines = lines }
func (s *overlaySurface) Resize(g session.Geometry) { s.geo = g }
func (s *overlaySurface) SetKind(kind string)     { s.kind = kind }
func (s *overlaySurface) Meta() string            { return s.meta }
func (s *overlaySurface) SetMeta(meta string)     { s.meta = meta }
