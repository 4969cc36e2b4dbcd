package session

// Geometry describes surface placement as a fraction of the workspace.
// Lines pins an exact content height for the small loading state; when it is
// zero, HeightPct applies instead.
type Geometry struct {
	WidthPct  int
	HeightPct int
	Lines     int
}

// Surface is a transient on-screen region the controller renders into. Every
// access is expected to be liveness-checked by the caller via Alive; a
// destroyed surface reports Alive() == false forever, which is what makes
// late spinner ticks and completion renders structurally harmless.
type Surface interface {
	Alive() bool
	Destroy()
	Lines() []string
	SetLines(lines []string)
	Resize(g Geometry)
	SetKind(kind string)
	Meta() string
	SetMeta(meta string)
}

// Workspace is the host that provides surfaces and persistent views. The TUI
// implements it for real; tests substitute a fake.
type Workspace interface {
	NewSurface(g Geometry) Surface
	OpenView(lines []string, kind string)
	Warn(msg string)
}
