package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jask/gemq/internal/config"
	"github.com/jask/gemq/internal/gemini"
	"github.com/jask/gemq/internal/procrun"
	"github.com/jask/gemq/internal/secrets"
)

// Phase is the lifecycle state of one request's result surface.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseDisplaying
	PhaseClosed
	PhaseExported
)

// ErrNoAPIKey aborts the pipeline before any process launch.
var ErrNoAPIKey = errors.New("api key not configured")

// kindMarkdown tags result content for rich rendering.
const kindMarkdown = "markdown"

// Controller drives one in-flight request: it owns the transient surface,
// the spinner animation state and the Loading → Displaying → {Closed,
// Exported} transitions. All methods are called from a single program loop;
// ordering, not locking, is the concurrency discipline.
type Controller struct {
	cfg   config.Config
	ws    Workspace
	keys  secrets.KeySource
	phase Phase
	surf  Surface
	frame int
}

func NewController(cfg config.Config, ws Workspace, keys secrets.KeySource) *Controller {
	return &Controller{cfg: cfg, ws: ws, keys: keys}
}

// Phase reports the current lifecycle state.
func (c *Controller) Phase() Phase { return c.phase }

// Surface returns the surface bound to the in-flight request, if any.
func (c *Controller) Surface() Surface { return c.surf }

// Begin validates the credential, builds the request payload and opens the
// small loading surface. It returns the process spec for the curl invocation;
// the caller launches it and returns control immediately. A missing key emits
// exactly one warning and sends nothing.
func (c *Controller) Begin(prompt string) (procrun.Spec, error) {
	key := strings.TrimSpace(c.keys())
	if key == "" {
		env := strings.TrimSpace(c.cfg.API.APIKeyEnv)
		if env == "" {
			env = "GEMINI_API_KEY"
		}
		c.ws.Warn(fmt.Sprintf("%s is not set — no request sent", env))
		return procrun.Spec{}, ErrNoAPIKey
	}

	body, err := gemini.NewPayload(prompt).Marshal()
	if err != nil {
		c.ws.Warn(fmt.Sprintf("could not build request: %v", err))
		return procrun.Spec{}, err
	}

	c.surf = c.ws.NewSurface(Geometry{WidthPct: c.cfg.UI.LoadWidthPct, Lines: 1})
	c.phase = PhaseLoading
	c.frame = 0
	c.Tick()

	endpoint := gemini.Endpoint(c.cfg.API.Host, c.cfg.API.Model, key)
	return procrun.Spec{
		Command: c.cfg.Curl.Binary,
		Args:    gemini.CurlArgs(endpoint, c.cfg.Curl.TimeoutSecs),
		Stdin:   string(body),
	}, nil
}

// Tick writes the next spinner frame into the loading surface. A tick after
// completion or against a destroyed surface is a silent no-op.
func (c *Controller) Tick() {
	if c.phase != PhaseLoading || c.surf == nil || !c.surf.Alive() {
		return
	}
	c.surf.SetLines([]string{"Loading... " + loadingSpinner.Frames[c.frame]})
	c.frame = (c.frame + 1) % len(loadingSpinner.Frames)
}

// Complete handles process exit. It fires at most once: the phase change is
// the very first step, so no spinner tick can write after the resize and
// content replacement below have begun. The decoded result is returned for
// the caller to record; delivered is false when the surface was closed
// mid-flight and the completion became a no-op.
func (c *Controller) Complete(out procrun.Outcome) (res gemini.Result, delivered bool) {
	if c.phase != PhaseLoading {
		return gemini.Result{}, false
	}
	c.phase = PhaseDisplaying

	res = gemini.Decode(out.Stdout, out.Stderr)
	if !res.OK {
		log.Debug().Int("exit", out.ExitCode).Msg("response decode failed")
	}
	if c.surf == nil || !c.surf.Alive() {
		c.phase = PhaseClosed
		return res, false
	}

	c.surf.Resize(Geometry{
		WidthPct:  c.cfg.UI.ResultWidthPct,
		HeightPct: c.cfg.UI.ResultHeightPct,
	})
	c.surf.SetLines(strings.Split(res.Text, "\n"))
	c.surf.SetKind(kindMarkdown)
	c.surf.SetMeta(res.Meta)
	return res, true
}

// Redisplay opens a result surface for a previously recorded exchange,
// entering Displaying directly with the same actions available. It refuses
// to clobber an in-flight request.
func (c *Controller) Redisplay(text, meta string) {
	if c.phase == PhaseLoading {
		return
	}
	c.surf = c.ws.NewSurface(Geometry{
		WidthPct:  c.cfg.UI.ResultWidthPct,
		HeightPct: c.cfg.UI.ResultHeightPct,
	})
	c.surf.SetLines(strings.Split(text, "\n"))
	c.surf.SetKind(kindMarkdown)
	c.surf.SetMeta(meta)
	c.phase = PhaseDisplaying
}

// Close destroys the surface. Terminal. Closing an already-destroyed surface
// is a no-op.
func (c *Controller) Close() {
	if c.surf == nil || !c.surf.Alive() {
		return
	}
	c.surf.Destroy()
	c.phase = PhaseClosed
}

// Export moves the current content lines into a new persistent view and
// discards the transient surface. Terminal. Only valid while displaying.
func (c *Controller) Export() {
	if c.phase != PhaseDisplaying || c.surf == nil || !c.surf.Alive() {
		return
	}
	lines := c.surf.Lines()
	c.surf.Destroy()
	c.ws.OpenView(lines, kindMarkdown)
	c.phase = PhaseExported
}

// ShowMeta prepends the stored metadata block (plus one blank separator
// line) to the front of the content. Invoking it again re-prepends the
// block; the duplication is deliberate, matching the original behaviour.
func (c *Controller) ShowMeta() {
	if c.phase != PhaseDisplaying || c.surf == nil || !c.surf.Alive() {
		return
	}
	meta := c.surf.Meta()
	if meta == "" {
		return
	}
	block := append(strings.Split(meta, "\n"), "")
	c.surf.SetLines(append(block, c.surf.Lines()...))
}
