package procrun

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// LaunchFailureExitCode is reported when the process could not be started at
// all. The decoder treats it like any other failed invocation.
const LaunchFailureExitCode = -1

// Spec describes one external invocation.
type Spec struct {
	Command string
	Args    []string
	Stdin   string
}

// Outcome is the complete buffered output of a finished process. Stdout and
// Stderr hold non-empty lines in emission order; no ordering is guaranteed
// between the two streams.
type Outcome struct {
	Stdout   []string
	Stderr   []string
	ExitCode int
}

// Start launches the process and returns immediately. The returned channel
// has capacity 1 and receives exactly one Outcome at process exit, then
// closes; one-shot delivery is the contract, not a convention. A launch
// failure is delivered as an immediate Outcome with LaunchFailureExitCode
// and empty buffers.
func Start(ctx context.Context, spec Spec) <-chan Outcome {
	done := make(chan Outcome, 1)
	go func() {
		done <- run(ctx, spec)
		close(done)
	}()
	return done
}

func run(ctx context.Context, spec Spec) Outcome {
	cmd := exec.CommandContext(ctx, spec.Command, spec.Args...)
	cmd.Stdin = strings.NewReader(spec.Stdin)

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return launchFailure(spec, err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return launchFailure(spec, err)
	}
	if err := cmd.Start(); err != nil {
		return launchFailure(spec, err)
	}
	log.Debug().Str("command", spec.Command).Strs("args", spec.Args).Msg("process started")

	var stdout, stderr []string
	var wg sync.WaitGroup
	wg.Add(2)
	go collectLines(stdoutPipe, &stdout, &wg)
	go collectLines(stderrPipe, &stderr, &wg)
	wg.Wait()

	exitCode := 0
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = LaunchFailureExitCode
		}
	}
	log.Debug().Str("command", spec.Command).Int("exit", exitCode).
		Int("stdout_lines", len(stdout)).Int("stderr_lines", len(stderr)).
		Msg("process finished")
	return Outcome{Stdout: stdout, Stderr: stderr, ExitCode: exitCode}
}

// collectLines buffers non-empty lines in emission order. Empty lines are
// filtered at scan time so the decoder never sees them.
func collectLines(r io.Reader, dst *[]string, wg *sync.WaitGroup) {
	defer wg.Done()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		*dst = append(*dst, line)
	}
}

func launchFailure(spec Spec, err error) Outcome {
	log.Debug().Str("command", spec.Command).Err(err).Msg("process launch failed")
	return Outcome{ExitCode: LaunchFailureExitCode}
}
