package procrun

import (
	"context"
	"reflect"
	"testing"
	"time"
)

func waitOutcome(t *testing.T, done <-chan Outcome) Outcome {
	t.Helper()
	select {
	case out := <-done:
		return out
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for process outcome")
		return Outcome{}
	}
}

func TestStartBuffersStreamsAndExitCode(t *testing.T) {
	done := Start(context.Background(), Spec{
		Command: "sh",
		Args:    []string{"-c", `printf 'a\n\nb\n'; echo oops >&2; exit 3`},
	})
	out := waitOutcome(t, done)
	if !reflect.DeepEqual(out.Stdout, []string{"a", "b"}) {
		t.Errorf("stdout = %v, want [a b] with empty lines filtered", out.Stdout)
	}
	if !reflect.DeepEqual(out.Stderr, []string{"oops"}) {
		t.Errorf("stderr = %v, want [oops]", out.Stderr)
	}
	if out.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", out.ExitCode)
	}
}

func TestStartPipesStdin(t *testing.T) {
	done := Start(context.Background(), Spec{
		Command: "sh",
		Args:    []string{"-c", "cat"},
		Stdin:   "hello runner\n",
	})
	out := waitOutcome(t, done)
	if !reflect.DeepEqual(out.Stdout, []string{"hello runner"}) {
		t.Errorf("stdout = %v, want stdin echoed back", out.Stdout)
	}
	if out.ExitCode != 0 {
		t.Errorf("exit code = %d, want 0", out.ExitCode)
	}
}

func TestStartLaunchFailure(t *testing.T) {
	done := Start(context.Background(), Spec{Command: "/nonexistent/gemq-no-such-binary"})
	out := waitOutcome(t, done)
	if out.ExitCode != LaunchFailureExitCode {
		t.Errorf("exit code = %d, want %d", out.ExitCode, LaunchFailureExitCode)
	}
	if len(out.Stdout) != 0 || len(out.Stderr) != 0 {
		t.Errorf("launch failure must deliver empty buffers, got %v / %v", out.Stdout, out.Stderr)
	}
}

func TestStartDeliversExactlyOnce(t *testing.T) {
	done := Start(context.Background(), Spec{Command: "sh", Args: []string{"-c", "true"}})
	waitOutcome(t, done)
	if _, open := <-done; open {
		t.Error("channel should be closed after the single delivery")
	}
}

func TestStartDoesNotBlockCaller(t *testing.T) {
	begin := time.Now()
	done := Start(context.Background(), Spec{Command: "sh", Args: []string{"-c", "sleep 1"}})
	if elapsed := time.Since(begin); elapsed > 500*time.Millisecond {
		t.Fatalf("Start blocked for %v", elapsed)
	}
	waitOutcome(t, done)
}
