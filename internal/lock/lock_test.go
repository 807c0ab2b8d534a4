package lock

import (
	"errors"
	"testing"
	"time"
)

func TestAcquireRelease(t *testing.T) {
	root := t.TempDir()

	guard, err := Acquire(root, time.Second)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	guard.Release()

	// Reacquire after release should succeed immediately.
	again, err := Acquire(root, time.Second)
	if err != nil {
		t.Fatalf("Acquire after release failed: %v", err)
	}
	again.Release()
}

func TestAcquireMissingRoot(t *testing.T) {
	_, err := Acquire("/nonexistent/gov/root", time.Second)
	if !errors.Is(err, ErrRootMissing) {
		t.Errorf("Acquire on missing root = %v, want ErrRootMissing", err)
	}
}

func TestReleaseIdempotent(t *testing.T) {
	root := t.TempDir()

	guard, err := Acquire(root, time.Second)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	guard.Release()
	guard.Release() // must not panic or error
}

func TestContentionTimesOut(t *testing.T) {
	root := t.TempDir()

	holder, err := Acquire(root, time.Second)
	if err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	defer holder.Release()

	// A second open() creates a distinct file description, so the
	// waiter blocks until the holder releases.
	start := time.Now()
	waiterDone := make(chan error, 1)
	go func() {
		waiter, err := Acquire(root, 2*time.Second)
		if err == nil {
			waiter.Release()
		}
		waiterDone <- err
	}()

	time.Sleep(300 * time.Millisecond)
	holder.Release()

	if err := <-waiterDone; err != nil {
		t.Fatalf("waiter should acquire after holder releases: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("waiter took %s, should finish well inside its deadline", elapsed)
	}
}

func TestContentionFailsAfterDeadline(t *testing.T) {
	root := t.TempDir()

	holder, err := Acquire(root, time.Second)
	if err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	defer holder.Release()

	start := time.Now()
	_, err = Acquire(root, 300*time.Millisecond)
	elapsed := time.Since(start)

	var timeout *TimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("contended Acquire = %v, want TimeoutError", err)
	}
	if elapsed < 300*time.Millisecond || elapsed > time.Second {
		t.Errorf("timed out after %s, want roughly the 300ms deadline", elapsed)
	}
}

func TestTimeoutErrorMessage(t *testing.T) {
	err := &TimeoutError{Timeout: 5 * time.Second}
	want := "another write command is in progress; wait for it to finish or retry later (timed out after 5s waiting for exclusive access)"
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}
