package telegram

import (
	"errors"
	"testing"
	"time"
)

func TestFloodWait(t *testing.T) {
	d, ok := floodWait(errors.New("FLOOD_WAIT_3 (caused by messages.SendMessage)"))
	if !ok || d != 3*time.Second {
		t.Errorf("floodWait = (%v, %v), want (3s, true)", d, ok)
	}

	if _, ok := floodWait(nil); ok {
		t.Error("floodWait(nil) reported a backoff")
	}
	if _, ok := floodWait(errors.New("connection reset")); ok {
		t.Error("floodWait reported a backoff for an unrelated error")
	}
}

func TestWithFloodRetryRetriesOnce(t *testing.T) {
	calls := 0
	err := withFloodRetry(func() error {
		calls++
		if calls == 1 {
			return errors.New("FLOOD_WAIT_0")
		}
		return nil
	})
	if err != nil {
		t.Errorf("withFloodRetry = %v, want nil after retry", err)
	}
	if calls != 2 {
		t.Errorf("op ran %d times, want 2", calls)
	}
}

func TestWithFloodRetryRetriesOnlyOnce(t *testing.T) {
	calls := 0
	err := withFloodRetry(func() error {
		calls++
		return errors.New("FLOOD_WAIT_0")
	})
	if err == nil {
		t.Error("withFloodRetry = nil, want the persistent rate-limit error")
	}
	if calls != 2 {
		t.Errorf("op ran %d times, want exactly 2", calls)
	}
}

func TestWithFloodRetryPassesThroughOtherErrors(t *testing.T) {
	sentinel := errors.New("network down")
	calls := 0
	if err := withFloodRetry(func() error {
		calls++
		return sentinel
	}); err != sentinel {
		t.Errorf("withFloodRetry = %v, want the original error", err)
	}
	if calls != 1 {
		t.Errorf("op ran %d times, want 1", calls)
	}
}
