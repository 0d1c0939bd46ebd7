package suspend

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestResumeIsOneShot(t *testing.T) {
	sp := New()
	fired := 0
	sp.Listen(func() { fired++ })

	sp.Resume()
	sp.Resume()

	if fired != 1 {
		t.Fatalf("listener fired %d times", fired)
	}
	if !sp.Resumed() {
		t.Fatal("suspension should report resumed")
	}
}

func TestListenAfterResumeFiresImmediately(t *testing.T) {
	sp := New()
	sp.Resume()

	fired := false
	sp.Listen(func() { fired = true })
	if !fired {
		t.Fatal("late listener should fire immediately")
	}
}

func TestDoneChannelCloses(t *testing.T) {
	sp := New()
	select {
	case <-sp.Done():
		t.Fatal("done closed before resume")
	default:
	}

	go sp.Resume()
	select {
	case <-sp.Done():
	case <-time.After(time.Second):
		t.Fatal("done did not close after resume")
	}
}

func TestThrowAndPending(t *testing.T) {
	sp := New()
	err := Throw(sp)

	got, ok := Pending(err)
	if !ok || got != sp {
		t.Fatalf("Pending(%v) = %v, %v", err, got, ok)
	}

	// Wrapping survives errors.As unwrapping.
	wrapped := fmt.Errorf("render: %w", err)
	if got, ok := Pending(wrapped); !ok || got != sp {
		t.Fatalf("Pending(wrapped) = %v, %v", got, ok)
	}

	if _, ok := Pending(errors.New("plain")); ok {
		t.Fatal("plain error misread as pending")
	}
}

func TestDistinctIdentities(t *testing.T) {
	a, b := New(), New()
	if a.ID() == b.ID() {
		t.Fatal("suspensions should have distinct ids")
	}
}

func TestConcurrentResume(t *testing.T) {
	sp := New()
	fired := 0
	var mu sync.Mutex
	sp.Listen(func() {
		mu.Lock()
		fired++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sp.Resume()
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if fired != 1 {
		t.Fatalf("listener fired %d times under concurrent resume", fired)
	}
}
