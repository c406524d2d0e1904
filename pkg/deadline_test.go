package pkg

import (
	"testing"
	"time"
)

func TestDeadline(t *testing.T) {
	var dl Deadline
	fired := make(chan uint64, 2)

	dl.Arm(1, time.Hour, func(gen uint64) { fired <- gen })
	dl.Arm(2, time.Millisecond, func(gen uint64) { fired <- gen })
	if dl.Gen() != 2 {
		t.Errorf("Gen() = %d, want 2", dl.Gen())
	}

	select {
	case gen := <-fired:
		if gen != 2 {
			t.Errorf("fired for %d, want 2", gen)
		}
	case <-time.After(time.Second):
		t.Fatal("deadline never fired")
	}

	dl.Arm(3, 20*time.Millisecond, func(gen uint64) { fired <- gen })
	dl.Disarm()
	if dl.Gen() != 0 {
		t.Errorf("Gen() = %d after Disarm", dl.Gen())
	}
	select {
	case gen := <-fired:
		t.Errorf("disarmed deadline fired for %d", gen)
	case <-time.After(60 * time.Millisecond):
	}
}
