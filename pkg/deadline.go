package pkg

import "time"

// Deadline bounds how long the session waits for one engine search. It is
// always used under the session lock.
type Deadline struct {
	timer *time.Timer
	gen   uint64
}

// Arm replaces any pending deadline with one for gen. fire runs on its own
// goroutine after d.
func (dl *Deadline) Arm(gen uint64, d time.Duration, fire func(gen uint64)) {
	dl.Disarm()
	dl.gen = gen
	dl.timer = time.AfterFunc(d, func() { fire(gen) })
}

func (dl *Deadline) Disarm() {
	if dl.timer != nil {
		dl.timer.Stop()
		dl.timer = nil
	}
	dl.gen = 0
}

// Gen is the search being timed, 0 when disarmed.
func (dl *Deadline) Gen() uint64 {
	return dl.gen
}
