package internal

import "time"

// Backoff sleeps with exponentially increasing waits while a poll loop finds
// no work and resets once work is found.
type Backoff struct {
	// wait defines the amount of time that Miss will wait on next call.
	wait time.Duration
	// Maximum allowable value for wait.
	maxWait time.Duration
	// startWait is the initial wait value, as well as the value that wait takes after a call to Hit.
	startWait time.Duration
	sleep     func(time.Duration)
}

// NewBackoff returns a Backoff waiting between minWait and maxWait.
func NewBackoff(minWait, maxWait time.Duration) Backoff {
	if minWait <= 0 || maxWait < minWait {
		panic("invalid backoff wait range")
	}
	return Backoff{
		wait:      minWait,
		maxWait:   maxWait,
		startWait: minWait,
		sleep:     time.Sleep,
	}
}

// Hit resets the wait to its starting value.
func (eb *Backoff) Hit() {
	if eb.maxWait == 0 {
		panic("MaxWait cannot be zero")
	}
	eb.wait = eb.startWait
}

// Miss sleeps for the current wait and doubles it up to the maximum.
func (eb *Backoff) Miss() {
	if eb.maxWait == 0 {
		panic("MaxWait cannot be zero")
	}
	eb.sleep(eb.wait)
	eb.wait *= 2
	if eb.wait > eb.maxWait {
		eb.wait = eb.maxWait
	}
}

// Wait returns the duration the next call to Miss sleeps for.
func (eb *Backoff) Wait() time.Duration { return eb.wait }
