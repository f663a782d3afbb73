package utils

import "time"

// Clock abstracts wall-clock time so expiration and sweep logic can be tested
// with a controlled "now".
type Clock interface {
	Now() time.Time
}

// RealClock is the production Clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }
