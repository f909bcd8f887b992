package auth

import "time"

// Clock supplies the current time to token and comment timestamping
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns T. Tests advance it by assigning T.
type FixedClock struct {
	T time.Time
}

func (c *FixedClock) Now() time.Time { return c.T }
