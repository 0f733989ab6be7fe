package clock

import "time"

// Clock abstracts time.Now so temporal rules stay testable.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Fixed returns a clock pinned to the given instant.
func Fixed(t time.Time) Clock { return fixedClock{t: t} }

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }
