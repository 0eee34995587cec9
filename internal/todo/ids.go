package todo

import "time"

// IDGenerator hands out task ids.
// Next must return an id strictly greater than every id it returned before
// and every id passed to Observe.
type IDGenerator interface {
	Next() ID
	Observe(id ID)
}

// Counter is an IDGenerator yielding 1, 2, 3, ...
type Counter struct {
	last ID
}

// NewCounter returns a counter whose first id is start+1.
func NewCounter(start ID) *Counter {
	return &Counter{last: start}
}

func (c *Counter) Next() ID {
	c.last++
	return c.last
}

func (c *Counter) Observe(id ID) {
	if id > c.last {
		c.last = id
	}
}

// Clock is an IDGenerator based on millisecond timestamps.
// Two ids issued within the same millisecond still differ.
type Clock struct {
	now  func() time.Time
	last ID
}

// NewClock returns a clock generator reading time from now.
// A nil now uses time.Now.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

func (c *Clock) Next() ID {
	id := ID(c.now().UnixMilli())
	if id <= c.last {
		id = c.last + 1
	}
	c.last = id
	return id
}

func (c *Clock) Observe(id ID) {
	if id > c.last {
		c.last = id
	}
}
