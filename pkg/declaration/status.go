package declaration

import "sync/atomic"

// Status is the combined publish/subscribe declaration state of a class.
type Status uint8

const (
	StatusUndesignated Status = iota
	StatusPublished
	StatusSubscribed
	StatusPublishedSubscribed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusUndesignated:
		return "UNDESIGNATED"
	case StatusPublished:
		return "PUBLISHED"
	case StatusSubscribed:
		return "SUBSCRIBED"
	case StatusPublishedSubscribed:
		return "PUBLISHED_SUBSCRIBED"
	default:
		return "UNKNOWN"
	}
}

// Flags holds the two independent declaration bits. Each bit has a single
// writer at a time; readers may observe them from any goroutine.
type Flags struct {
	published  atomic.Bool
	subscribed atomic.Bool
}

// SetPublishFlag sets the publish bit. It returns false if already set.
func (f *Flags) SetPublishFlag() bool { return f.published.CompareAndSwap(false, true) }

// UnsetPublishFlag clears the publish bit. It returns false if already clear.
func (f *Flags) UnsetPublishFlag() bool { return f.published.CompareAndSwap(true, false) }

// SetSubscribeFlag sets the subscribe bit. It returns false if already set.
func (f *Flags) SetSubscribeFlag() bool { return f.subscribed.CompareAndSwap(false, true) }

// UnsetSubscribeFlag clears the subscribe bit. It returns false if already clear.
func (f *Flags) UnsetSubscribeFlag() bool { return f.subscribed.CompareAndSwap(true, false) }

// IsPublished reports the publish bit.
func (f *Flags) IsPublished() bool { return f.published.Load() }

// IsSubscribed reports the subscribe bit.
func (f *Flags) IsSubscribed() bool { return f.subscribed.Load() }

// Status combines both bits.
func (f *Flags) Status() Status {
	var s Status
	if f.published.Load() {
		s |= StatusPublished
	}
	if f.subscribed.Load() {
		s |= StatusSubscribed
	}
	return s
}
