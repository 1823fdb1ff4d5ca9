package console

import (
	"sync"
	"time"
)

type NotificationKind string

const (
	KindSuccess NotificationKind = "success"
	KindError   NotificationKind = "error"
)

// Notification is one transient status message.
type Notification struct {
	Kind    NotificationKind
	Message string
	ShownAt time.Time
}

// Notifier shows at most one notification at a time. It exclusively owns a
// single dismissal timer, which is stopped before it is replaced.
type Notifier struct {
	delay    time.Duration
	onChange func(*Notification)

	mu      sync.Mutex
	current *Notification
	timer   *time.Timer
	seq     uint64
	closed  bool
}

// NewNotifier creates a notifier. onChange, if set, is called with the new
// notification on show and with nil on dismissal; it runs outside the lock.
func NewNotifier(delay time.Duration, onChange func(*Notification)) *Notifier {
	return &Notifier{delay: delay, onChange: onChange}
}

// Show replaces the visible notification and restarts the dismissal timer.
func (n *Notifier) Show(kind NotificationKind, message string) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.stopTimerLocked()

	n.seq++
	seq := n.seq
	note := &Notification{Kind: kind, Message: message, ShownAt: time.Now()}
	n.current = note
	n.timer = time.AfterFunc(n.delay, func() { n.expire(seq) })
	n.mu.Unlock()

	n.notify(note)
}

func (n *Notifier) Success(message string) { n.Show(KindSuccess, message) }

func (n *Notifier) Error(message string) { n.Show(KindError, message) }

// Current returns a copy of the visible notification, or nil when idle.
func (n *Notifier) Current() *Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return nil
	}
	c := *n.current
	return &c
}

// Pending reports whether a dismissal timer is outstanding.
func (n *Notifier) Pending() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.timer != nil
}

// Close cancels the outstanding timer. Later calls to Show are ignored.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopTimerLocked()
	n.current = nil
	n.closed = true
}

// expire runs on the timer goroutine. A timer that fired while being
// replaced carries an old seq and must not clear the newer notification.
func (n *Notifier) expire(seq uint64) {
	n.mu.Lock()
	if n.closed || seq != n.seq {
		n.mu.Unlock()
		return
	}
	n.current = nil
	n.timer = nil
	n.mu.Unlock()

	n.notify(nil)
}

func (n *Notifier) stopTimerLocked() {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}

func (n *Notifier) notify(note *Notification) {
	if n.onChange == nil {
		return
	}
	if note == nil {
		n.onChange(nil)
		return
	}
	c := *note
	n.onChange(&c)
}
