package pedal

import "time"

// EventKind identifies what a channel just did.
type EventKind int

const (
	EventSent EventKind = iota
	EventSaved
	EventRestored
	EventRelearn
	EventEnabled
	EventDisabled
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventSent:
		return "sent"
	case EventSaved:
		return "saved"
	case EventRestored:
		return "restored"
	case EventRelearn:
		return "relearn"
	case EventEnabled:
		return "enabled"
	case EventDisabled:
		return "disabled"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is delivered to an Observer after a channel decision is final.
type Event struct {
	Kind        EventKind
	Time        time.Time
	Channel     int // Index of the channel in the controller
	Name        string
	Controller  uint8
	MIDIChannel uint8
	Value       int // Sent value for EventSent, NeverSent otherwise
	Calibration Calibration
	Err         error
}

// Observer receives channel events. Observers must not block.
type Observer interface {
	Observe(ev Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ev Event)

func (f ObserverFunc) Observe(ev Event) { f(ev) }

type nopObserver struct{}

func (nopObserver) Observe(Event) {}
