// Package notifier implements a synchronous publish/subscribe registry for
// weather reports.
package notifier

import "github.com/skycast-dev/skycast/internal/weather/types"

// Observer receives published weather reports. Implementations must be
// comparable with == so they can be removed again; pointer types are.
type Observer interface {
	Update(report types.Report) error
}

// Notifier dispatches reports to registered observers in registration order.
// It is not safe for concurrent use; callers that share one across goroutines
// must serialize access themselves.
type Notifier struct {
	observers []Observer
}

func New() *Notifier {
	return &Notifier{}
}

// Add registers an observer. The same observer may be registered more than
// once; it then receives each report once per registration.
func (n *Notifier) Add(o Observer) {
	n.observers = append(n.observers, o)
}

// Remove drops the first registered observer equal to o. Removing an
// unregistered observer is a no-op.
func (n *Notifier) Remove(o Observer) {
	for i, registered := range n.observers {
		if registered == o {
			n.observers = append(n.observers[:i], n.observers[i+1:]...)
			return
		}
	}
}

// Notify delivers report to every observer synchronously on the calling
// goroutine, in registration order. The first observer error aborts the
// remaining dispatch and is returned.
func (n *Notifier) Notify(report types.Report) error {
	for _, o := range n.observers {
		if err := o.Update(report); err != nil {
			return err
		}
	}
	return nil
}

// Len reports the number of registered observers.
func (n *Notifier) Len() int {
	return len(n.observers)
}
