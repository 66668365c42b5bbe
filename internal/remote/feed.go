package remote

// Feed is a coalescing change signal. Any number of Notify calls between
// two receives collapse into one wake-up.
type Feed struct {
	ch chan struct{}
}

func NewFeed() *Feed {
	return &Feed{ch: make(chan struct{}, 1)}
}

func (f *Feed) Notify() {
	select {
	case f.ch <- struct{}{}:
	default:
	}
}

// C yields one value per batch of changes. It is never closed.
func (f *Feed) C() <-chan struct{} { return f.ch }
