package backend

import "sync"

// LocalNotifier fans change notifications out to in-process
// subscribers. It is the single-node default and what tests use.
type LocalNotifier struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]func()
}

func NewLocalNotifier() *LocalNotifier {
	return &LocalNotifier{subs: make(map[string]map[int]func())}
}

func (n *LocalNotifier) Publish(collection string) error {
	n.mu.Lock()
	fns := make([]func(), 0, len(n.subs[collection]))
	for _, fn := range n.subs[collection] {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return nil
}

func (n *LocalNotifier) Subscribe(collection string, fn func()) (CancelFunc, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.subs[collection] == nil {
		n.subs[collection] = make(map[int]func())
	}
	id := n.next
	n.next++
	n.subs[collection][id] = fn

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs[collection], id)
	}, nil
}
