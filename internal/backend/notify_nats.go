package backend

import (
	"strings"

	"github.com/nats-io/nats.go"
)

const changeSubjectPrefix = "kladi.changes."

// NATSNotifier carries change notifications over NATS so every running
// instance re-syncs when any of them writes. Messages are empty; the
// subject names the collection.
type NATSNotifier struct {
	nc *nats.Conn
}

func NewNATSNotifier(url string) (*NATSNotifier, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.RetryOnFailedConnect(true),
	)
	if err != nil {
		return nil, err
	}
	return &NATSNotifier{nc: nc}, nil
}

func (n *NATSNotifier) Publish(collection string) error {
	return n.nc.Publish(subjectFor(collection), nil)
}

func (n *NATSNotifier) Subscribe(collection string, fn func()) (CancelFunc, error) {
	sub, err := n.nc.Subscribe(subjectFor(collection), func(_ *nats.Msg) { fn() })
	if err != nil {
		return nil, err
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

func (n *NATSNotifier) Close() { n.nc.Close() }

// Per-user collections contain slashes ("favorites/{uid}/items");
// NATS subjects use dots.
func subjectFor(collection string) string {
	return changeSubjectPrefix + strings.ReplaceAll(collection, "/", ".")
}
