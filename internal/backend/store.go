// Package backend defines the document-store boundary the rest of the
// app talks to. It mimics a hosted BaaS: named collections of JSON
// documents, upsert/delete per document, and a push channel that fires
// on any write to a collection.
package backend

import (
	"context"
	"encoding/json"
)

// Document is one record in a collection. ID lives outside the payload,
// the way hosted document stores key their docs.
type Document struct {
	ID   string
	Data json.RawMessage
}

type Store interface {
	// FetchAll returns the full current snapshot of a collection.
	FetchAll(ctx context.Context, collection string) ([]Document, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	// Create stores a new document under a backend-assigned identifier.
	Create(ctx context.Context, collection string, data json.RawMessage) (string, error)
	Upsert(ctx context.Context, collection, id string, data json.RawMessage) error
	Delete(ctx context.Context, collection, id string) error
}

// CancelFunc releases a push subscription. Not calling it leaks the
// subscription for the process lifetime.
type CancelFunc func()

// Notifier is the push channel: Publish fires every subscriber callback
// registered for the collection. Payloads carry no data; subscribers
// re-read the collection.
type Notifier interface {
	Publish(collection string) error
	Subscribe(collection string, fn func()) (CancelFunc, error)
}
