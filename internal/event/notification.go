package event

import (
	"fmt"
	"strings"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// Notification is the storage-change payload the queue delivers: one
// finalized object in one bucket.
type Notification struct {
	Bucket string `json:"bucket"`
	Key    string `json:"name"`
}

// FromCloudEvent unwraps the storage notification carried by a CloudEvent.
func FromCloudEvent(e cloudevents.Event) (Notification, error) {
	var n Notification
	if err := e.DataAs(&n); err != nil {
		return Notification{}, fmt.Errorf("decode storage event: %w", err)
	}
	if n.Bucket == "" || n.Key == "" {
		return Notification{}, fmt.Errorf("storage event missing bucket/name (id=%s)", e.ID())
	}
	return n, nil
}

// MatchesPrefix filters deliveries to the uploads keyspace. A non-matching
// key is ignored by the consumer, it is not an error.
func (n Notification) MatchesPrefix(prefix string) bool {
	return strings.HasPrefix(n.Key, prefix)
}
