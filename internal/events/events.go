package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/emrgen/content/internal/model"
)

type Kind string

const (
	KindPublished   Kind = "published"
	KindUnpublished Kind = "unpublished"
)

// Event announces a change of the public version of a content.
type Event struct {
	Kind      Kind      `json:"kind"`
	ContentID string    `json:"content_id"`
	Slug      string    `json:"slug"`
	ShaPublic string    `json:"sha_public"`
	At        time.Time `json:"at"`
}

// NewEvent builds the event of kind for a published record.
func NewEvent(kind Kind, published *model.PublishedContent) Event {
	return Event{
		Kind:      kind,
		ContentID: published.ContentID,
		Slug:      published.ContentPublicSlug,
		ShaPublic: published.ShaPublic,
		At:        time.Now().UTC(),
	}
}

func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Notifier delivers publication events.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
	Close() error
}

var _ Notifier = (*NopNotifier)(nil)

type NopNotifier struct{}

func NewNopNotifier() *NopNotifier {
	return &NopNotifier{}
}

func (n *NopNotifier) Notify(ctx context.Context, event Event) error {
	return nil
}

func (n *NopNotifier) Close() error {
	return nil
}

var _ Notifier = (*Recorder)(nil)

// Recorder keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(ctx context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *Recorder) Close() error {
	return nil
}
