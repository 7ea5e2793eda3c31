package domain

import "time"

type EventType string

const (
	EventItemCreated   EventType = "item.created"
	EventItemUpdated   EventType = "item.updated"
	EventItemDeleted   EventType = "item.deleted"
	EventRentalCreated EventType = "rental.created"
	EventRentalUpdated EventType = "rental.updated"
)

// Event is published on the change feed after a write has been stored.
type Event struct {
	Type       EventType `json:"type"`
	ItemID     string    `json:"item_id,omitempty"`
	Item       *Item     `json:"item,omitempty"`
	Rental     *Rental   `json:"rental,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewRentalEvent(t EventType, r Rental, at time.Time) Event {
	return Event{Type: t, Rental: &r, OccurredAt: at}
}

func NewItemEvent(t EventType, it Item, at time.Time) Event {
	return Event{Type: t, ItemID: it.ID, Item: &it, OccurredAt: at}
}

// ConcernsUser reports whether a rental event should reach userID.
func (e Event) ConcernsUser(userID string) bool {
	return e.Rental != nil && e.Rental.Involves(userID)
}
