package activitypub

import (
	"context"
	"fmt"

	"github.com/deemkeen/statusbridge/domain"
	"github.com/rs/zerolog/log"
)

// OrderedCollection is an outbox or one of its pages. First is either the IRI of the
// first page or the page itself.
type OrderedCollection struct {
	Context      interface{}       `json:"@context,omitempty"`
	ID           string            `json:"id"`
	Type         string            `json:"type"`
	TotalItems   int               `json:"totalItems"`
	PartOf       string            `json:"partOf,omitempty"`
	First        interface{}       `json:"first,omitempty"`
	OrderedItems []domain.Activity `json:"orderedItems,omitempty"`
	Items        []domain.Activity `json:"items,omitempty"`
}

func (c *OrderedCollection) activities() []domain.Activity {
	if len(c.OrderedItems) > 0 {
		return c.OrderedItems
	}
	return c.Items
}

// OutboxReader reads the first page of remote outboxes.
type OutboxReader struct {
	client *Client
	limit  int
}

func NewOutboxReader(client *Client, limit int) *OutboxReader {
	return &OutboxReader{client: client, limit: limit}
}

// Fetch returns up to limit activities from the first page of the actor's outbox, in the
// order the remote server lists them.
func (o *OutboxReader) Fetch(ctx context.Context, actor *domain.Actor) ([]domain.Activity, error) {
	if actor.OutboxURI == "" {
		return nil, fmt.Errorf("actor %s has no outbox", actor.Id)
	}

	var collection OrderedCollection
	if err := o.client.fetchJSON(ctx, actor.OutboxURI, ActivityJSONType, &collection); err != nil {
		return nil, err
	}

	activities := collection.activities()
	if len(activities) == 0 && collection.First != nil {
		page, err := o.firstPage(ctx, collection.First)
		if err != nil {
			return nil, err
		}
		activities = page.activities()
	}

	if o.limit > 0 && len(activities) > o.limit {
		activities = activities[:o.limit]
	}
	log.Debug().Str("actor", actor.Id).Int("activities", len(activities)).Msg("Fetched outbox")
	return activities, nil
}

func (o *OutboxReader) firstPage(ctx context.Context, first interface{}) (*OrderedCollection, error) {
	var page OrderedCollection
	switch value := first.(type) {
	case string:
		if err := o.client.fetchJSON(ctx, value, ActivityJSONType, &page); err != nil {
			return nil, err
		}
	case map[string]interface{}:
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("invalid first page: %w", err)
		}
	default:
		return nil, fmt.Errorf("invalid first page of type %T", first)
	}
	return &page, nil
}
