package activitypub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/deemkeen/statusbridge/db"
	"github.com/deemkeen/statusbridge/domain"
	"github.com/rs/zerolog/log"
)

// ObjectDocument is the subset of an ActivityStreams object that gets cached.
type ObjectDocument struct {
	Context      interface{} `json:"@context,omitempty"`
	ID           string      `json:"id"`
	Type         string      `json:"type"`
	AttributedTo interface{} `json:"attributedTo,omitempty"`
	Content      string      `json:"content"`
	Published    string      `json:"published,omitempty"`
	URL          interface{} `json:"url,omitempty"`
	InReplyTo    interface{} `json:"inReplyTo,omitempty"`
	Summary      string      `json:"summary,omitempty"`
	Sensitive    bool        `json:"sensitive,omitempty"`
	To           []string    `json:"to,omitempty"`
	Cc           []string    `json:"cc,omitempty"`
}

// Processor applies activities found in remote outboxes to local storage.
type Processor struct {
	db     *db.DB
	actors *Directory
	client *Client
}

func NewProcessor(database *db.DB, actors *Directory, client *Client) *Processor {
	return &Processor{db: database, actors: actors, client: client}
}

// Process handles one activity. In caching mode a Create stores its object and appends it
// to the author's outbox; only objects stored for the first time are reported as created.
func (p *Processor) Process(ctx context.Context, host string, activity domain.Activity, mode domain.ProcessingMode) (*domain.ProcessResult, error) {
	if mode != domain.ModeCaching {
		return nil, fmt.Errorf("unsupported processing mode %s", mode)
	}

	switch activity.Type {
	case domain.CreateType:
		return p.handleCreate(ctx, activity)
	case domain.LikeType:
		return &domain.ProcessResult{}, p.handleReaction(ctx, host, activity, p.db.CreateFavourite)
	case domain.AnnounceType:
		return &domain.ProcessResult{}, p.handleReaction(ctx, host, activity, p.db.CreateReblog)
	default:
		log.Debug().Str("type", activity.Type).Str("activity", activity.Id).Msg("Ignoring activity")
		return &domain.ProcessResult{}, nil
	}
}

func (p *Processor) handleCreate(ctx context.Context, activity domain.Activity) (*domain.ProcessResult, error) {
	doc, err := p.resolveObject(ctx, activity.Object)
	if err != nil {
		return nil, err
	}
	if doc.ID == "" {
		return nil, fmt.Errorf("create %s: object has no id", activity.Id)
	}

	actor, err := p.actors.GetAndCache(ctx, activity.Actor)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", activity.Id, err)
	}

	published := doc.Published
	if published == "" {
		published = activity.Published
	}

	obj, created, err := p.db.CacheObject(ctx, &domain.Object{
		Type: doc.Type,
		Properties: domain.ObjectProperties{
			Content:      doc.Content,
			Published:    published,
			AttributedTo: iriOf(doc.AttributedTo),
			URL:          iriOf(doc.URL),
			InReplyTo:    iriOf(doc.InReplyTo),
			Summary:      doc.Summary,
			Sensitive:    doc.Sensitive,
		},
		OriginalActorId:  actor.Id,
		OriginalObjectId: doc.ID,
	})
	if err != nil {
		return nil, err
	}
	if !created {
		log.Debug().Str("object", doc.ID).Msg("Object already cached")
		return &domain.ProcessResult{}, nil
	}

	if err := p.db.AddObjectInOutbox(ctx, actor.Id, obj.Id, parsePublished(activity.Published)); err != nil {
		return nil, fmt.Errorf("outbox entry for %s: %w", doc.ID, err)
	}
	return &domain.ProcessResult{CreatedObjects: []domain.Object{*obj}}, nil
}

func (p *Processor) handleReaction(ctx context.Context, host string, activity domain.Activity, record func(ctx context.Context, actorId, objectId string) error) error {
	var iri string
	if err := json.Unmarshal(activity.Object, &iri); err != nil {
		doc, derr := decodeObject(activity.Object)
		if derr != nil {
			return fmt.Errorf("%s %s: %w", activity.Type, activity.Id, derr)
		}
		iri = doc.ID
	}

	obj, err := p.findObject(ctx, host, iri)
	if errors.Is(err, db.ErrObjectNotFound) {
		log.Debug().Str("object", iri).Str("type", activity.Type).Msg("Reaction to unknown object")
		return nil
	}
	if err != nil {
		return err
	}
	return record(ctx, activity.Actor, obj.Id)
}

// findObject maps an object IRI to a stored object. IRIs under /ap/o/ on host name
// local objects by id; everything else is looked up as a cached remote object.
func (p *Processor) findObject(ctx context.Context, host, iri string) (*domain.Object, error) {
	localPrefix := domain.ObjectURI(host, "")
	if id, ok := strings.CutPrefix(iri, localPrefix); ok && id != "" {
		return p.db.ReadObjectById(ctx, id)
	}
	return p.db.ReadObjectByOriginalId(ctx, iri)
}

func (p *Processor) resolveObject(ctx context.Context, raw []byte) (*ObjectDocument, error) {
	var iri string
	if err := json.Unmarshal(raw, &iri); err == nil {
		var doc ObjectDocument
		if err := p.client.fetchJSON(ctx, iri, documentAccept, &doc); err != nil {
			return nil, err
		}
		return &doc, nil
	}
	return decodeObject(raw)
}

func decodeObject(raw []byte) (*ObjectDocument, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("activity has no object")
	}
	var doc ObjectDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid object: %w", err)
	}
	return &doc, nil
}

// iriOf returns the IRI of a property that may be a bare IRI or an embedded object.
func iriOf(v interface{}) string {
	switch value := v.(type) {
	case string:
		return value
	case map[string]interface{}:
		if id, ok := value["id"].(string); ok {
			return id
		}
		if href, ok := value["href"].(string); ok {
			return href
		}
	case []interface{}:
		if len(value) > 0 {
			return iriOf(value[0])
		}
	}
	return ""
}

// parsePublished returns the zero time when value is absent or malformed, which makes
// the outbox entry fall back to the ingestion time.
func parsePublished(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
