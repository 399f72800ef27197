package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/deemkeen/statusbridge/activitypub"
	"github.com/deemkeen/statusbridge/db"
	"github.com/deemkeen/statusbridge/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type action uint

const (
	id action = iota
	inbox
	outbox
	feed
)

func getIRI(host string, username string, action action) string {
	prefix := domain.LocalActorURL(host, username)
	switch action {
	case inbox:
		return fmt.Sprintf("%s/inbox", prefix)
	case outbox:
		return fmt.Sprintf("%s/outbox", prefix)
	case feed:
		return fmt.Sprintf("%s/feed", prefix)
	case id:
		return prefix
	default:
		return ""
	}
}

// localActor loads the actor hosted here under username. It writes the error response
// itself and returns nil when there is none.
func (s *Server) localActor(c *gin.Context, username string) *domain.Actor {
	actor, err := s.db.ReadActorById(c.Request.Context(), getIRI(s.domain(), username, id))
	if err == nil && actor.Local {
		return actor
	}
	if err != nil && !errors.Is(err, db.ErrActorNotFound) {
		log.Error().Err(err).Str("username", username).Msg("Failed to read actor")
		c.AbortWithStatus(http.StatusInternalServerError)
		return nil
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Actor not found"})
	return nil
}

func (s *Server) handleActor(c *gin.Context) {
	c.Header("Content-Type", activityContentType)

	username := c.Param("username")
	actor := s.localActor(c, username)
	if actor == nil {
		return
	}

	name := actor.Name
	if name == "" {
		name = actor.PreferredUsername
	}
	doc := activitypub.ActorDocument{
		Context:           []string{activityStreamsContext, securityContext},
		ID:                actor.Id,
		Type:              actor.Type,
		PreferredUsername: actor.PreferredUsername,
		Name:              name,
		Summary:           actor.Summary,
		Inbox:             getIRI(s.domain(), username, inbox),
		Outbox:            getIRI(s.domain(), username, outbox),
		Published:         actor.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		PublicKey: activitypub.PublicKey{
			ID:           actor.Id + "#main-key",
			Owner:        actor.Id,
			PublicKeyPem: actor.PublicKeyPem,
		},
	}
	if actor.IconURL != "" {
		doc.Icon = &activitypub.Image{Type: "Image", URL: actor.IconURL}
	}
	c.JSON(http.StatusOK, doc)
}

// handleInstanceActor serves the Application actor whose key signs outgoing fetches.
func (s *Server) handleInstanceActor(c *gin.Context) {
	c.Header("Content-Type", activityContentType)

	actorId := fmt.Sprintf("https://%s/actor", s.domain())
	c.JSON(http.StatusOK, activitypub.ActorDocument{
		Context:           []string{activityStreamsContext, securityContext},
		ID:                actorId,
		Type:              domain.ApplicationType,
		PreferredUsername: s.domain(),
		Name:              s.domain(),
		Inbox:             actorId + "/inbox",
		Outbox:            actorId + "/outbox",
		PublicKey: activitypub.PublicKey{
			ID:           actorId + "#main-key",
			Owner:        actorId,
			PublicKeyPem: s.instanceKey.Public,
		},
	})
}

// handleObject serves a locally published object as ActivityStreams JSON.
func (s *Server) handleObject(c *gin.Context) {
	c.Header("Content-Type", activityContentType)

	obj, err := s.db.ReadObjectById(c.Request.Context(), c.Param("id"))
	if errors.Is(err, db.ErrObjectNotFound) || (err == nil && !obj.Local) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Object not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("object", c.Param("id")).Msg("Failed to read object")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	doc := s.objectDocument(*obj)
	doc.Context = activityStreamsContext
	c.JSON(http.StatusOK, doc)
}

func (s *Server) objectDocument(obj domain.Object) activitypub.ObjectDocument {
	return activitypub.ObjectDocument{
		ID:           domain.ObjectURI(s.domain(), obj.Id),
		Type:         obj.Type,
		AttributedTo: obj.OriginalActorId,
		Content:      obj.Properties.Content,
		Published:    obj.Properties.Published,
		URL:          domain.ObjectURI(s.domain(), obj.Id),
		To:           []string{publicCollection},
	}
}
