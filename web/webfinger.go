package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/deemkeen/statusbridge/activitypub"
	"github.com/deemkeen/statusbridge/db"
	"github.com/deemkeen/statusbridge/domain"
	"github.com/deemkeen/statusbridge/timeline"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func webfingerNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
}

// handleWebfinger answers acct: lookups for actors hosted here.
func (s *Server) handleWebfinger(c *gin.Context) {
	c.Header("Content-Type", jrdContentType)

	resource := c.Query("resource")
	if !strings.HasPrefix(resource, "acct:") {
		webfingerNotFound(c)
		return
	}

	res := timeline.Classify(resource, s.domain())
	if res.Kind != timeline.Local {
		webfingerNotFound(c)
		return
	}

	actor, err := s.db.ReadActorById(c.Request.Context(), domain.LocalActorURL(s.domain(), res.Handle.LocalPart))
	if err != nil || !actor.Local {
		if err != nil && !errors.Is(err, db.ErrActorNotFound) {
			log.Error().Err(err).Str("resource", resource).Msg("Webfinger lookup failed")
		}
		webfingerNotFound(c)
		return
	}

	c.JSON(http.StatusOK, activitypub.WebfingerResponse{
		Subject: fmt.Sprintf("acct:%s@%s", actor.PreferredUsername, s.domain()),
		Aliases: []string{actor.Id},
		Links: []activitypub.WebfingerLink{
			{Rel: "self", Type: activitypub.ActivityJSONType, Href: actor.Id},
		},
	})
}
