package web

import (
	"net"
	"strings"

	"github.com/deemkeen/statusbridge/db"
	"github.com/deemkeen/statusbridge/timeline"
	"github.com/deemkeen/statusbridge/util"
	"github.com/gin-gonic/gin"
)

const (
	jsonContentType     = "application/json; charset=utf-8"
	activityContentType = "application/activity+json; charset=utf-8"
	jrdContentType      = "application/jrd+json; charset=utf-8"
	xmlContentType      = "application/xml; charset=utf-8"

	activityStreamsContext = "https://www.w3.org/ns/activitystreams"
	securityContext        = "https://w3id.org/security/v1"
	publicCollection       = "https://www.w3.org/ns/activitystreams#Public"
)

// Server holds what the HTTP handlers share.
type Server struct {
	conf        *util.AppConfig
	db          *db.DB
	statuses    *timeline.Service
	metrics     *Metrics
	instanceKey *util.RsaKeyPair
}

// domain is the host name federation documents are published under.
func (s *Server) domain() string {
	return s.conf.Conf.SslDomain
}

// requestHost is the host the client addressed, without port. Local handles are
// resolved against it.
func (s *Server) requestHost(c *gin.Context) string {
	host := c.Request.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return s.domain()
	}
	return host
}
