package timeline

import (
	"net"
	"regexp"
	"strings"
)

// Kind is the result of classifying an account identifier.
type Kind int

const (
	Invalid Kind = iota
	Local
	Remote
)

func (k Kind) String() string {
	switch k {
	case Local:
		return "local"
	case Remote:
		return "remote"
	default:
		return "invalid"
	}
}

// Handle is a parsed account identifier. An empty Domain means none was given.
type Handle struct {
	LocalPart string
	Domain    string
}

// Acct renders the handle as localPart@domain, or just localPart without a domain.
func (h Handle) Acct() string {
	if h.Domain == "" {
		return h.LocalPart
	}
	return h.LocalPart + "@" + h.Domain
}

// Resolution is a classified handle together with the host the request was addressed to.
type Resolution struct {
	Kind   Kind
	Handle Handle
	Host   string
}

var (
	localPartRegex = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	domainRegex    = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9-]*[A-Za-z0-9])?(\.[A-Za-z0-9]([A-Za-z0-9-]*[A-Za-z0-9])?)*(:[0-9]{1,5})?$`)
)

// Classify parses raw into a Handle and decides whether it names an actor hosted on
// requestHost. It never fails; malformed input yields Kind Invalid.
func Classify(raw, requestHost string) Resolution {
	res := Resolution{Kind: Invalid, Host: requestHost}

	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "acct:")
	s = strings.TrimPrefix(s, "@")

	parts := strings.Split(s, "@")
	if len(parts) > 2 {
		return res
	}

	handle := Handle{LocalPart: parts[0]}
	if len(parts) == 2 {
		if parts[1] == "" {
			return res
		}
		handle.Domain = strings.ToLower(parts[1])
	}
	if !localPartRegex.MatchString(handle.LocalPart) {
		return res
	}
	if handle.Domain != "" && !domainRegex.MatchString(handle.Domain) {
		return res
	}

	res.Handle = handle
	if handle.Domain == "" || sameHost(handle.Domain, requestHost) {
		res.Kind = Local
	} else {
		res.Kind = Remote
	}
	return res
}

func sameHost(domain, requestHost string) bool {
	if requestHost == "" {
		return false
	}
	if strings.EqualFold(domain, requestHost) {
		return true
	}
	// the request host may carry a port the handle omits
	if host, _, err := net.SplitHostPort(requestHost); err == nil {
		return strings.EqualFold(domain, host)
	}
	return false
}
