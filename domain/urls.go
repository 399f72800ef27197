package domain

import "fmt"

// LocalActorURL is the canonical id of a locally hosted actor.
func LocalActorURL(host, username string) string {
	return fmt.Sprintf("https://%s/users/%s", host, username)
}

// ObjectURI is the public URI of a stored object.
func ObjectURI(host, objectId string) string {
	return fmt.Sprintf("https://%s/ap/o/%s", host, objectId)
}
