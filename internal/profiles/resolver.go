// Package profiles resolves user-supplied profile references against the
// backend's profile directory.
package profiles

import (
	"log"
	"strconv"
	"strings"

	"github.com/adpilothq/adpilot-cli/internal/models"
)

// Ordinal is the listing number of a profile ("#2"). It is a session-scoped
// alias assigned per listing response, never a durable key; holding one
// across listings can point it at a different profile.
type Ordinal int

// ParseOrdinal parses "2" or "#2" into an Ordinal. ok is false when ref is
// not ordinal syntax and should be treated as a canonical identifier.
func ParseOrdinal(ref string) (Ordinal, bool) {
	s := strings.TrimSpace(ref)
	s = strings.TrimPrefix(s, "#")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return Ordinal(n), true
}

// Identity is a resolved profile reference: the canonical identifier plus
// display metadata when it came from a listing entry.
type Identity struct {
	ID     string
	Name   string
	Region string
}

// Label returns a short human-readable description of the profile.
func (i Identity) Label() string {
	if i.Name == "" {
		return i.ID
	}
	if i.Region == "" {
		return i.Name
	}
	return i.Name + " (" + i.Region + ")"
}

// Lister is the slice of the API client the resolver needs.
type Lister interface {
	ListProfiles() (*models.ProfileList, error)
}

// Resolver translates profile references. It holds no cache: ordinal
// mappings are defined "as of now", so every ordinal resolution fetches a
// fresh listing.
type Resolver struct {
	client Lister
}

func NewResolver(client Lister) *Resolver {
	return &Resolver{client: client}
}

// Resolve maps ref to an Identity. An ordinal reference is matched against
// a fresh listing; a miss or a failed fetch returns ok=false and the caller
// should point the user at list_profiles. Anything else is treated as an
// already-canonical identifier and returned verbatim with empty metadata —
// existence is validated by whichever operation uses the identifier.
func (r *Resolver) Resolve(ref string) (Identity, bool) {
	ord, isOrdinal := ParseOrdinal(ref)
	if !isOrdinal {
		return Identity{ID: strings.TrimSpace(ref)}, true
	}

	list, err := r.client.ListProfiles()
	if err != nil {
		log.Printf("profile listing failed while resolving %q: %v", ref, err)
		return Identity{}, false
	}

	for _, p := range list.Profiles {
		if Ordinal(p.Number) == ord {
			return Identity{ID: p.ID, Name: p.Name, Region: p.Region}, true
		}
	}
	return Identity{}, false
}

// Lookup matches ref (ordinal or canonical identifier) against a fresh
// listing and returns the full entry. Use this when the caller needs
// activation flags or data status, not just the identifier.
func (r *Resolver) Lookup(ref string) (*models.Profile, bool) {
	list, err := r.client.ListProfiles()
	if err != nil {
		log.Printf("profile listing failed while looking up %q: %v", ref, err)
		return nil, false
	}

	ord, isOrdinal := ParseOrdinal(ref)
	id := strings.TrimSpace(ref)

	for i := range list.Profiles {
		p := &list.Profiles[i]
		if isOrdinal {
			if Ordinal(p.Number) == ord {
				return p, true
			}
		} else if p.ID == id {
			return p, true
		}
	}
	return nil, false
}
