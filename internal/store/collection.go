// Package store owns the ordered list of a user's characters.
//
// The functions in this file are pure: they never modify the collection they
// are given and return a new one. Identity is dual. A record is known by its
// server id once the remote store has assigned one, and by its client local
// id for its whole lifetime.
package store

import (
	"character-builder/internal/domain"
)

// Collection is ordered by insertion. Updates replace in place.
type Collection []domain.RawCharacter

func (c Collection) Clone() Collection {
	if c == nil {
		return Collection{}
	}
	out := make(Collection, len(c))
	for i, r := range c {
		out[i] = r.Clone()
	}
	return out
}

// FindByEitherID prefers a server id match over a local id match.
func FindByEitherID(c Collection, target string) (domain.RawCharacter, bool) {
	if target == "" {
		return domain.RawCharacter{}, false
	}
	for _, r := range c {
		if r.ID == target {
			return r, true
		}
	}
	for _, r := range c {
		if r.LocalID == target {
			return r, true
		}
	}
	return domain.RawCharacter{}, false
}

// IndexOf resolves the slot a record occupies: the first server id match
// when both sides carry one, else the first local id match, else -1.
func IndexOf(c Collection, r domain.RawCharacter) int {
	if r.ID != "" {
		for i, existing := range c {
			if existing.ID != "" && existing.ID == r.ID {
				return i
			}
		}
	}
	if r.LocalID != "" {
		for i, existing := range c {
			if existing.LocalID != "" && existing.LocalID == r.LocalID {
				return i
			}
		}
	}
	return -1
}

// Upsert replaces the matching record in place or appends a new one.
func Upsert(c Collection, r domain.RawCharacter) Collection {
	out := c.Clone()
	if i := IndexOf(out, r); i >= 0 {
		out[i] = r.Clone()
		return out
	}
	return append(out, r.Clone())
}

// Remove drops every record sharing the target's local id or server id.
// Empty ids never match.
func Remove(c Collection, r domain.RawCharacter) Collection {
	out := make(Collection, 0, len(c))
	for _, existing := range c {
		if r.LocalID != "" && existing.LocalID == r.LocalID {
			continue
		}
		if r.ID != "" && existing.ID == r.ID {
			continue
		}
		out = append(out, existing.Clone())
	}
	return out
}

// Reconcile absorbs a server echo. An echo older than the local record only
// contributes the server owned fields; otherwise it is upserted as is.
func Reconcile(c Collection, echo domain.RawCharacter) Collection {
	i := IndexOf(c, echo)
	if i < 0 || c[i].ChangedAt <= echo.ChangedAt {
		return Upsert(c, echo)
	}

	out := c.Clone()
	out[i].ID = echo.ID
	out[i].UserID = echo.UserID
	return out
}
