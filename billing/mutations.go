package billing

import (
	"github.com/samber/lo"
	"github.com/warp/billing-engine/generic"
)

// =============================================================================
// SNAPSHOT MUTATIONS - Copy-on-write, the input snapshot is never modified
// =============================================================================

// Mutation turns one snapshot into the next.
type Mutation func(Snapshot) (Snapshot, error)

// clone copies the slices so the result can be changed freely.
func (s Snapshot) clone() Snapshot {
	return Snapshot{
		Clients:     append(make([]Client, 0, len(s.Clients)), s.Clients...),
		WorkEntries: append(make([]WorkEntry, 0, len(s.WorkEntries)), s.WorkEntries...),
		UserProfile: s.UserProfile,
	}
}

func AddClient(c Client) Mutation {
	return func(s Snapshot) (Snapshot, error) {
		if err := c.Validate(); err != nil {
			return s, err
		}
		if _, exists := s.Client(c.ID); exists {
			return s, generic.ErrDuplicateID
		}
		next := s.clone()
		next.Clients = append(next.Clients, c)
		return next, nil
	}
}

func UpdateClient(c Client) Mutation {
	return func(s Snapshot) (Snapshot, error) {
		if err := c.Validate(); err != nil {
			return s, err
		}
		_, i, ok := lo.FindIndexOf(s.Clients, func(existing Client) bool { return existing.ID == c.ID })
		if !ok {
			return s, generic.ErrClientNotFound
		}
		next := s.clone()
		next.Clients[i] = c
		return next, nil
	}
}

// DeleteClient removes the client and all of its work entries in one step.
func DeleteClient(id string) Mutation {
	return func(s Snapshot) (Snapshot, error) {
		if _, ok := s.Client(id); !ok {
			return s, generic.ErrClientNotFound
		}
		return Snapshot{
			Clients:     lo.Reject(s.Clients, func(c Client, _ int) bool { return c.ID == id }),
			WorkEntries: lo.Reject(s.WorkEntries, func(e WorkEntry, _ int) bool { return e.ClientID == id }),
			UserProfile: s.UserProfile,
		}, nil
	}
}

// AddWorkEntry appends an entry. The client must exist at the time of the
// write; aggregation later tolerates dangling references anyway.
func AddWorkEntry(e WorkEntry) Mutation {
	return func(s Snapshot) (Snapshot, error) {
		if err := e.Validate(); err != nil {
			return s, err
		}
		if _, ok := s.Client(e.ClientID); !ok {
			return s, generic.ErrClientNotFound
		}
		if _, exists := s.Entry(e.ID); exists {
			return s, generic.ErrDuplicateID
		}
		next := s.clone()
		next.WorkEntries = append(next.WorkEntries, e)
		return next, nil
	}
}

// UpdateWorkEntry replaces the entry in place, keeping its position.
func UpdateWorkEntry(e WorkEntry) Mutation {
	return func(s Snapshot) (Snapshot, error) {
		if err := e.Validate(); err != nil {
			return s, err
		}
		if _, ok := s.Client(e.ClientID); !ok {
			return s, generic.ErrClientNotFound
		}
		return replaceWorkEntry(e)(s)
	}
}

// replaceWorkEntry swaps the stored entry with the same id. The client
// reference is not checked, so entries imported without their client can
// still be re-dated.
func replaceWorkEntry(e WorkEntry) Mutation {
	return func(s Snapshot) (Snapshot, error) {
		if err := e.Validate(); err != nil {
			return s, err
		}
		_, i, ok := lo.FindIndexOf(s.WorkEntries, func(existing WorkEntry) bool { return existing.ID == e.ID })
		if !ok {
			return s, generic.ErrEntryNotFound
		}
		next := s.clone()
		next.WorkEntries[i] = e
		return next, nil
	}
}

func DeleteWorkEntry(id string) Mutation {
	return func(s Snapshot) (Snapshot, error) {
		if _, ok := s.Entry(id); !ok {
			return s, generic.ErrEntryNotFound
		}
		next := s.clone()
		next.WorkEntries = lo.Reject(next.WorkEntries, func(e WorkEntry, _ int) bool { return e.ID == id })
		return next, nil
	}
}

func SetUserProfile(p UserProfile) Mutation {
	return func(s Snapshot) (Snapshot, error) {
		next := s.clone()
		next.UserProfile = p
		return next, nil
	}
}

// ReplaceSnapshot swaps the whole document after validating every record.
func ReplaceSnapshot(replacement Snapshot) Mutation {
	return func(s Snapshot) (Snapshot, error) {
		if err := replacement.Validate(); err != nil {
			return s, err
		}
		return replacement.clone(), nil
	}
}

// Validate checks every record and id uniqueness. Entries referencing a
// missing client are accepted: imported documents may predate cascades.
func (s Snapshot) Validate() error {
	seen := map[string]bool{}
	for _, c := range s.Clients {
		if err := c.Validate(); err != nil {
			return err
		}
		if seen[c.ID] {
			return generic.ErrDuplicateID
		}
		seen[c.ID] = true
	}
	seen = map[string]bool{}
	for _, e := range s.WorkEntries {
		if err := e.Validate(); err != nil {
			return err
		}
		if seen[e.ID] {
			return generic.ErrDuplicateID
		}
		seen[e.ID] = true
	}
	return nil
}
