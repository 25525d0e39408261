package client

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Phase is the state of one optimistic reaction toggle.
type Phase int

const (
	Idle Phase = iota
	Pending
	Committed
	RolledBack
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled_back"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// ErrPending is returned when a toggle for the same entry and emoji is
// already in flight.
var ErrPending = errors.New("reaction toggle already pending")

// Toggler performs the remote toggle. *Client satisfies it.
type Toggler interface {
	ToggleReaction(ctx context.Context, entryID uuid.UUID, emoji string) (ToggleResult, error)
}

type reactionKey struct {
	entry uuid.UUID
	emoji string
}

// Reactions keeps reaction summaries per entry and applies toggles
// optimistically: the local patch is shown immediately, replaced by the
// server's summary on success and undone on failure.
type Reactions struct {
	api Toggler

	mu      sync.Mutex
	byEntry map[uuid.UUID][]ReactionCount
	phases  map[reactionKey]Phase
}

func NewReactions(api Toggler) *Reactions {
	return &Reactions{
		api:     api,
		byEntry: make(map[uuid.UUID][]ReactionCount),
		phases:  make(map[reactionKey]Phase),
	}
}

// Set replaces an entry's summary, e.g. after a group day load.
func (r *Reactions) Set(entryID uuid.UUID, counts []ReactionCount) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byEntry[entryID] = slices.Clone(counts)
}

// Get returns a copy of an entry's current summary.
func (r *Reactions) Get(entryID uuid.UUID) []ReactionCount {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.byEntry[entryID])
}

func (r *Reactions) Phase(entryID uuid.UUID, emoji string) Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phases[reactionKey{entryID, emoji}]
}

// Toggle flips my reaction locally, then asks the server. On failure only this
// toggle's patch is undone, so other emoji toggled meanwhile keep their state.
func (r *Reactions) Toggle(ctx context.Context, entryID uuid.UUID, emoji string) error {
	key := reactionKey{entryID, emoji}

	r.mu.Lock()
	if r.phases[key] == Pending {
		r.mu.Unlock()
		return ErrPending
	}
	r.byEntry[entryID] = applyToggle(r.byEntry[entryID], emoji)
	r.phases[key] = Pending
	r.mu.Unlock()

	res, err := r.api.ToggleReaction(ctx, entryID, emoji)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.byEntry[entryID] = applyToggle(r.byEntry[entryID], emoji)
		r.phases[key] = RolledBack
		return err
	}
	r.phases[key] = Committed
	r.byEntry[entryID] = r.merge(entryID, res.Reactions)
	return nil
}

// merge takes the server's summary except for emoji that still have a toggle
// in flight, which keep their local optimistic count. Caller holds r.mu.
func (r *Reactions) merge(entryID uuid.UUID, server []ReactionCount) []ReactionCount {
	pending := func(emoji string) bool { return r.phases[reactionKey{entryID, emoji}] == Pending }
	local := r.byEntry[entryID]
	localCount := func(emoji string) (ReactionCount, bool) {
		i := slices.IndexFunc(local, func(c ReactionCount) bool { return c.Emoji == emoji })
		if i < 0 {
			return ReactionCount{}, false
		}
		return local[i], true
	}

	out := make([]ReactionCount, 0, len(server))
	for _, c := range server {
		if !pending(c.Emoji) {
			out = append(out, c)
		} else if lc, ok := localCount(c.Emoji); ok {
			out = append(out, lc)
		}
	}
	for _, c := range local {
		if pending(c.Emoji) && !slices.ContainsFunc(out, func(o ReactionCount) bool { return o.Emoji == c.Emoji }) {
			out = append(out, c)
		}
	}
	return out
}

// applyToggle returns counts with my reaction for emoji flipped. A count that
// drops to zero is removed; a new emoji is appended. counts is not modified.
func applyToggle(counts []ReactionCount, emoji string) []ReactionCount {
	out := slices.Clone(counts)
	i := slices.IndexFunc(out, func(c ReactionCount) bool { return c.Emoji == emoji })
	switch {
	case i < 0:
		return append(out, ReactionCount{Emoji: emoji, Count: 1, Reacted: true})
	case out[i].Reacted:
		out[i].Count--
		out[i].Reacted = false
		if out[i].Count <= 0 {
			return slices.Delete(out, i, i+1)
		}
	default:
		out[i].Count++
		out[i].Reacted = true
	}
	return out
}
