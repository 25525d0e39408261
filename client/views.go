package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// ErrStale is returned by a load whose result was discarded because a newer
// load of the same view started after it.
var ErrStale = errors.New("stale response discarded")

// Latest hands out monotonically increasing tokens. Only the holder of the
// most recent token may apply its result.
type Latest struct {
	n atomic.Uint64
}

// Next issues a new token, invalidating every earlier one.
func (l *Latest) Next() uint64 { return l.n.Add(1) }

// IsCurrent reports whether tok is the most recently issued token.
func (l *Latest) IsCurrent(tok uint64) bool { return l.n.Load() == tok }

// view holds one screen's derived state, replaced only by the latest load.
// A failed current load resets the state to its zero value.
type view[T any] struct {
	latest Latest

	mu    sync.Mutex
	state T
}

func (v *view[T]) load(ctx context.Context, fetch func(context.Context) (T, error)) (T, error) {
	tok := v.latest.Next()
	res, err := fetch(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.latest.IsCurrent(tok) {
		var zero T
		return zero, ErrStale
	}
	if err != nil {
		var zero T
		v.state = zero
		return zero, err
	}
	v.state = res
	return res, nil
}

// State returns the last applied result.
func (v *view[T]) State() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// DayView is my day screen.
type DayView struct {
	api *Client
	view[DaySummary]
}

func NewDayView(api *Client) *DayView { return &DayView{api: api} }

// Load fetches date. Switching dates quickly never lets an older date's
// response overwrite a newer one.
func (v *DayView) Load(ctx context.Context, date string) (DaySummary, error) {
	return v.load(ctx, func(ctx context.Context) (DaySummary, error) {
		return v.api.Day(ctx, date)
	})
}

// GroupView is the friends screen for a date and member selection.
type GroupView struct {
	api *Client
	view[GroupDay]
}

func NewGroupView(api *Client) *GroupView { return &GroupView{api: api} }

func (v *GroupView) Load(ctx context.Context, date string, members []uuid.UUID) (GroupDay, error) {
	return v.load(ctx, func(ctx context.Context) (GroupDay, error) {
		if len(members) == 0 {
			return GroupDay{Date: date, TotalsByUser: map[uuid.UUID]Totals{}}, nil
		}
		return v.api.GroupDay(ctx, date, members)
	})
}

// CopyView is the quick-copy picker.
type CopyView struct {
	api *Client
	view[CopyCandidates]
}

func NewCopyView(api *Client) *CopyView { return &CopyView{api: api} }

func (v *CopyView) Load(ctx context.Context, query CopyQuery) (CopyCandidates, error) {
	return v.load(ctx, func(ctx context.Context) (CopyCandidates, error) {
		return v.api.CopyCandidates(ctx, query)
	})
}
