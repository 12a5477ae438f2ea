package player

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Group is the "all targets" recipient. SendCommand reaches every member
// concurrently and returns once all of them are done, so a broadcast takes
// as long as the slowest member rather than the sum of all members.
type Group struct {
	members []Recipient
	limit   int
}

var _ Recipient = (*Group)(nil)

// NewGroup creates a group over members, in order. maxConcurrency bounds the
// number of in-flight requests; zero or negative means one per member.
func NewGroup(members []Recipient, maxConcurrency int) (*Group, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: a target group needs at least one member", ErrConfiguration)
	}

	limit := maxConcurrency
	if limit <= 0 || limit > len(members) {
		limit = len(members)
	}

	return &Group{
		members: append([]Recipient(nil), members...),
		limit:   limit,
	}, nil
}

// GroupOf wraps targets in a Group.
func GroupOf(targets []*Target, maxConcurrency int) (*Group, error) {
	members := make([]Recipient, len(targets))
	for i, t := range targets {
		members[i] = t
	}
	return NewGroup(members, maxConcurrency)
}

// Len returns the number of members.
func (g *Group) Len() int {
	return len(g.members)
}

// Member returns the member with the given 1-based id.
func (g *Group) Member(id int) (Recipient, bool) {
	if id < 1 || id > len(g.members) {
		return nil, false
	}
	return g.members[id-1], true
}

// SendCommand forwards query to every member and waits for all of them.
func (g *Group) SendCommand(ctx context.Context, query string) {
	var eg errgroup.Group
	eg.SetLimit(g.limit)

	for _, m := range g.members {
		m := m
		eg.Go(func() error {
			m.SendCommand(ctx, query)
			return nil
		})
	}

	_ = eg.Wait()
}
