package router

import (
	"strconv"
	"strings"

	"evalgo.org/oscbridge/internal/player"
)

// ParsedAddress is the result of resolving one OSC address.
type ParsedAddress struct {
	Recipient player.Recipient
	Command   string
}

// Resolver turns OSC addresses into recipients.
//
// Addresses use one of two forms:
//
//	/<command>        every target
//	/<n>/<command>    target n, counting from 1
//
// Empty segments are ignored, so "/1/play" and "1/play/" are equivalent.
// Target id 0 is never valid.
type Resolver struct {
	group *player.Group
}

// NewResolver creates a resolver over the members of group.
func NewResolver(group *player.Group) *Resolver {
	return &Resolver{group: group}
}

// Resolve parses address. The returned error is always an *AddressError.
func (r *Resolver) Resolve(address string) (ParsedAddress, error) {
	parts := segments(address)

	switch len(parts) {
	case 1:
		return ParsedAddress{Recipient: r.group, Command: parts[0]}, nil
	case 2:
		id, err := strconv.Atoi(parts[0])
		if err != nil {
			return ParsedAddress{}, &AddressError{Address: address, Reason: ReasonInvalidTargetID}
		}
		target, ok := r.group.Member(id)
		if !ok {
			return ParsedAddress{}, &AddressError{Address: address, Reason: ReasonInvalidTargetID}
		}
		return ParsedAddress{Recipient: target, Command: parts[1]}, nil
	default:
		return ParsedAddress{}, &AddressError{Address: address, Reason: ReasonInvalidAddress}
	}
}

func segments(address string) []string {
	raw := strings.Split(address, "/")
	parts := raw[:0]
	for _, p := range raw {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
