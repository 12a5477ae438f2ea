package router

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAddress  = errors.New("invalid address")
	ErrUnknownCommand  = errors.New("unknown command")
	ErrMissingArgument = errors.New("missing argument")
)

// Address error reasons.
const (
	ReasonInvalidAddress  = "invalid address"
	ReasonInvalidTargetID = "invalid target id"
)

// AddressError reports an address that does not select a recipient.
type AddressError struct {
	Address string
	Reason  string
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("%s: %q", e.Reason, e.Address)
}

func (e *AddressError) Is(target error) bool {
	return target == ErrInvalidAddress
}

// UnknownCommandError reports a command segment missing from the table.
type UnknownCommandError struct {
	Command string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command: %q", e.Command)
}

func (e *UnknownCommandError) Is(target error) bool {
	return target == ErrUnknownCommand
}

// ArgumentError reports a command invoked without a required argument.
type ArgumentError struct {
	Command string
	Want    int
	Got     int
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("command %q needs %d argument(s), got %d", e.Command, e.Want, e.Got)
}

func (e *ArgumentError) Is(target error) bool {
	return target == ErrMissingArgument
}
