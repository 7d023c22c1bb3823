// Package discord - the CustomID wire format.
//
// Every interactive component the bot sends carries a routing token of the
// form
//
//	<scope>:<primary>:<secondary>:<tertiary_0>:<tertiary_1>:...
//
// The scope selects a handler table, primary is the handler's registration
// name and secondary/tertiary are handler-defined arguments. Because the
// token names a handler instead of holding a closure, a click on a message
// sent before a restart still routes correctly.
package discord

import (
	"errors"
	"fmt"
	"strings"
)

// Scope selects which handler table a CustomID dispatches into
type Scope string

const (
	ScopeButton    Scope = "button"
	ScopeModal     Scope = "modal"
	ScopeCollector Scope = "collector"
	ScopeInstance  Scope = "instance"
)

// Discord rejects component ids longer than 100 characters.
const maxCustomIDLength = 100

const customIDDelimiter = ":"

// ErrInvalidCustomID is returned when a component id does not parse
var ErrInvalidCustomID = errors.New("invalid custom id")

// CustomID is the decoded routing token
type CustomID struct {
	Scope     Scope
	Primary   string
	Secondary string
	Tertiary  []string
}

// NewCustomID builds a CustomID for encoding
func NewCustomID(scope Scope, primary, secondary string, tertiary ...string) CustomID {
	return CustomID{Scope: scope, Primary: primary, Secondary: secondary, Tertiary: tertiary}
}

// Encode renders the wire format. Fields containing the delimiter are
// rejected: an unescaped colon would silently corrupt routing.
func (c CustomID) Encode() (string, error) {
	fields := make([]string, 0, 3+len(c.Tertiary))
	fields = append(fields, string(c.Scope), c.Primary, c.Secondary)
	fields = append(fields, c.Tertiary...)

	for _, f := range fields {
		if strings.Contains(f, customIDDelimiter) {
			return "", fmt.Errorf("%w: field %q contains the delimiter", ErrInvalidCustomID, f)
		}
	}

	encoded := strings.Join(fields, customIDDelimiter)
	if len(encoded) > maxCustomIDLength {
		return "", fmt.Errorf("%w: encoded id is %d characters, max is %d", ErrInvalidCustomID, len(encoded), maxCustomIDLength)
	}
	return encoded, nil
}

// MustEncode is Encode for ids built from known-safe constants
func (c CustomID) MustEncode() string {
	encoded, err := c.Encode()
	if err != nil {
		panic(err)
	}
	return encoded
}

// DecodeCustomID parses the wire format. At least three segments are
// required; anything shorter is not one of our tokens.
func DecodeCustomID(raw string) (CustomID, error) {
	segments := strings.Split(raw, customIDDelimiter)
	if len(segments) < 3 {
		return CustomID{}, fmt.Errorf("%w: %q has %d segments, need at least 3", ErrInvalidCustomID, raw, len(segments))
	}

	return CustomID{
		Scope:     Scope(segments[0]),
		Primary:   segments[1],
		Secondary: segments[2],
		Tertiary:  segments[3:],
	}, nil
}
