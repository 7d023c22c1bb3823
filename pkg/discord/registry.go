// Package discord - the component handler registry.
package discord

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// ErrHandlerNotRegistered is returned when a decoded CustomID names a
// handler no one registered. This is a consistency error, not user input.
var ErrHandlerNotRegistered = errors.New("no handler registered for custom id")

// ComponentContext carries one component or modal interaction to its handler
type ComponentContext struct {
	Session     *discordgo.Session
	Interaction *discordgo.InteractionCreate
	ID          CustomID
}

// User returns the user who triggered the interaction
func (ctx *ComponentContext) User() *discordgo.User {
	if ctx.Interaction.Member != nil {
		return ctx.Interaction.Member.User
	}
	return ctx.Interaction.User
}

// Respond sends an interaction response
func (ctx *ComponentContext) Respond(resp *discordgo.InteractionResponse) error {
	return ctx.Session.InteractionRespond(ctx.Interaction.Interaction, resp)
}

// ReplyEphemeral sends an ephemeral text reply
func (ctx *ComponentContext) ReplyEphemeral(content string) error {
	return ctx.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// ComponentHandler handles one button, select or modal submit
type ComponentHandler func(ctx *ComponentContext) error

// Registry maps scope and registration name to handlers. Tables are filled
// once at startup and read-only afterwards; dispatch never mutates them.
type Registry struct {
	tables map[Scope]map[string]ComponentHandler
	mu     sync.RWMutex
	frozen bool
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{
		tables: map[Scope]map[string]ComponentHandler{
			ScopeButton:    {},
			ScopeModal:     {},
			ScopeCollector: {},
			ScopeInstance:  {},
		},
	}
}

// Register adds a handler under a scope and name. Registration happens
// during startup only; registering after Freeze or re-using a name panics,
// because both are programming errors that would corrupt routing.
func (r *Registry) Register(scope Scope, name string, handler ComponentHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		panic(fmt.Sprintf("registry: registration of %s/%s after freeze", scope, name))
	}

	table, ok := r.tables[scope]
	if !ok {
		panic(fmt.Sprintf("registry: unknown scope %q", scope))
	}
	if _, exists := table[name]; exists {
		panic(fmt.Sprintf("registry: duplicate handler %s/%s", scope, name))
	}

	table[name] = handler
	logger.Debug(fmt.Sprintf("Handler registrado: %s/%s", scope, name), "Registry")
}

// Freeze marks the registration phase as finished
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Lookup resolves a decoded CustomID to its handler
func (r *Registry) Lookup(id CustomID) (ComponentHandler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	table, ok := r.tables[id.Scope]
	if !ok {
		return nil, fmt.Errorf("%w: scope %q", ErrHandlerNotRegistered, id.Scope)
	}
	handler, ok := table[id.Primary]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrHandlerNotRegistered, id.Scope, id.Primary)
	}
	return handler, nil
}

// Dispatch decodes a raw component id and runs its handler
func (r *Registry) Dispatch(s *discordgo.Session, i *discordgo.InteractionCreate, raw string) error {
	id, err := DecodeCustomID(raw)
	if err != nil {
		return err
	}

	handler, err := r.Lookup(id)
	if err != nil {
		return err
	}

	return handler(&ComponentContext{Session: s, Interaction: i, ID: id})
}
