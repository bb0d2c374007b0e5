// Package tool declares the fixed catalog of operations callable by the
// model. Each tool carries the minimum role required; the orchestrator only
// ever sees a role-scoped view, and Execute re-checks the gate so a
// hallucinated out-of-role call is rejected instead of run.
package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/vinayakrana/Hotel-Chat-BE/agent/contract"
	ledgerx "github.com/vinayakrana/Hotel-Chat-BE/agent/ledger"
)

const (
	ToolSearchRooms        = "search_rooms"
	ToolBookRoom           = "book_room"
	ToolCancelBooking      = "cancel_booking"
	ToolGetMyBookings      = "get_my_bookings"
	ToolGetRoomDetails     = "get_room_details"
	ToolAnswerFAQ          = "answer_faq"
	ToolGetAllBookings     = "get_all_bookings"
	ToolGetTodaysCheckins  = "get_todays_checkins"
	ToolGetAvailableCounts = "get_available_rooms_count"
	ToolUpdateRoomStatus   = "update_room_status"
)

// Handler turns validated arguments into ledger/faq calls and a
// human-readable result. A returned error becomes the tool's textual result;
// handlers never abort the orchestration loop.
type Handler func(ctx context.Context, caller contractx.Identity, rawArgs string) (string, error)

type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
	MinRole     contractx.Role
	Handler     Handler
}

type Catalog struct {
	tools []Tool
	index map[string]*Tool
}

// New builds the full ten-tool catalog bound to the ledger and faq
// collaborators. now supplies "today" for the check-ins tool.
func New(ledger *ledgerx.Ledger, faq contractx.FaqResolver, now func() time.Time) *Catalog {
	if now == nil {
		now = time.Now
	}
	h := handlers{ledger: ledger, faq: faq, now: now}

	c := &Catalog{tools: h.declare()}
	c.index = make(map[string]*Tool, len(c.tools))
	for i := range c.tools {
		c.index[c.tools[i].Name] = &c.tools[i]
	}
	return c
}

// ForRole returns the catalog subset reachable by role, in declaration
// order. Guests see six tools; staff sees all ten.
func (c *Catalog) ForRole(role contractx.Role) []Tool {
	out := make([]Tool, 0, len(c.tools))
	for _, t := range c.tools {
		if role.Allows(t.MinRole) {
			out = append(out, t)
		}
	}
	return out
}

// SchemasFor returns the tool schemas advertised to the model for role.
func (c *Catalog) SchemasFor(role contractx.Role) []contractx.ToolSchema {
	scoped := c.ForRole(role)
	schemas := make([]contractx.ToolSchema, 0, len(scoped))
	for _, t := range scoped {
		schemas = append(schemas, contractx.ToolSchema{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Parameters,
		})
	}
	return schemas
}

// NamesFor lists the tool names reachable by role.
func (c *Catalog) NamesFor(role contractx.Role) []string {
	scoped := c.ForRole(role)
	names := make([]string, 0, len(scoped))
	for _, t := range scoped {
		names = append(names, t.Name)
	}
	return names
}

// Execute runs one requested tool call on behalf of caller. It always
// returns a textual result: unknown tools, out-of-role tools, handler
// errors, and handler panics all degrade to explanatory text so the loop
// never special-cases tool failures.
func (c *Catalog) Execute(ctx context.Context, caller contractx.Identity, call contractx.ToolCall) (result contractx.ToolResult) {
	result = contractx.ToolResult{CallID: call.ID, Tool: call.Name}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("tool", call.Name).Interface("panic", r).Msg("tool handler panicked")
			result.Content = fmt.Sprintf("Error: tool %s failed unexpectedly.", call.Name)
		}
	}()

	t, ok := c.index[call.Name]
	if !ok {
		result.Content = fmt.Sprintf("Error: unknown tool %q.", call.Name)
		return result
	}
	if !caller.Role.Allows(t.MinRole) {
		log.Warn().
			Str("tool", call.Name).
			Str("caller", caller.Email).
			Str("role", string(caller.Role)).
			Msg("rejected out-of-role tool call")
		result.Content = fmt.Sprintf("Error: tool %s is not available for role %s.", call.Name, caller.Role)
		return result
	}

	text, err := t.Handler(ctx, caller, call.Arguments)
	if err != nil {
		result.Content = fmt.Sprintf("Error: %v", err)
		return result
	}
	result.Content = text
	return result
}
