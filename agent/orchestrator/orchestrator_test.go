package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	contractx "github.com/vinayakrana/Hotel-Chat-BE/agent/contract"
	ledgerx "github.com/vinayakrana/Hotel-Chat-BE/agent/ledger"
	toolx "github.com/vinayakrana/Hotel-Chat-BE/agent/tool"
)

var (
	testGuest = contractx.Identity{Email: "guest@hotel.com", Name: "Guest User", Role: contractx.RoleGuest}
	testStaff = contractx.Identity{Email: "staff@hotel.com", Name: "Staff Member", Role: contractx.RoleStaff}
)

// fakeModel replays scripted turns and records what it received.
type fakeModel struct {
	turns []contractx.Message
	err   error

	calls   int
	seen    [][]contractx.Message
	schemas []contractx.ToolSchema
}

func (f *fakeModel) Complete(_ context.Context, messages []contractx.Message, schemas []contractx.ToolSchema) (contractx.Message, error) {
	f.calls++
	f.seen = append(f.seen, append([]contractx.Message(nil), messages...))
	f.schemas = schemas
	if f.err != nil {
		return contractx.Message{}, f.err
	}
	if f.calls > len(f.turns) {
		return contractx.Message{}, fmt.Errorf("unscripted call %d", f.calls)
	}
	return f.turns[f.calls-1], nil
}

type fakeFaq struct{}

func (fakeFaq) Resolve(context.Context, string, int) ([]string, error) { return nil, nil }

func newTestCatalog(t *testing.T) *toolx.Catalog {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := ledgerx.OpenDB(ledgerx.DBConfig{Driver: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	if err := ledgerx.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := ledgerx.SeedRooms(ctx, db); err != nil {
		t.Fatalf("seed rooms: %v", err)
	}

	clock := func() time.Time { return time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC) }
	return toolx.New(ledgerx.New(db).WithClock(clock), fakeFaq{}, clock)
}

func newOrchestrator(t *testing.T, model contractx.ChatModel, cfg Config) *Orchestrator {
	t.Helper()
	o, err := New(model, newTestCatalog(t), cfg)
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	return o
}

func TestNewValidatesDependencies(t *testing.T) {
	t.Parallel()

	if _, err := New(nil, newTestCatalog(t), Config{}); err == nil {
		t.Fatal("expected error for nil model")
	}
	if _, err := New(&fakeModel{}, nil, Config{}); err == nil {
		t.Fatal("expected error for nil catalog")
	}
}

func TestExchangeRejectsEmptyMessage(t *testing.T) {
	t.Parallel()

	o := newOrchestrator(t, &fakeModel{}, Config{})
	if _, err := o.Exchange(context.Background(), testGuest, "   "); !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected ErrInvalidMessage, got %v", err)
	}
}

func TestExchangePlainAnswer(t *testing.T) {
	t.Parallel()

	model := &fakeModel{turns: []contractx.Message{
		{Role: contractx.MessageRoleAssistant, Content: "  Welcome to the hotel!  "},
	}}
	o := newOrchestrator(t, model, Config{})

	res, err := o.Exchange(context.Background(), testGuest, "hi")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if res.Reply != "Welcome to the hotel!" {
		t.Fatalf("expected trimmed reply, got %q", res.Reply)
	}
	if res.Rounds != 1 || res.ToolCalls != 0 {
		t.Fatalf("expected 1 round 0 tool calls, got %+v", res)
	}

	// The first call sees exactly the seeded system + user history.
	first := model.seen[0]
	if len(first) != 2 {
		t.Fatalf("expected 2 seed messages, got %d", len(first))
	}
	if first[0].Role != contractx.MessageRoleSystem || first[1].Role != contractx.MessageRoleUser {
		t.Fatalf("unexpected seed roles: %s, %s", first[0].Role, first[1].Role)
	}
	if first[1].Content != "hi" {
		t.Fatalf("expected user text, got %q", first[1].Content)
	}
}

func TestExchangeAdvertisesRoleScopedSchemas(t *testing.T) {
	t.Parallel()

	guestModel := &fakeModel{turns: []contractx.Message{{Role: contractx.MessageRoleAssistant, Content: "ok"}}}
	o := newOrchestrator(t, guestModel, Config{})
	if _, err := o.Exchange(context.Background(), testGuest, "hi"); err != nil {
		t.Fatalf("guest exchange: %v", err)
	}
	if len(guestModel.schemas) != 6 {
		t.Fatalf("guest must be advertised 6 tools, got %d", len(guestModel.schemas))
	}

	staffModel := &fakeModel{turns: []contractx.Message{{Role: contractx.MessageRoleAssistant, Content: "ok"}}}
	o = newOrchestrator(t, staffModel, Config{})
	if _, err := o.Exchange(context.Background(), testStaff, "hi"); err != nil {
		t.Fatalf("staff exchange: %v", err)
	}
	if len(staffModel.schemas) != 10 {
		t.Fatalf("staff must be advertised 10 tools, got %d", len(staffModel.schemas))
	}
}

func TestExchangeToolRoundTrip(t *testing.T) {
	t.Parallel()

	model := &fakeModel{turns: []contractx.Message{
		{
			Role: contractx.MessageRoleAssistant,
			ToolCalls: []contractx.ToolCall{
				{ID: "call-1", Name: toolx.ToolGetRoomDetails, Arguments: `{"room_number": "101"}`},
			},
		},
		{Role: contractx.MessageRoleAssistant, Content: "Room 101 is a Single at $80 per night."},
	}}
	o := newOrchestrator(t, model, Config{})

	res, err := o.Exchange(context.Background(), testGuest, "tell me about room 101")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if res.Rounds != 2 || res.ToolCalls != 1 {
		t.Fatalf("expected 2 rounds 1 tool call, got %+v", res)
	}

	// The second call must see the assistant turn plus the tool result.
	second := model.seen[1]
	if len(second) != 4 {
		t.Fatalf("expected 4 messages on round 2, got %d", len(second))
	}
	last := second[3]
	if last.Role != contractx.MessageRoleTool || last.ToolCallID != "call-1" {
		t.Fatalf("expected tool message for call-1, got %+v", last)
	}
	if !strings.Contains(last.Content, "Room 101 Details") {
		t.Fatalf("tool result not fed back to the model: %q", last.Content)
	}
}

func TestExchangeToolResultsKeepRequestOrder(t *testing.T) {
	t.Parallel()

	model := &fakeModel{turns: []contractx.Message{
		{
			Role: contractx.MessageRoleAssistant,
			ToolCalls: []contractx.ToolCall{
				{ID: "call-a", Name: toolx.ToolGetRoomDetails, Arguments: `{"room_number": "101"}`},
				{ID: "call-b", Name: toolx.ToolGetRoomDetails, Arguments: `{"room_number": "201"}`},
				{ID: "call-c", Name: toolx.ToolGetRoomDetails, Arguments: `{"room_number": "301"}`},
			},
		},
		{Role: contractx.MessageRoleAssistant, Content: "done"},
	}}
	o := newOrchestrator(t, model, Config{})

	res, err := o.Exchange(context.Background(), testGuest, "compare rooms")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if res.ToolCalls != 3 {
		t.Fatalf("expected 3 tool calls, got %d", res.ToolCalls)
	}

	second := model.seen[1]
	tail := second[len(second)-3:]
	wantIDs := []string{"call-a", "call-b", "call-c"}
	wantRooms := []string{"Room 101 Details", "Room 201 Details", "Room 301 Details"}
	for i, msg := range tail {
		if msg.ToolCallID != wantIDs[i] {
			t.Fatalf("result %d: expected call id %s, got %s", i, wantIDs[i], msg.ToolCallID)
		}
		if !strings.Contains(msg.Content, wantRooms[i]) {
			t.Fatalf("result %d out of order: %q", i, msg.Content)
		}
	}
}

func TestExchangeOutOfRoleToolDegradesToText(t *testing.T) {
	t.Parallel()

	model := &fakeModel{turns: []contractx.Message{
		{
			Role: contractx.MessageRoleAssistant,
			ToolCalls: []contractx.ToolCall{
				{ID: "call-1", Name: toolx.ToolUpdateRoomStatus, Arguments: `{"room_number": "101", "status": "maintenance"}`},
			},
		},
		{Role: contractx.MessageRoleAssistant, Content: "Sorry, I cannot do that."},
	}}
	o := newOrchestrator(t, model, Config{})

	res, err := o.Exchange(context.Background(), testGuest, "mark 101 as maintenance")
	if err != nil {
		t.Fatalf("exchange must not fail on an out-of-role call: %v", err)
	}
	if res.Reply != "Sorry, I cannot do that." {
		t.Fatalf("unexpected reply: %q", res.Reply)
	}

	second := model.seen[1]
	last := second[len(second)-1]
	if !strings.Contains(last.Content, "not available for role guest") {
		t.Fatalf("expected rejection fed back as tool text, got %q", last.Content)
	}
}

func TestExchangeRoundLimit(t *testing.T) {
	t.Parallel()

	// A model that keeps requesting tools never reaches a final answer.
	loop := contractx.Message{
		Role: contractx.MessageRoleAssistant,
		ToolCalls: []contractx.ToolCall{
			{ID: "call-1", Name: toolx.ToolGetRoomDetails, Arguments: `{"room_number": "101"}`},
		},
	}
	model := &fakeModel{turns: []contractx.Message{loop, loop, loop, loop}}
	o := newOrchestrator(t, model, Config{MaxRounds: 3})

	_, err := o.Exchange(context.Background(), testGuest, "loop forever")
	if !errors.Is(err, contractx.ErrRoundLimit) {
		t.Fatalf("expected ErrRoundLimit, got %v", err)
	}
	if model.calls != 3 {
		t.Fatalf("expected exactly 3 model calls, got %d", model.calls)
	}
}

func TestExchangeModelError(t *testing.T) {
	t.Parallel()

	model := &fakeModel{err: errors.New("upstream 503")}
	o := newOrchestrator(t, model, Config{})

	_, err := o.Exchange(context.Background(), testGuest, "hi")
	if !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("expected ErrModelInvoke, got %v", err)
	}
	if !strings.Contains(err.Error(), "upstream 503") {
		t.Fatalf("expected cause in message, got %v", err)
	}
}
