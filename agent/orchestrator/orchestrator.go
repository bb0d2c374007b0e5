// Package orchestrator drives one chat exchange: it repeatedly asks the
// reasoning capability what to do next, dispatches requested tool calls
// through the role-scoped catalog, feeds results back, and stops when the
// model produces a plain answer or the round cap is hit.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/vinayakrana/Hotel-Chat-BE/agent/contract"
	promptx "github.com/vinayakrana/Hotel-Chat-BE/agent/prompt"
	toolx "github.com/vinayakrana/Hotel-Chat-BE/agent/tool"
)

var (
	ErrInvalidMessage = errors.New("message text is empty")
)

// state is the exchange state machine. The message history only grows while
// the machine cycles awaitModel <-> dispatchTools; done is terminal.
type state int

const (
	stateAwaitModel state = iota
	stateDispatchTools
	stateDone
)

const defaultMaxRounds = 10

type Config struct {
	// MaxRounds bounds model invocations per exchange so a misbehaving
	// model cannot keep the loop alive forever.
	MaxRounds int `envconfig:"MAX_ROUNDS" split_words:"true" default:"10"`
}

type Orchestrator struct {
	model   contractx.ChatModel
	catalog *toolx.Catalog

	maxRounds int
	now       func() time.Time
}

func New(model contractx.ChatModel, catalog *toolx.Catalog, cfg Config) (*Orchestrator, error) {
	if model == nil {
		return nil, errors.New("chat model is required")
	}
	if catalog == nil {
		return nil, errors.New("tool catalog is required")
	}

	maxRounds := cfg.MaxRounds
	if maxRounds <= 0 {
		maxRounds = defaultMaxRounds
	}

	return &Orchestrator{
		model:     model,
		catalog:   catalog,
		maxRounds: maxRounds,
		now:       time.Now,
	}, nil
}

// Result is the outcome of one completed exchange.
type Result struct {
	Reply     string
	Rounds    int
	ToolCalls int
}

// Exchange runs the full loop for one caller message. Conversation state
// lives only for the duration of this call and is discarded on return.
func (o *Orchestrator) Exchange(ctx context.Context, caller contractx.Identity, text string) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, ErrInvalidMessage
	}

	messages := []contractx.Message{
		contractx.SystemMessage(promptx.System(caller)),
		contractx.UserMessage(text),
	}
	schemas := o.catalog.SchemasFor(caller.Role)

	started := o.now()
	var res Result
	st := stateAwaitModel
	for st != stateDone {
		if res.Rounds >= o.maxRounds {
			return Result{}, fmt.Errorf("%w: no final answer after %d rounds", contractx.ErrRoundLimit, o.maxRounds)
		}
		res.Rounds++

		turn, err := o.model.Complete(ctx, messages, schemas)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
		}
		messages = append(messages, turn)

		if len(turn.ToolCalls) == 0 {
			res.Reply = strings.TrimSpace(turn.Content)
			st = stateDone
			continue
		}

		st = stateDispatchTools
		results := o.dispatch(ctx, caller, turn.ToolCalls)
		res.ToolCalls += len(results)
		for _, r := range results {
			messages = append(messages, contractx.ToolMessage(r.CallID, r.Tool, r.Content))
		}
		st = stateAwaitModel
	}

	log.Debug().
		Str("caller", caller.Email).
		Str("role", string(caller.Role)).
		Int("rounds", res.Rounds).
		Int("tool_calls", res.ToolCalls).
		Dur("elapsed", o.now().Sub(started)).
		Msg("exchange completed")
	return res, nil
}

// dispatch executes one round of tool calls. Independent calls run
// concurrently; results keep input-order correspondence with the requests,
// and all calls complete before control returns to the model.
func (o *Orchestrator) dispatch(ctx context.Context, caller contractx.Identity, calls []contractx.ToolCall) []contractx.ToolResult {
	results := make([]contractx.ToolResult, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call contractx.ToolCall) {
			defer wg.Done()
			results[i] = o.catalog.Execute(ctx, caller, call)
		}(i, call)
	}
	wg.Wait()

	return results
}
