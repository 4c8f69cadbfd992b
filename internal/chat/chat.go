// Package chat owns the conversation transcript and drives each send
// through a small finite state machine. The transcript is append-only and
// strictly ordered by call: the user message lands before the request is
// issued, and the matching assistant message (or apology) always follows,
// whatever the network does.
package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/qmuntal/stateless"

	"github.com/agentmira/mira-go/internal/api"
	"github.com/agentmira/mira-go/internal/logger"
	"github.com/agentmira/mira-go/internal/property"
)

// FSM States
type FSMState stateless.State

var (
	StateIdle             FSMState = "Idle"
	StateAwaitingResponse FSMState = "AwaitingResponse"
)

// FSM Triggers
type FSMTrigger stateless.Trigger

var (
	TriggerSend             FSMTrigger = "Send"
	TriggerResponseReceived FSMTrigger = "ResponseReceived"
	TriggerRequestFailed    FSMTrigger = "RequestFailed"
)

// Gateway is the subset of the API client the chat session depends on;
// it is easy to mock in tests.
type Gateway interface {
	SendMessage(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error)
}

const (
	apologyMessage     = "Sorry, I encountered an error. Please try again."
	textPlaceholder    = "I'm processing your request..."
	filtersPlaceholder = "Here are some properties that match your criteria."
)

// Session is the chat session: the ordered transcript plus the in-flight
// request counter. Each send runs its own FSM, so rapid repeated sends
// never share state; responses are matched in issuance order with no
// further correlation.
type Session struct {
	gw Gateway

	mu       sync.Mutex
	nextID   int64
	messages []Message
	inFlight int
}

// NewSession creates a chat session, seeding the transcript with the
// assistant greeting when one is configured.
func NewSession(gw Gateway, greeting string) *Session {
	s := &Session{gw: gw}
	if greeting != "" {
		s.append(RoleAssistant, greeting, nil, nil)
	}
	return s
}

// SendText appends a user message and requests the assistant's reply.
// Empty or whitespace-only text is a no-op.
func (s *Session) SendText(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	s.append(RoleUser, text, nil, nil)
	s.send(ctx, api.ChatRequest{Message: text}, textPlaceholder)
}

// SendFilters synthesizes a readable summary of the criteria, appends it
// as a user message with the structured filters attached, and requests
// the assistant's reply.
func (s *Session) SendFilters(ctx context.Context, filters api.Filters) {
	text := FilterSummary(filters)
	s.append(RoleUser, text, &filters, nil)
	s.send(ctx, api.ChatRequest{Message: text, Filters: &filters}, filtersPlaceholder)
}

// FilterSummary renders the user-visible text for a filter search.
func FilterSummary(f api.Filters) string {
	bedrooms := f.Bedrooms
	if bedrooms == "" {
		bedrooms = "any"
	}
	location := f.Location
	if location == "" {
		location = "any city"
	}
	budget := f.Budget
	if budget == "" {
		budget = "any"
	}
	return fmt.Sprintf("Search for %s bedroom homes in %s with budget %s", bedrooms, location, budget)
}

// send drives one request through the Idle -> AwaitingResponse -> Idle
// machine. The deferred cleanup guarantees the in-flight counter drops
// and an assistant message is appended even if a transition misfires.
func (s *Session) send(ctx context.Context, req api.ChatRequest, placeholder string) {
	type fsmContext struct {
		resp      *api.ChatResponse
		lastError error
		appended  bool
	}
	fsmCtx := &fsmContext{}

	s.mu.Lock()
	s.inFlight++
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
		if !fsmCtx.appended {
			s.append(RoleAssistant, apologyMessage, nil, nil)
		}
	}()

	fsm := stateless.NewStateMachine(StateIdle)

	// State: Idle
	// Re-entered when the request resolves; the entry action appends the
	// assistant message for the outcome that brought us back.
	fsm.Configure(StateIdle).
		Permit(TriggerSend, StateAwaitingResponse).
		OnEntryFrom(TriggerResponseReceived, func(ctx context.Context, args ...any) error {
			content := fsmCtx.resp.Response
			if content == "" {
				content = fsmCtx.resp.Message
			}
			if content == "" {
				content = placeholder
			}
			props := property.FromBackendList(fsmCtx.resp.Properties)
			s.append(RoleAssistant, content, nil, props)
			fsmCtx.appended = true
			return nil
		}).
		OnEntryFrom(TriggerRequestFailed, func(ctx context.Context, args ...any) error {
			logger.L.Warn("chat request failed", "error", fsmCtx.lastError)
			s.append(RoleAssistant, apologyMessage, nil, nil)
			fsmCtx.appended = true
			return nil
		})

	// State: AwaitingResponse
	// Action: issue the chat request.
	fsm.Configure(StateAwaitingResponse).
		OnEntry(func(ctx context.Context, args ...any) error {
			resp, err := s.gw.SendMessage(ctx, req)
			if err != nil {
				fsmCtx.lastError = err
				return fsm.FireCtx(ctx, TriggerRequestFailed)
			}
			fsmCtx.resp = resp
			return fsm.FireCtx(ctx, TriggerResponseReceived)
		}).
		Permit(TriggerResponseReceived, StateIdle).
		Permit(TriggerRequestFailed, StateIdle)

	if err := fsm.FireCtx(ctx, TriggerSend); err != nil {
		logger.L.Warn("chat FSM fire error", "error", err)
	}
}

// Messages returns a snapshot of the transcript in append order.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// InFlight reports whether any request is outstanding.
func (s *Session) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight > 0
}

// FindProperty looks a property up in the transcript by id. The saved-set
// tracker uses it to supply best-effort property data on save.
func (s *Session) FindProperty(id string) (property.Property, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		for _, p := range m.Properties {
			if p.ID == id {
				return p, true
			}
		}
	}
	return property.Property{}, false
}

func (s *Session) append(role Role, content string, filters *api.Filters, props []property.Property) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.messages = append(s.messages, Message{
		ID:         s.nextID,
		Role:       role,
		Content:    content,
		CreatedAt:  time.Now(),
		Filters:    filters,
		Properties: props,
	})
}
