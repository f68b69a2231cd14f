package oracle

import (
	"context"
	"fmt"
	"sync"

	"shipment-dispatch-service/internal/ports"
)

// Reply is one canned oracle answer. A non-nil Err simulates a failed call.
type Reply struct {
	Text string
	Err  error
}

// ScriptedTransport replays canned replies per role, in order, and records
// every request. When a role's script runs out its last reply repeats.
type ScriptedTransport struct {
	mu      sync.Mutex
	scripts map[string][]Reply
	next    map[string]int
	calls   []ports.OracleRequest
}

func NewScriptedTransport() *ScriptedTransport {
	return &ScriptedTransport{
		scripts: make(map[string][]Reply),
		next:    make(map[string]int),
	}
}

// On appends replies for role and returns the transport for chaining.
func (s *ScriptedTransport) On(role string, replies ...Reply) *ScriptedTransport {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[role] = append(s.scripts[role], replies...)
	return s
}

// Text is a shorthand for successful replies.
func Text(texts ...string) []Reply {
	out := make([]Reply, 0, len(texts))
	for _, t := range texts {
		out = append(out, Reply{Text: t})
	}
	return out
}

func (s *ScriptedTransport) Send(_ context.Context, req ports.OracleRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, req)

	script := s.scripts[req.Role]
	if len(script) == 0 {
		return "", fmt.Errorf("no scripted reply for role %q", req.Role)
	}

	i := s.next[req.Role]
	if i >= len(script) {
		i = len(script) - 1
	} else {
		s.next[req.Role] = i + 1
	}

	r := script[i]
	return r.Text, r.Err
}

// Calls returns the recorded requests for role, or all when role is empty.
func (s *ScriptedTransport) Calls(role string) []ports.OracleRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ports.OracleRequest, 0, len(s.calls))
	for _, c := range s.calls {
		if role == "" || c.Role == role {
			out = append(out, c)
		}
	}
	return out
}
