package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// Reply is one scripted outcome.
type Reply struct {
	Content      json.RawMessage
	InputTokens  int
	OutputTokens int
	Err          error
}

// Scripted is an in-memory Provider that plays back replies in order and
// records the requests it receives. Replies to a request with a schema go
// through the same decoding as vendor replies. Once the script is
// exhausted it fails with KindUnavailable.
type Scripted struct {
	mu       sync.Mutex
	script   []Reply
	requests []Request
}

func NewScripted(replies ...Reply) *Scripted {
	return &Scripted{script: replies}
}

func (s *Scripted) Name() string    { return "scripted" }
func (s *Scripted) ModelID() string { return "scripted" }

func (s *Scripted) Generate(_ context.Context, req Request) (*Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if len(s.script) == 0 {
		return nil, &Error{Kind: KindUnavailable, Vendor: "scripted", Err: errors.New("script exhausted")}
	}
	r := s.script[0]
	s.script = s.script[1:]
	if r.Err != nil {
		return nil, r.Err
	}
	resp, err := decode("scripted", req, string(r.Content), false)
	if err != nil {
		return nil, err
	}
	resp.Model = "scripted"
	resp.InputTokens, resp.OutputTokens = r.InputTokens, r.OutputTokens
	return resp, nil
}

// Then queues more replies.
func (s *Scripted) Then(replies ...Reply) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script = append(s.script, replies...)
	return s
}

// Requests returns a copy of the requests received so far.
func (s *Scripted) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}
