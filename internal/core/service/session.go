package service

import (
	"context"
	"imagestudio/internal/core/domain"
	"imagestudio/internal/metrics"
	"sync"

	"github.com/rs/zerolog/log"
)

// Session holds the client-visible state of one UI session. Only the most
// recently issued submission may update it.
type Session struct {
	submitter Submitter
	mutex     sync.Mutex
	seq       uint64
	state     domain.SubmissionState
}

func NewSession(submitter Submitter) *Session {
	return &Session{submitter: submitter}
}

// Submit runs a submission and reports whether its outcome became the
// session state. A result superseded by a later submission is returned but not applied.
func (s *Session) Submit(ctx context.Context, prompt string, modelID domain.ModelID) (domain.Result, bool) {
	seq := s.begin()

	result := s.submitter.Submit(ctx, prompt, modelID)

	applied := s.complete(seq, result)
	if !applied {
		metrics.StaleResultsTotal.Inc()
		log.Debug().Uint64("seq", seq).Msg("discarding stale result")
	}

	return result, applied
}

func (s *Session) State() domain.SubmissionState {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.state
}

func (s *Session) begin() uint64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.seq++
	s.state = domain.SubmissionState{Kind: domain.Submitting}
	return s.seq
}

func (s *Session) complete(seq uint64, result domain.Result) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if seq != s.seq {
		return false
	}

	s.state = domain.StateFrom(result)
	return true
}

// Sessions keeps one Session per key, created on first use.
type Sessions struct {
	submitter Submitter
	sessions  sync.Map
}

func NewSessions(submitter Submitter) *Sessions {
	return &Sessions{submitter: submitter}
}

func (s *Sessions) Get(key int64) *Session {
	if v, ok := s.sessions.Load(key); ok {
		return v.(*Session)
	}

	v, _ := s.sessions.LoadOrStore(key, NewSession(s.submitter))
	return v.(*Session)
}
