package repository

import (
	"context"
	"sync"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

// TranscriptRepository keeps the transcript buffer of every open ticket,
// keyed by channel id. It lives for the lifetime of the process.
type TranscriptRepository interface {
	// Open starts an empty buffer for a freshly created ticket channel,
	// replacing any buffer left under the same channel id.
	Open(ctx context.Context, session domain.TicketSession) error
	// Append records a message, creating the buffer lazily when absent.
	Append(ctx context.Context, channelID, channelName string, entry domain.TranscriptEntry) error
	// Pop removes the buffer and returns it. The boolean is false when no
	// buffer existed.
	Pop(ctx context.Context, channelID string) (domain.TicketSession, bool, error)
	Get(ctx context.Context, channelID string) (domain.TicketSession, bool, error)
	Count(ctx context.Context) (int, error)
}

type transcriptRepository struct {
	mu       sync.Mutex
	sessions map[string]*domain.TicketSession
}

// NewTranscriptRepository builds an in-memory repository.
func NewTranscriptRepository() TranscriptRepository {
	return &transcriptRepository{sessions: make(map[string]*domain.TicketSession)}
}

func (r *transcriptRepository) Open(_ context.Context, session domain.TicketSession) error {
	session.Entries = make([]domain.TranscriptEntry, 0, 16)

	r.mu.Lock()
	r.sessions[session.ChannelID] = &session
	r.mu.Unlock()
	return nil
}

func (r *transcriptRepository) Append(_ context.Context, channelID, channelName string, entry domain.TranscriptEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[channelID]
	if !ok {
		session = &domain.TicketSession{ChannelID: channelID, ChannelName: channelName}
		r.sessions[channelID] = session
	}
	session.Entries = append(session.Entries, entry)
	return nil
}

func (r *transcriptRepository) Pop(_ context.Context, channelID string) (domain.TicketSession, bool, error) {
	r.mu.Lock()
	session, ok := r.sessions[channelID]
	delete(r.sessions, channelID)
	r.mu.Unlock()

	if !ok {
		return domain.TicketSession{ChannelID: channelID}, false, nil
	}
	return *session, true, nil
}

func (r *transcriptRepository) Get(_ context.Context, channelID string) (domain.TicketSession, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[channelID]
	if !ok {
		return domain.TicketSession{}, false, nil
	}
	out := *session
	out.Entries = append([]domain.TranscriptEntry(nil), session.Entries...)
	return out, true, nil
}

func (r *transcriptRepository) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions), nil
}
