package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

// TranscriptArchive is a closed ticket as stored in the archive.
type TranscriptArchive struct {
	ID          string
	GuildID     string
	ChannelID   string
	ChannelName string
	OwnerName   string
	ClosedByID  string
	ClosedBy    string
	ClosedAt    time.Time
	Entries     []domain.TranscriptEntry
	CreatedAt   time.Time
}

// TranscriptArchiveRepository stores transcripts of closed tickets.
type TranscriptArchiveRepository interface {
	Create(ctx context.Context, archive *TranscriptArchive) error
}

type transcriptArchiveRepository struct {
	pool *pgxpool.Pool
}

// NewTranscriptArchiveRepository builds repository.
func NewTranscriptArchiveRepository(pool *pgxpool.Pool) TranscriptArchiveRepository {
	return &transcriptArchiveRepository{pool: pool}
}

func (r *transcriptArchiveRepository) Create(ctx context.Context, archive *TranscriptArchive) error {
	entries, err := json.Marshal(archive.Entries)
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}

	const query = `
        INSERT INTO ticket_transcripts (guild_id, channel_id, channel_name, owner_name, closed_by_id, closed_by, closed_at, entries)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		archive.GuildID,
		archive.ChannelID,
		archive.ChannelName,
		archive.OwnerName,
		archive.ClosedByID,
		archive.ClosedBy,
		archive.ClosedAt,
		entries,
	).Scan(&archive.ID, &archive.CreatedAt)
}
