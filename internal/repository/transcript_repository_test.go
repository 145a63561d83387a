package repository_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/repository"
)

func entry(author, content string) domain.TranscriptEntry {
	return domain.TranscriptEntry{At: time.Unix(0, 0), Author: author, Content: content}
}

func TestOpenStartsEmptyBuffer(t *testing.T) {
	repo := repository.NewTranscriptRepository()
	ctx := context.Background()

	require.NoError(t, repo.Open(ctx, domain.TicketSession{ChannelID: "c1", ChannelName: "ticket-alice", OwnerName: "Alice"}))

	session, ok, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, session.Entries)
	assert.Equal(t, "Alice", session.OwnerName)
}

func TestAppendPreservesOrderAndCreatesLazily(t *testing.T) {
	repo := repository.NewTranscriptRepository()
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, "c1", "ticket-bob", entry("Bob", "one")))
	require.NoError(t, repo.Append(ctx, "c1", "ticket-bob", entry("Staff", "two")))
	require.NoError(t, repo.Append(ctx, "c1", "ticket-bob", entry("Bob", "three")))

	session, ok, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, session.Entries, 3)
	assert.Equal(t, []string{"one", "two", "three"}, []string{
		session.Entries[0].Content, session.Entries[1].Content, session.Entries[2].Content,
	})
	assert.Equal(t, "ticket-bob", session.ChannelName)
}

func TestPopConsumesBufferOnce(t *testing.T) {
	repo := repository.NewTranscriptRepository()
	ctx := context.Background()
	require.NoError(t, repo.Append(ctx, "c1", "ticket-bob", entry("Bob", "hi")))

	session, ok, err := repo.Pop(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, session.Entries, 1)

	session, ok, err = repo.Pop(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, session.Entries)

	_, ok, err = repo.Get(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetReturnsCopy(t *testing.T) {
	repo := repository.NewTranscriptRepository()
	ctx := context.Background()
	require.NoError(t, repo.Append(ctx, "c1", "ticket-bob", entry("Bob", "hi")))

	session, _, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	session.Entries[0].Content = "mutated"

	again, _, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "hi", again.Entries[0].Content)
}

func TestConcurrentAppendsToDisjointChannels(t *testing.T) {
	repo := repository.NewTranscriptRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			channelID := fmt.Sprintf("c%d", i)
			for j := 0; j < 50; j++ {
				_ = repo.Append(ctx, channelID, "ticket-x", entry("u", fmt.Sprint(j)))
			}
		}(i)
	}
	wg.Wait()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, count)
	session, _, err := repo.Get(ctx, "c3")
	require.NoError(t, err)
	require.Len(t, session.Entries, 50)
	assert.Equal(t, "49", session.Entries[49].Content)
}
