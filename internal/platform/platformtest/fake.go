// Package platformtest provides an in-memory platform.Gateway for tests.
package platformtest

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/spec-kit/ticket-bot/internal/platform"
)

// SentMessage is a message captured by FakeGateway.
type SentMessage struct {
	ChannelID string
	Message   *discordgo.MessageSend
}

// FakeGateway records every call and keeps guild channels and roles in memory.
type FakeGateway struct {
	mu       sync.Mutex
	channels map[string]*discordgo.Channel
	roles    map[string]*discordgo.Role
	sent     []SentMessage
	created  []discordgo.GuildChannelCreateData
	deleted  []string
	nextID   int

	// CreateDelay widens the check-then-create window in race tests.
	CreateDelay time.Duration
	CreateErr   error
	DeleteErr   error
	SendErr     error
	ReadyState  bool
}

// NewFakeGateway returns an empty fake.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		channels:   make(map[string]*discordgo.Channel),
		roles:      make(map[string]*discordgo.Role),
		nextID:     1000,
		ReadyState: true,
	}
}

// AddChannel registers an existing text channel.
func (f *FakeGateway) AddChannel(guildID, channelID, name string) *discordgo.Channel {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := &discordgo.Channel{ID: channelID, GuildID: guildID, Name: name, Type: discordgo.ChannelTypeGuildText}
	f.channels[channelID] = ch
	return ch
}

// AddRole registers a guild role.
func (f *FakeGateway) AddRole(guildID, roleID, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles[guildID+"/"+roleID] = &discordgo.Role{ID: roleID, Name: name}
}

func (f *FakeGateway) Channel(_ context.Context, channelID string) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("channel %s: %w", channelID, platform.ErrNotFound)
	}
	return ch, nil
}

func (f *FakeGateway) GuildChannels(_ context.Context, guildID string) ([]*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*discordgo.Channel
	for _, ch := range f.channels {
		if ch.GuildID == guildID {
			out = append(out, ch)
		}
	}
	return out, nil
}

func (f *FakeGateway) Role(_ context.Context, guildID, roleID string) (*discordgo.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	role, ok := f.roles[guildID+"/"+roleID]
	if !ok {
		return nil, fmt.Errorf("role %s: %w", roleID, platform.ErrNotFound)
	}
	return role, nil
}

func (f *FakeGateway) CreateChannel(_ context.Context, guildID string, data discordgo.GuildChannelCreateData) (*discordgo.Channel, error) {
	if f.CreateDelay > 0 {
		time.Sleep(f.CreateDelay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	f.nextID++
	ch := &discordgo.Channel{
		ID:                   strconv.Itoa(f.nextID),
		GuildID:              guildID,
		Name:                 data.Name,
		Type:                 data.Type,
		ParentID:             data.ParentID,
		PermissionOverwrites: data.PermissionOverwrites,
	}
	f.channels[ch.ID] = ch
	f.created = append(f.created, data)
	return ch, nil
}

func (f *FakeGateway) DeleteChannel(_ context.Context, channelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	if _, ok := f.channels[channelID]; !ok {
		return fmt.Errorf("channel %s: %w", channelID, platform.ErrNotFound)
	}
	delete(f.channels, channelID)
	f.deleted = append(f.deleted, channelID)
	return nil
}

func (f *FakeGateway) SendMessage(_ context.Context, channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SendErr != nil {
		return nil, f.SendErr
	}
	f.sent = append(f.sent, SentMessage{ChannelID: channelID, Message: msg})
	f.nextID++
	return &discordgo.Message{ID: strconv.Itoa(f.nextID), ChannelID: channelID, Content: msg.Content}, nil
}

func (f *FakeGateway) Ready() bool {
	return f.ReadyState
}

// Sent returns messages sent to channelID, in order.
func (f *FakeGateway) Sent(channelID string) []*discordgo.MessageSend {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*discordgo.MessageSend
	for _, m := range f.sent {
		if m.ChannelID == channelID {
			out = append(out, m.Message)
		}
	}
	return out
}

// AllSent returns every sent message in order.
func (f *FakeGateway) AllSent() []SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SentMessage(nil), f.sent...)
}

// Created returns every channel creation request.
func (f *FakeGateway) Created() []discordgo.GuildChannelCreateData {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]discordgo.GuildChannelCreateData(nil), f.created...)
}

// Deleted returns the ids of deleted channels.
func (f *FakeGateway) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

// HasChannel reports whether channelID still exists.
func (f *FakeGateway) HasChannel(channelID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.channels[channelID]
	return ok
}

// FakeResponder records ephemeral replies.
type FakeResponder struct {
	mu       sync.Mutex
	messages []string
	Err      error
}

func (r *FakeResponder) Ephemeral(_ context.Context, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.messages = append(r.messages, content)
	return nil
}

// Messages returns the replies in order.
func (r *FakeResponder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}
