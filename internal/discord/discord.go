package discord

import (
	"context"
	"strings"
	"time"
)

type SlashCommandDefinition struct {
	Name        string
	Description string
}

type SlashCommandEvent struct {
	GuildID          string
	ChannelID        string
	CommandName      string
	UserID           string
	RespondEphemeral func(content string) error
}

type Attachment struct {
	ID          string
	Filename    string
	ContentType string
	URL         string
	Size        int
}

func (a Attachment) IsImage() bool {
	return strings.HasPrefix(a.ContentType, "image/")
}

func (a Attachment) IsAudio() bool {
	return strings.HasPrefix(a.ContentType, "audio/")
}

// ReferencedMessage is the message an inbound message replies to.
type ReferencedMessage struct {
	MessageID string
	AuthorID  string
	Content   string
}

type MessageEvent struct {
	GuildID     string
	ChannelID   string
	MessageID   string
	AuthorID    string
	AuthorIsBot bool
	Content     string
	Attachments []Attachment
	ReplyTo     *ReferencedMessage
	Timestamp   time.Time
	Reply       func(content string) error
}

// Photo returns the first image attachment, if any.
func (e MessageEvent) Photo() (Attachment, bool) {
	for _, a := range e.Attachments {
		if a.IsImage() {
			return a, true
		}
	}
	return Attachment{}, false
}

// Voice returns the first audio attachment, if any.
func (e MessageEvent) Voice() (Attachment, bool) {
	for _, a := range e.Attachments {
		if a.IsAudio() {
			return a, true
		}
	}
	return Attachment{}, false
}

type Client interface {
	Connect(ctx context.Context) error
	Close() error
	SendChannelMessage(channelID, content string) error
	RegisterMessageHandler(handler func(MessageEvent))
	RegisterSlashCommandHandler(handler func(SlashCommandEvent))
	UpsertGuildSlashCommands(guildID string, defs []SlashCommandDefinition) error
	DownloadAttachment(ctx context.Context, attachment Attachment, maxBytes int64) ([]byte, error)
	GetBotUserID() (string, error)
	Run() error
}
