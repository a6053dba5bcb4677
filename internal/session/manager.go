package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/foxseedlab/usterki/internal/asset"
	"github.com/foxseedlab/usterki/internal/config"
	"github.com/foxseedlab/usterki/internal/discord"
	"github.com/foxseedlab/usterki/internal/extractor"
	"github.com/foxseedlab/usterki/internal/ledger"
	"github.com/foxseedlab/usterki/internal/transcriber"
	"github.com/foxseedlab/usterki/internal/webhook"
)

const defaultPhotoContentType = "image/jpeg"

type Manager struct {
	cfg         *config.Config
	discord     discord.Client
	extractor   extractor.Extractor
	ledger      ledger.Ledger
	assets      asset.Store
	transcriber transcriber.Transcriber
	webhook     webhook.Sender
	loc         *time.Location

	mu        sync.Mutex
	botUserID string
	sessions  map[string]*Session
}

// NewManager wires the orchestrator. stt may be nil when voice notes are disabled.
func NewManager(cfg *config.Config, dc discord.Client, ext extractor.Extractor, led ledger.Ledger, assets asset.Store, stt transcriber.Transcriber, wh webhook.Sender) *Manager {
	return &Manager{
		cfg:         cfg,
		discord:     dc,
		extractor:   ext,
		ledger:      led,
		assets:      assets,
		transcriber: stt,
		webhook:     wh,
		loc:         cfg.Location(),
		sessions:    make(map[string]*Session),
	}
}

func SlashCommandDefinitions() []discord.SlashCommandDefinition {
	return []discord.SlashCommandDefinition{
		{Name: slashCommandStatus, Description: slashCommandStatusDescription},
	}
}

func (m *Manager) SetBotUserID(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.botUserID = userID
}

func (m *Manager) getBotUserID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.botUserID
}

func (m *Manager) sessionKey(guildID, channelID string) string {
	return guildID + ":" + channelID
}

// session returns the conversation's session, creating an idle one on first contact.
func (m *Manager) session(key string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[key]
	if !ok {
		s = New()
		m.sessions[key] = s
	}
	return s
}

func (m *Manager) HandleMessage(event discord.MessageEvent) {
	if event.AuthorIsBot || event.AuthorID == "" || event.AuthorID == m.getBotUserID() {
		return
	}
	if event.GuildID != m.cfg.DiscordGuildID {
		slog.Debug("ignoring message for different guild", "event_guild_id", event.GuildID, "configured_guild_id", m.cfg.DiscordGuildID)
		return
	}
	key := m.sessionKey(event.GuildID, event.ChannelID)
	defer m.recoverEvent(key, event)

	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.EventTimeout)
	defer cancel()

	sess := m.session(key)
	text := strings.TrimSpace(event.Content)
	lowered := strings.ToLower(text)

	if photo, ok := event.Photo(); ok {
		m.handlePhoto(ctx, key, sess, event, photo, text)
		return
	}
	switch {
	case lowered == commandUndo:
		m.handleUndo(ctx, key, sess, event)
	case lowered == commandEnd:
		m.handleEnd(ctx, key, sess, event)
	case strings.HasPrefix(lowered, commandStart):
		m.handleStart(ctx, key, sess, event, startRemainder(text))
	default:
		if voice, ok := event.Voice(); ok {
			m.handleVoice(ctx, key, sess, event, voice)
			return
		}
		if text == "" {
			slog.Debug("ignoring empty message", "session_key", key, "message_id", event.MessageID)
			return
		}
		m.handleDefectText(ctx, key, sess, event, text)
	}
}

// startRemainder drops the start command and the punctuation that usually follows it.
func startRemainder(text string) string {
	rest := text[len(commandStart):]
	return strings.TrimSpace(strings.TrimLeft(rest, " \t\n,.:;-–"))
}

func (m *Manager) recoverEvent(key string, event discord.MessageEvent) {
	r := recover()
	if r == nil {
		return
	}
	slog.Error("panic while handling message", "session_key", key, "message_id", event.MessageID, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
	m.reply(event, messageInternalError)
}

func (m *Manager) reply(event discord.MessageEvent, content string) {
	if event.Reply == nil {
		return
	}
	if !fitsMessage(content) {
		slog.Warn("reply exceeds discord message limit", "channel_id", event.ChannelID, "message_id", event.MessageID, "runes", utf8.RuneCountInString(content))
	}
	if err := event.Reply(content); err != nil {
		slog.Error("failed to send reply", "error", err, "channel_id", event.ChannelID, "message_id", event.MessageID)
	}
}

func (m *Manager) handleStart(ctx context.Context, key string, sess *Session, event discord.MessageEvent, input string) {
	if snap := sess.Snapshot(); snap.Active {
		slog.Info("start rejected; handover already active", "session_key", key, "handover_id", snap.HandoverID, "unit_id", snap.UnitID)
		m.reply(event, alreadyActiveMessage(snap.UnitID))
		return
	}
	if input == "" {
		m.reply(event, messageStartMissingData)
		return
	}
	m.reply(event, messageStartAnalyzing)

	fields, ok := m.extract(ctx, key, event, input)
	if !ok {
		return
	}
	if !fields.HasUnit() || !fields.HasResponsibleParty() {
		slog.Info("start rejected", "session_key", key, "error", ErrMissingField, "unit", fields.UnitID, "responsible_party", fields.ResponsibleParty)
		m.reply(event, messageStartMissingData)
		return
	}
	unitID, err := sess.Begin(fields.UnitID, fields.ResponsibleParty)
	if err != nil {
		slog.Info("start rejected", "session_key", key, "error", err)
		m.reply(event, alreadyActiveMessage(sess.Snapshot().UnitID))
		return
	}
	slog.Info("handover started", "session_key", key, "handover_id", sess.Snapshot().HandoverID, "unit_id", unitID, "responsible_party", fields.ResponsibleParty)
	m.reply(event, startedMessage(unitID, fields.ResponsibleParty))
}

// extract calls the gateway and answers the operator on failure.
func (m *Manager) extract(ctx context.Context, key string, event discord.MessageEvent, input string) (extractor.Fields, bool) {
	fields, err := m.extractor.Extract(ctx, extractor.SystemPrompt, input)
	if err == nil {
		return fields, true
	}
	if errors.Is(err, extractor.ErrMalformedResponse) {
		slog.Error("failed to parse extraction response", "error", err, "session_key", key)
		m.reply(event, messageExtractionFailed)
		return extractor.Fields{}, false
	}
	slog.Error("extraction call failed", "error", err, "session_key", key)
	m.reply(event, messageExtractionDown)
	return extractor.Fields{}, false
}

func (m *Manager) handleDefectText(ctx context.Context, key string, sess *Session, event discord.MessageEvent, text string) {
	if !sess.Active() {
		if m.cfg.SingleReportFallback {
			m.handleSingleReport(ctx, key, event, text)
			return
		}
		m.reply(event, messageIdleText)
		return
	}
	fields, ok := m.extract(ctx, key, event, text)
	if !ok {
		return
	}
	description := text
	if fields.HasDefect() {
		description = fields.Defect
	}
	if !TextConfirmationFits(description) {
		slog.Warn("text entry rejected; confirmation exceeds message limit", "session_key", key, "description_runes", utf8.RuneCountInString(description))
		m.reply(event, messageEntryTooLong)
		return
	}
	count, err := sess.AddTextEntry(description)
	if err != nil {
		slog.Warn("handover ended while extracting defect", "session_key", key, "error", err)
		m.reply(event, messageIdleText)
		return
	}
	slog.Info("text entry added", "session_key", key, "entries", count)
	m.reply(event, EncodeTextConfirmation(description, count))
}

func (m *Manager) handleSingleReport(ctx context.Context, key string, event discord.MessageEvent, text string) {
	m.reply(event, messageSingleReportProcessing)
	fields, ok := m.extract(ctx, key, event, text)
	if !ok {
		return
	}
	err := m.ledger.Append(ctx, ledger.Record{
		Timestamp:        m.eventTime(event),
		UnitID:           fields.UnitID,
		Defect:           fields.Defect,
		ResponsibleParty: fields.ResponsibleParty,
		Kind:             ledger.EntryKindText,
	})
	if err != nil {
		slog.Error("failed to append single report", "error", fmt.Errorf("%w: %w", ErrStoreFailure, err), "session_key", key)
		m.reply(event, messageSingleReportFailed)
		return
	}
	slog.Info("single report saved", "session_key", key, "unit", fields.UnitID)
	m.reply(event, singleReportSavedMessage(fields.UnitID, fields.Defect, fields.ResponsibleParty))
}

func (m *Manager) handleVoice(ctx context.Context, key string, sess *Session, event discord.MessageEvent, voice discord.Attachment) {
	if m.transcriber == nil {
		m.reply(event, messageVoiceUnsupported)
		return
	}
	if !sess.Active() {
		m.reply(event, messageIdleText)
		return
	}
	data, err := m.discord.DownloadAttachment(ctx, voice, m.cfg.MaxPhotoBytes)
	if err != nil {
		slog.Error("failed to download voice note", "error", err, "session_key", key, "attachment_id", voice.ID)
		m.reply(event, messageVoiceEmpty)
		return
	}
	text, err := m.transcriber.Transcribe(ctx, data, m.cfg.TranscribeLanguage)
	if err != nil {
		slog.Error("failed to transcribe voice note", "error", err, "session_key", key)
		m.reply(event, messageVoiceEmpty)
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		m.reply(event, messageVoiceEmpty)
		return
	}
	slog.Info("voice note transcribed", "session_key", key, "chars", len(text))
	m.handleDefectText(ctx, key, sess, event, text)
}

func (m *Manager) handlePhoto(ctx context.Context, key string, sess *Session, event discord.MessageEvent, photo discord.Attachment, caption string) {
	if caption == "" {
		m.reply(event, messagePhotoNeedsCaption)
		return
	}
	snap := sess.Snapshot()
	if !snap.Active {
		m.reply(event, messagePhotoIgnored)
		return
	}
	filename := photoFilename(caption, snap.ResponsibleParty)
	if !PhotoConfirmationFits(filename, caption+PhotoSuffix) {
		slog.Warn("photo entry rejected; confirmation exceeds message limit", "session_key", key, "caption_runes", utf8.RuneCountInString(caption))
		m.reply(event, messageEntryTooLong)
		return
	}
	m.reply(event, photoReceivedMessage(caption))

	data, err := m.discord.DownloadAttachment(ctx, photo, m.cfg.MaxPhotoBytes)
	if err != nil {
		slog.Error("failed to download photo", "error", err, "session_key", key, "attachment_id", photo.ID)
		m.reply(event, messagePhotoDownloadError)
		return
	}
	contentType := photo.ContentType
	if contentType == "" {
		contentType = defaultPhotoContentType
	}
	assetRef, err := m.assets.Upload(ctx, asset.UploadInput{
		Data:        data,
		UnitID:      snap.UnitID,
		Filename:    filename,
		ContentType: contentType,
	})
	if err != nil {
		slog.Error("failed to upload photo", "error", fmt.Errorf("%w: %w", ErrStoreFailure, err), "session_key", key, "unit_id", snap.UnitID)
		m.reply(event, driveErrorMessage(err))
		return
	}

	count, err := sess.AddPhotoEntry(caption, assetRef)
	if err != nil {
		slog.Warn("handover ended while uploading photo; removing orphan", "session_key", key, "asset_ref", assetRef)
		if delErr := m.assets.Delete(ctx, assetRef); delErr != nil {
			slog.Error("failed to delete orphan photo", "error", delErr, "asset_ref", assetRef)
		}
		m.reply(event, messagePhotoIgnored)
		return
	}
	slog.Info("photo entry added", "session_key", key, "asset_ref", assetRef, "entries", count)
	m.reply(event, EncodePhotoConfirmation(filename, caption+PhotoSuffix, count, assetRef))
}

func (m *Manager) handleUndo(ctx context.Context, key string, sess *Session, event discord.MessageEvent) {
	if !sess.Active() {
		m.reply(event, messageUndoNothingActive)
		return
	}
	if event.ReplyTo == nil {
		m.reply(event, messageUndoNeedsReply)
		return
	}
	if event.ReplyTo.AuthorID != m.getBotUserID() {
		slog.Info("undo target is not a bot message", "session_key", key, "target_message_id", event.ReplyTo.MessageID)
		m.reply(event, messageUndoUnsupported)
		return
	}
	marker, err := DecodeMarker(event.ReplyTo.Content)
	if err != nil {
		slog.Info("undo target cannot be decoded", "session_key", key, "target_message_id", event.ReplyTo.MessageID, "error", err)
		m.reply(event, messageUndoUnsupported)
		return
	}

	switch marker.Kind {
	case MarkerPhoto:
		m.undoPhoto(ctx, key, sess, event, marker)
	default:
		m.undoText(key, sess, event, marker)
	}
}

func (m *Manager) undoText(key string, sess *Session, event discord.MessageEvent, marker Marker) {
	if _, err := sess.RemoveTextEntry(marker.Description); err != nil {
		m.replyUndoFailure(key, event, marker, err)
		return
	}
	remaining := len(sess.Snapshot().Entries)
	slog.Info("text entry undone", "session_key", key, "entries", remaining)
	m.reply(event, undoneMessage(marker.Description, remaining))
}

// undoPhoto deletes the Drive file before touching the list, so a failed delete
// leaves the entry in place for a retry.
func (m *Manager) undoPhoto(ctx context.Context, key string, sess *Session, event discord.MessageEvent, marker Marker) {
	if _, ok := sess.FindPhotoEntry(marker.Description, marker.AssetRef); !ok {
		m.replyUndoFailure(key, event, marker, ErrNotFound)
		return
	}
	if err := m.assets.Delete(ctx, marker.AssetRef); err != nil {
		slog.Error("failed to delete photo", "error", fmt.Errorf("%w: %w", ErrStoreFailure, err), "session_key", key, "asset_ref", marker.AssetRef)
		m.reply(event, undoDeleteFailedMessage(err))
		return
	}
	if _, err := sess.RemovePhotoEntry(marker.Description, marker.AssetRef); err != nil {
		m.replyUndoFailure(key, event, marker, err)
		return
	}
	remaining := len(sess.Snapshot().Entries)
	slog.Info("photo entry undone", "session_key", key, "asset_ref", marker.AssetRef, "entries", remaining)
	m.reply(event, undoneMessage(marker.Description, remaining))
}

func (m *Manager) replyUndoFailure(key string, event discord.MessageEvent, marker Marker, err error) {
	slog.Info("undo failed", "session_key", key, "error", err)
	if errors.Is(err, ErrNotActive) {
		m.reply(event, messageUndoNothingActive)
		return
	}
	m.reply(event, undoNotFoundMessage(marker.Description))
}

type commitResult struct {
	entry     Entry
	committed bool
}

func (m *Manager) handleEnd(ctx context.Context, key string, sess *Session, event discord.MessageEvent) {
	h, err := sess.End()
	if err != nil {
		m.reply(event, messageNothingToEnd)
		return
	}
	endedAt := m.eventTime(event)
	slog.Info("committing handover", "session_key", key, "handover_id", h.HandoverID, "unit_id", h.UnitID, "entries", len(h.Entries))

	results := make([]commitResult, 0, len(h.Entries))
	committed := 0
	var failed []string
	for _, e := range h.Entries {
		appendCtx, cancel := m.storeContext(ctx)
		err := m.ledger.Append(appendCtx, ledger.Record{
			HandoverID:       h.HandoverID,
			Timestamp:        endedAt,
			UnitID:           h.UnitID,
			Defect:           e.Description,
			ResponsibleParty: h.ResponsibleParty,
			Kind:             ledger.EntryKind(e.Kind),
			AssetRef:         e.AssetRef,
		})
		cancel()
		if err != nil {
			slog.Error("failed to commit entry", "error", fmt.Errorf("%w: %w", ErrStoreFailure, err), "handover_id", h.HandoverID, "description", e.Description)
			failed = append(failed, e.Description)
			results = append(results, commitResult{entry: e})
			continue
		}
		committed++
		results = append(results, commitResult{entry: e, committed: true})
	}
	slog.Info("handover ended", "session_key", key, "handover_id", h.HandoverID, "committed", committed, "total", len(h.Entries))
	m.reply(event, endedMessage(h.UnitID, committed, len(h.Entries), failed))

	payload := buildHandoverReport(event.GuildID, event.ChannelID, h, endedAt, m.cfg.LedgerTimezone, m.loc, results)
	sendCtx, cancel := m.storeContext(ctx)
	defer cancel()
	if err := m.webhook.SendHandoverReport(sendCtx, payload); err != nil {
		slog.Error("failed to send handover report webhook", "error", err, "handover_id", h.HandoverID)
	}
}

// storeContext gives one commit call its own EventTimeout. The ended session
// is already reset, so the event deadline must not fail the tail of the loop.
func (m *Manager) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), m.cfg.EventTimeout)
}

func (m *Manager) eventTime(event discord.MessageEvent) time.Time {
	if event.Timestamp.IsZero() {
		return time.Now()
	}
	return event.Timestamp
}

func (m *Manager) HandleSlashCommand(event discord.SlashCommandEvent) {
	if event.GuildID != m.cfg.DiscordGuildID {
		m.respondEphemeral(event, messageEphemeralWrongGuild)
		return
	}
	switch event.CommandName {
	case slashCommandStatus:
		m.mu.Lock()
		sess, ok := m.sessions[m.sessionKey(event.GuildID, event.ChannelID)]
		m.mu.Unlock()
		if !ok {
			m.respondEphemeral(event, messageEphemeralNotActive)
			return
		}
		m.respondEphemeral(event, statusMessage(sess.Snapshot()))
	default:
		m.respondEphemeral(event, messageEphemeralUnknownCommand)
	}
}

func (m *Manager) respondEphemeral(event discord.SlashCommandEvent, content string) {
	if event.RespondEphemeral == nil {
		return
	}
	if err := event.RespondEphemeral(content); err != nil {
		slog.Error("failed to respond to slash command", "error", err, "command", event.CommandName)
	}
}

// DropAllSessions forgets every session. Unflushed entries are lost; the
// counts are returned so the caller can log them on shutdown.
func (m *Manager) DropAllSessions() (activeSessions, pendingEntries int) {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for key, sess := range sessions {
		snap := sess.Snapshot()
		if !snap.Active {
			continue
		}
		activeSessions++
		pendingEntries += len(snap.Entries)
		slog.Warn("dropping active handover without commit", "session_key", key, "handover_id", snap.HandoverID, "unit_id", snap.UnitID, "entries", len(snap.Entries))
	}
	return activeSessions, pendingEntries
}
