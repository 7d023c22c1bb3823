// Package warnings implements the moderation action pipeline: notification,
// enforcement, multi-guild log replication, edit propagation and external
// ban reconciliation.
package warnings

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/database"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/logger"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/models"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/storage"
	"github.com/bwmarrin/discordgo"
)

// ErrDMsDisabled is the one expected direct message failure: the recipient
// does not accept DMs from non-contacts. Platform implementations map the
// platform's error code to this sentinel.
var ErrDMsDisabled = errors.New("recipient has direct messages disabled")

// ErrImageCapExceeded is the store's capped-append rejection.
var ErrImageCapExceeded = database.ErrImageCapExceeded

// Store is the record store surface the pipeline issues queries against.
// pkg/database implements it; tests use an in-memory fake.
type Store interface {
	CreateWarning(ctx context.Context, w *models.Warning) (*models.Warning, error)
	DeleteWarning(ctx context.Context, id int64) error
	WarningByID(ctx context.Context, id int64) (*models.Warning, error)
	WarningByLogMessage(ctx context.Context, messageID string) (*models.Warning, error)
	LatestExternalBan(ctx context.Context, userID, guildID string, since time.Time) (*models.Warning, error)
	SetNotified(ctx context.Context, id int64, state models.NotifiedState) error
	SetPenalised(ctx context.Context, id int64, state models.PenalisedState) error
	SetDescription(ctx context.Context, id int64, description string) error
	AddLogMessage(ctx context.Context, id int64, lm models.LogMessage) error
	AppendExtraImages(ctx context.Context, id int64, urls []string) error
	Guilds(ctx context.Context) ([]*models.GuildConfig, error)
	Guild(ctx context.Context, guildID string) (*models.GuildConfig, error)
	HiddenBanPenalty(ctx context.Context) (*models.Penalty, error)
}

// AuditLogBan is the relevant slice of one platform audit log ban entry.
type AuditLogBan struct {
	ExecutorID string
	Reason     string
}

// Platform is the chat platform surface the pipeline drives. The discordgo
// session implements it through SessionPlatform.
type Platform interface {
	BotUserID() string
	User(userID string) (*discordgo.User, error)
	IsMember(guildID, userID string) (bool, error)
	GuildName(guildID string) string
	SendDM(userID string, msg *discordgo.MessageSend) error
	CreateFallbackChannel(guild *models.GuildConfig, user *discordgo.User) (string, error)
	SendMessage(channelID string, msg *discordgo.MessageSend) (string, error)
	EditMessage(channelID, messageID string, embeds []*discordgo.MessageEmbed, components []discordgo.MessageComponent) error
	Ban(guildID, userID, reason string, deleteDays int) error
	Kick(guildID, userID, reason string) error
	Timeout(guildID, userID string, until time.Time) error
	BanAuditLogEntry(guildID, userID string) (*AuditLogBan, error)
	DownloadAttachment(url string) ([]byte, string, error)
}

// Uploader stores image bytes durably and returns a public URL.
type Uploader interface {
	Upload(ctx context.Context, key string, content []byte, contentType string) (string, error)
}

// Reporter delivers error summaries to the operator error channel.
type Reporter interface {
	Report(err error, guildID string)
}

// EventPublisher announces published warnings to external consumers.
type EventPublisher interface {
	PublishWarning(w *models.Warning)
}

// Pipeline wires the moderation flow together. All methods are safe to call
// from event handlers; the store serializes conflicting writes.
type Pipeline struct {
	store     Store
	platform  Platform
	uploader  Uploader
	reporter  Reporter
	publisher EventPublisher

	// Audit log reasons with this prefix belong to a separate automated
	// process and are never reconciled.
	exemptReasonPrefix string
}

// NewPipeline creates a Pipeline. uploader and publisher may be nil when the
// corresponding surface is not configured.
func NewPipeline(store Store, platform Platform, uploader Uploader, reporter Reporter, publisher EventPublisher, exemptReasonPrefix string) *Pipeline {
	return &Pipeline{
		store:              store,
		platform:           platform,
		uploader:           uploader,
		reporter:           reporter,
		publisher:          publisher,
		exemptReasonPrefix: exemptReasonPrefix,
	}
}

// WarnInput is one moderator-issued warn action.
type WarnInput struct {
	GuildID     string
	Target      *discordgo.User
	Moderator   *discordgo.User
	Penalty     models.Penalty
	Description string
	Silent      bool
	Attachment  *discordgo.MessageAttachment
}

// Execute runs the full pipeline for one warn action: create the record,
// notify, enforce, publish. Notification fully resolves before enforcement
// runs, and both resolve before the first render.
func (p *Pipeline) Execute(ctx context.Context, in WarnInput) (*models.Warning, error) {
	guildCfg, err := p.store.Guild(ctx, in.GuildID)
	if err != nil {
		return nil, err
	}
	if guildCfg == nil {
		return nil, fmt.Errorf("guild %s is not configured", in.GuildID)
	}

	w := &models.Warning{
		CreatedBy:   in.Moderator.ID,
		UserID:      in.Target.ID,
		GuildID:     in.GuildID,
		Description: in.Description,
		Silent:      in.Silent,
		Penalty:     in.Penalty,
	}

	if in.Attachment != nil {
		url, err := p.uploadAttachment(ctx, in.Attachment)
		if err != nil {
			return nil, fmt.Errorf("failed to store warning image: %w", err)
		}
		w.Images = []models.WarningImage{{URL: url, Extra: false}}
	}

	w, err = p.store.CreateWarning(ctx, w)
	if err != nil {
		return nil, err
	}

	notified, err := p.Notify(ctx, w, in.Target, guildCfg)
	if err != nil {
		// Fatal notification failure: the record has already been deleted.
		return nil, err
	}
	w.Notified = notified

	penalised, err := p.Enforce(ctx, w, guildCfg)
	if err != nil {
		return nil, err
	}
	w.Penalised = penalised

	if _, err := p.Publish(ctx, w); err != nil {
		return w, err
	}

	if p.publisher != nil {
		p.publisher.PublishWarning(w)
	}

	logger.Audit(fmt.Sprintf("Warning #%d: %s %s by %s (notified=%s, penalised=%s)",
		w.ID, in.Target.Username, w.Verb(), in.Moderator.Username, w.Notified, w.Penalised), "Warnings")

	return w, nil
}

// uploadAttachment downloads a Discord attachment and stores it durably.
// Attachment URLs expire; log replicas must outlive them.
func (p *Pipeline) uploadAttachment(ctx context.Context, att *discordgo.MessageAttachment) (string, error) {
	if p.uploader == nil {
		// No blob store configured; fall back to the platform URL.
		return att.URL, nil
	}

	content, contentType, err := p.platform.DownloadAttachment(att.URL)
	if err != nil {
		return "", err
	}
	if att.ContentType != "" {
		contentType = att.ContentType
	}

	return p.uploader.Upload(ctx, storage.ImageKey(att.Filename), content, contentType)
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// IsImageAttachment reports whether an attachment can serve as warning image
// evidence. Discord omits the content type on some uploads; those fall back
// to the filename extension.
func IsImageAttachment(att *discordgo.MessageAttachment) bool {
	if att == nil {
		return false
	}
	if att.ContentType != "" {
		return strings.HasPrefix(att.ContentType, "image/")
	}
	return imageExtensions[strings.ToLower(path.Ext(att.Filename))]
}
