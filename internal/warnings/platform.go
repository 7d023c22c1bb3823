package warnings

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// SessionPlatform implements Platform over a discordgo session.
type SessionPlatform struct {
	session *discordgo.Session
	http    *http.Client
}

// NewSessionPlatform wraps a connected session
func NewSessionPlatform(session *discordgo.Session) *SessionPlatform {
	return &SessionPlatform{
		session: session,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// BotUserID returns the bot's own user id
func (sp *SessionPlatform) BotUserID() string {
	if sp.session.State == nil || sp.session.State.User == nil {
		return ""
	}
	return sp.session.State.User.ID
}

// User fetches a user by id
func (sp *SessionPlatform) User(userID string) (*discordgo.User, error) {
	return sp.session.User(userID)
}

// GuildName resolves a guild's display name, falling back to its id
func (sp *SessionPlatform) GuildName(guildID string) string {
	if guild, err := sp.session.State.Guild(guildID); err == nil {
		return guild.Name
	}
	if guild, err := sp.session.Guild(guildID); err == nil {
		return guild.Name
	}
	return guildID
}

// IsMember reports whether the user is currently a member of the guild
func (sp *SessionPlatform) IsMember(guildID, userID string) (bool, error) {
	if _, err := sp.session.State.Member(guildID, userID); err == nil {
		return true, nil
	}

	_, err := sp.session.GuildMember(guildID, userID)
	if err == nil {
		return true, nil
	}

	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownMember, discordgo.ErrCodeUnknownUser:
			return false, nil
		}
	}
	return false, err
}

// SendDM delivers a direct message, mapping the platform's "recipient does
// not accept DMs" code to ErrDMsDisabled
func (sp *SessionPlatform) SendDM(userID string, msg *discordgo.MessageSend) error {
	channel, err := sp.session.UserChannelCreate(userID)
	if err != nil {
		return err
	}

	_, err = sp.session.ChannelMessageSendComplex(channel.ID, msg)
	if err == nil {
		return nil
	}

	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil &&
		restErr.Message.Code == discordgo.ErrCodeCannotSendMessagesToThisUser {
		return fmt.Errorf("%w: %s", ErrDMsDisabled, userID)
	}
	return err
}

// CreateFallbackChannel creates the private notification channel under the
// guild's warn category. The target can view and read history but not send
// or react.
func (sp *SessionPlatform) CreateFallbackChannel(guild *models.GuildConfig, user *discordgo.User) (string, error) {
	overwrites := []*discordgo.PermissionOverwrite{
		{
			// @everyone: the role id equals the guild id
			ID:   guild.ID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
		{
			ID:    user.ID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discordgo.PermissionViewChannel | discordgo.PermissionReadMessageHistory,
			Deny:  discordgo.PermissionSendMessages | discordgo.PermissionAddReactions,
		},
	}

	channel, err := sp.session.GuildChannelCreateComplex(guild.ID, discordgo.GuildChannelCreateData{
		Name:                 channelName(user),
		Type:                 discordgo.ChannelTypeGuildText,
		ParentID:             guild.WarnCategory,
		PermissionOverwrites: overwrites,
	})
	if err != nil {
		return "", err
	}
	return channel.ID, nil
}

func channelName(user *discordgo.User) string {
	name := strings.ToLower(user.Username)
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '-'
	}, name)
	return "warning-" + strings.Trim(name, "-")
}

// SendMessage sends a message and returns its id
func (sp *SessionPlatform) SendMessage(channelID string, msg *discordgo.MessageSend) (string, error) {
	sent, err := sp.session.ChannelMessageSendComplex(channelID, msg)
	if err != nil {
		return "", err
	}
	return sent.ID, nil
}

// EditMessage replaces a message's embeds and components in place
func (sp *SessionPlatform) EditMessage(channelID, messageID string, embeds []*discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	edit := discordgo.NewMessageEdit(channelID, messageID)
	edit.Embeds = &embeds
	edit.Components = &components
	_, err := sp.session.ChannelMessageEditComplex(edit)
	return err
}

// Ban bans by identity, optionally purging recent messages
func (sp *SessionPlatform) Ban(guildID, userID, reason string, deleteDays int) error {
	return sp.session.GuildBanCreateWithReason(guildID, userID, reason, deleteDays)
}

// Kick removes a member from the guild
func (sp *SessionPlatform) Kick(guildID, userID, reason string) error {
	return sp.session.GuildMemberDeleteWithReason(guildID, userID, reason)
}

// Timeout times a member out until the given time
func (sp *SessionPlatform) Timeout(guildID, userID string, until time.Time) error {
	return sp.session.GuildMemberTimeout(guildID, userID, &until)
}

// BanAuditLogEntry returns the most recent ban audit log entry targeting
// the user, nil if the lookback window holds none
func (sp *SessionPlatform) BanAuditLogEntry(guildID, userID string) (*AuditLogBan, error) {
	log, err := sp.session.GuildAuditLog(guildID, "", "", int(discordgo.AuditLogActionMemberBanAdd), 25)
	if err != nil {
		return nil, err
	}

	for _, entry := range log.AuditLogEntries {
		if entry.TargetID == userID {
			return &AuditLogBan{
				ExecutorID: entry.UserID,
				Reason:     entry.Reason,
			}, nil
		}
	}
	return nil, nil
}

// DownloadAttachment fetches an attachment's bytes and content type
func (sp *SessionPlatform) DownloadAttachment(url string) ([]byte, string, error) {
	resp, err := sp.http.Get(url)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("attachment download returned status %d", resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return content, resp.Header.Get("Content-Type"), nil
}
