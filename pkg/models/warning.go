// Package models defines the MongoDB document shapes used by the bot.
package models

import "time"

// NotifiedState is the terminal state of the notification pipeline.
type NotifiedState string

const (
	NotifiedSilent      NotifiedState = "SILENT"
	NotifiedNotInServer NotifiedState = "NOT_IN_SERVER"
	NotifiedDM          NotifiedState = "DM"
	NotifiedDMsDisabled NotifiedState = "DMS_DISABLED"
	NotifiedChannel     NotifiedState = "CHANNEL"
	NotifiedRegularBan  NotifiedState = "REGULAR_BAN"
)

// PenalisedState is the terminal state of the enforcement pipeline.
type PenalisedState string

const (
	PenalisedApplied     PenalisedState = "APPLIED"
	PenalisedNotInServer PenalisedState = "NOT_IN_SERVER"
	PenalisedNoPenalty   PenalisedState = "NO_PENALTY"
	PenalisedError       PenalisedState = "ERROR"
	PenalisedNotNotified PenalisedState = "NOT_NOTIFIED"
)

// WarningImage is one image attached to a warning. Extra images are the ones
// appended later by replying to a log message; they count against the cap.
type WarningImage struct {
	URL   string `bson:"url" json:"url"`
	Extra bool   `bson:"extra" json:"extra"`
}

// MaxExtraImages is the hard cap on Extra images per warning.
const MaxExtraImages = 4

// LogMessage is one posted replica of a warning's log entry. Exactly one
// entry per warning has Main set: the copy in the guild the action
// originated in.
type LogMessage struct {
	GuildID   string `bson:"guildId" json:"guildId"`
	ChannelID string `bson:"channelId" json:"channelId"`
	MessageID string `bson:"messageId" json:"messageId"`
	Main      bool   `bson:"main" json:"main"`
}

// Warning is the durable record of one moderation action against one user.
//
// Notified and Penalised are write-once: the services only set them through
// filtered updates that refuse to overwrite a resolved value. ExtraImages
// mirrors the count of Extra entries in Images so the append cap can be
// enforced inside a single update filter.
type Warning struct {
	ID          int64          `bson:"_id" json:"id"`
	CreatedAt   time.Time      `bson:"createdAt" json:"createdAt"`
	CreatedBy   string         `bson:"createdBy" json:"createdBy"`
	UserID      string         `bson:"userId" json:"userId"`
	GuildID     string         `bson:"guildId" json:"guildId"`
	Description string         `bson:"description,omitempty" json:"description,omitempty"`
	Silent      bool           `bson:"silent" json:"silent"`
	Penalty     Penalty        `bson:"penalty" json:"penalty"`
	Images      []WarningImage `bson:"images" json:"images"`
	ExtraImages int            `bson:"extraImages" json:"extraImages"`
	Notified    NotifiedState  `bson:"notified,omitempty" json:"notified,omitempty"`
	Penalised   PenalisedState `bson:"penalised,omitempty" json:"penalised,omitempty"`
	LogMessages []LogMessage   `bson:"logMessages" json:"logMessages"`
}

// MainLogMessage returns the main replica, or nil if none was recorded yet.
func (w *Warning) MainLogMessage() *LogMessage {
	for i := range w.LogMessages {
		if w.LogMessages[i].Main {
			return &w.LogMessages[i]
		}
	}
	return nil
}

// Verb returns the past-tense verb for the warning's log entry, derived from
// the penalty.
func (w *Warning) Verb() string {
	switch {
	case w.Penalty.Ban:
		return "banned"
	case w.Penalty.Kick:
		return "kicked"
	case w.Penalty.Timeout > 0:
		return "timed out"
	default:
		return "warned"
	}
}
