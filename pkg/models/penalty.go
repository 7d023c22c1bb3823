package models

import "time"

// Penalty is a named enforcement level. Warnings embed a snapshot of the
// penalty at creation time so later edits to the penalty list never change
// what a historical record means.
type Penalty struct {
	Name           string        `bson:"name" json:"name"`
	Ban            bool          `bson:"ban" json:"ban"`
	Kick           bool          `bson:"kick" json:"kick"`
	Timeout        time.Duration `bson:"timeout,omitempty" json:"timeout,omitempty"`
	DeleteMessages bool          `bson:"deleteMessages" json:"deleteMessages"`
	// Hidden penalties are not offered as a moderator-facing choice; the
	// reconciliation loop uses one for bans taken outside the bot.
	Hidden bool `bson:"hidden" json:"hidden"`
}

// HasEnforcement reports whether applying this penalty does anything beyond
// recording the warning.
func (p Penalty) HasEnforcement() bool {
	return p.Ban || p.Kick || p.Timeout > 0
}
