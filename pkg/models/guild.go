package models

// GuildConfig is one watched guild. The replication engine iterates every
// row to decide fan-out targets, so one document exists per guild the bot
// serves.
type GuildConfig struct {
	ID              string   `bson:"_id" json:"id"`
	WarnLogsChannel string   `bson:"warnLogsChannel" json:"warnLogsChannel"`
	WarnCategory    string   `bson:"warnCategory" json:"warnCategory"`
	RestartChannel  string   `bson:"restartChannel,omitempty" json:"restartChannel,omitempty"`
	ErrorChannel    string   `bson:"errorChannel,omitempty" json:"errorChannel,omitempty"`
	PrivateChannels []string `bson:"privateChannels" json:"privateChannels"`
}

// IsPrivateChannel reports whether replies in the given channel should be
// shown to everyone instead of ephemerally.
func (g *GuildConfig) IsPrivateChannel(channelID string) bool {
	for _, id := range g.PrivateChannels {
		if id == channelID {
			return true
		}
	}
	return false
}
