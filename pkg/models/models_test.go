package models

import (
	"testing"
	"time"
)

func TestPenaltyHasEnforcement(t *testing.T) {
	tests := []struct {
		name    string
		penalty Penalty
		want    bool
	}{
		{"ban", Penalty{Ban: true}, true},
		{"kick", Penalty{Kick: true}, true},
		{"timeout", Penalty{Timeout: time.Hour}, true},
		{"plain warning", Penalty{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.penalty.HasEnforcement(); got != tt.want {
				t.Errorf("HasEnforcement() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMainLogMessage(t *testing.T) {
	w := &Warning{
		LogMessages: []LogMessage{
			{GuildID: "g2", MessageID: "m2"},
			{GuildID: "g1", MessageID: "m1", Main: true},
		},
	}

	main := w.MainLogMessage()
	if main == nil {
		t.Fatal("MainLogMessage returned nil")
	}
	if main.MessageID != "m1" {
		t.Errorf("MessageID = %v, want m1", main.MessageID)
	}

	empty := &Warning{}
	if empty.MainLogMessage() != nil {
		t.Error("MainLogMessage should return nil without replicas")
	}
}

func TestIsPrivateChannel(t *testing.T) {
	g := &GuildConfig{PrivateChannels: []string{"c1", "c2"}}

	if !g.IsPrivateChannel("c1") {
		t.Error("c1 should be private")
	}
	if g.IsPrivateChannel("c3") {
		t.Error("c3 should not be private")
	}
}
