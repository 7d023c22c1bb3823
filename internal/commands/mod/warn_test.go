package mod

import (
	"fmt"
	"testing"
	"time"

	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/models"
	"github.com/bwmarrin/discordgo"
)

func summaryField(embed *discordgo.MessageEmbed, name string) *discordgo.MessageEmbedField {
	for _, f := range embed.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func TestWarnSummaryFirstWarning(t *testing.T) {
	w := &models.Warning{
		ID:        3,
		Notified:  models.NotifiedDM,
		Penalised: models.PenalisedNoPenalty,
		Penalty:   models.Penalty{Name: "warning"},
		CreatedAt: time.Now(),
	}
	target := &discordgo.User{ID: "u1", Username: "alice"}

	embed := warnSummary(w, target, nil)

	if embed.Footer.Text != "Warning #3" {
		t.Errorf("footer = %q, want %q", embed.Footer.Text, "Warning #3")
	}
	if f := summaryField(embed, "Previous warning"); f != nil {
		t.Errorf("Previous warning field = %q, want none for a first warning", f.Value)
	}
	if f := summaryField(embed, "Notification"); f == nil || f.Value != "Sent by DM" {
		t.Errorf("Notification field = %v, want %q", f, "Sent by DM")
	}
}

func TestWarnSummaryShowsPreviousWarning(t *testing.T) {
	prevCreated := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	previous := &models.Warning{
		ID:        3,
		Penalty:   models.Penalty{Name: "timeout"},
		CreatedAt: prevCreated,
	}
	w := &models.Warning{
		ID:        4,
		Notified:  models.NotifiedDM,
		Penalised: models.PenalisedApplied,
		Penalty:   models.Penalty{Name: "kick", Kick: true},
		CreatedAt: time.Now(),
	}
	target := &discordgo.User{ID: "u1", Username: "alice"}

	embed := warnSummary(w, target, previous)

	f := summaryField(embed, "Previous warning")
	if f == nil {
		t.Fatal("Expected a Previous warning field")
	}
	want := fmt.Sprintf("#3 (timeout), <t:%d:R>", prevCreated.Unix())
	if f.Value != want {
		t.Errorf("Previous warning = %q, want %q", f.Value, want)
	}
}

func TestDescribePenalty(t *testing.T) {
	tests := []struct {
		name    string
		penalty models.Penalty
		want    string
	}{
		{"record only", models.Penalty{Name: "warning"}, "Records the warning only"},
		{"kick", models.Penalty{Name: "kick", Kick: true}, "Kicks the user"},
		{"ban with purge", models.Penalty{Name: "ban", Ban: true, DeleteMessages: true}, "Bans the user, deletes their recent messages"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describePenalty(tt.penalty); got != tt.want {
				t.Errorf("describePenalty() = %q, want %q", got, tt.want)
			}
		})
	}
}
