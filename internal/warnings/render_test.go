package warnings

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/models"
	"github.com/bwmarrin/discordgo"
)

func renderedWarning() *models.Warning {
	return &models.Warning{
		ID:          7,
		CreatedAt:   time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
		CreatedBy:   "mod",
		UserID:      "u1",
		GuildID:     "g1",
		Description: "spamming",
		Penalty:     models.Penalty{Name: "timeout", Timeout: time.Hour},
		Notified:    models.NotifiedDM,
		Penalised:   models.PenalisedApplied,
	}
}

func renderedContext() RenderContext {
	return RenderContext{ModeratorName: "moderator", TargetName: "alice", GuildName: "Test Guild"}
}

func TestRenderLogDeterministic(t *testing.T) {
	w := renderedWarning()
	rc := renderedContext()

	first := RenderLog(w, rc)
	second := RenderLog(w, rc)

	if !reflect.DeepEqual(first, second) {
		t.Error("RenderLog must be deterministic for the same warning")
	}
}

func TestRenderLogPrimaryEmbed(t *testing.T) {
	rendered := RenderLog(renderedWarning(), renderedContext())

	if len(rendered.Embeds) != 1 {
		t.Fatalf("embed count = %d, want 1", len(rendered.Embeds))
	}
	embed := rendered.Embeds[0]

	if embed.Author == nil || embed.Author.Name != "moderator timed out alice" {
		t.Errorf("author = %v, want 'moderator timed out alice'", embed.Author)
	}
	if embed.Footer == nil || embed.Footer.Text != "Warning #7" {
		t.Errorf("footer = %v, want 'Warning #7'", embed.Footer)
	}

	if field := findField(embed, "Reason"); field == nil || field.Value != "spamming" {
		t.Errorf("Reason field = %v, want 'spamming'", field)
	}
	if field := findField(embed, "Server"); field == nil || field.Value != "Test Guild" {
		t.Errorf("Server field = %v, want 'Test Guild'", field)
	}
	if field := findField(embed, "Timeout"); field == nil {
		t.Error("Timeout field missing for a timeout penalty")
	}

	// A described warning gets no edit control
	if len(rendered.Components) != 0 {
		t.Errorf("components = %v, want none", rendered.Components)
	}
}

func TestRenderLogErrorsSection(t *testing.T) {
	w := renderedWarning()
	w.Notified = models.NotifiedDMsDisabled
	w.Penalised = models.PenalisedError

	rendered := RenderLog(w, renderedContext())
	field := findField(rendered.Embeds[0], "Errors")
	if field == nil {
		t.Fatal("Errors field missing for non-ideal outcomes")
	}

	if !strings.Contains(field.Value, "Could not notify the user: direct messages are disabled") {
		t.Errorf("Errors field missing the DMs-disabled phrasing: %q", field.Value)
	}
	if !strings.Contains(field.Value, "The penalty could not be applied") {
		t.Errorf("Errors field missing the enforcement phrasing: %q", field.Value)
	}
}

func TestRenderLogNoErrorsSectionForIdealOutcomes(t *testing.T) {
	rendered := RenderLog(renderedWarning(), renderedContext())

	if findField(rendered.Embeds[0], "Errors") != nil {
		t.Error("Errors field must be absent when both outcomes are ideal")
	}
}

func TestRenderLogEditControlWithoutDescription(t *testing.T) {
	w := renderedWarning()
	w.Description = ""

	rendered := RenderLog(w, renderedContext())

	if findField(rendered.Embeds[0], "Reason") != nil {
		t.Error("Reason field must be absent without a description")
	}

	button := findButton(t, rendered.Components)
	if button.CustomID != "button:editDescription:7" {
		t.Errorf("edit button id = %v, want button:editDescription:7", button.CustomID)
	}
}

func TestRenderLogExtraImageEmbeds(t *testing.T) {
	w := renderedWarning()
	w.Images = []models.WarningImage{
		{URL: "https://cdn.test/a.png"},
		{URL: "https://cdn.test/b.png", Extra: true},
		{URL: "https://cdn.test/c.png", Extra: true},
	}

	rendered := RenderLog(w, renderedContext())

	if len(rendered.Embeds) != 3 {
		t.Fatalf("embed count = %d, want 3", len(rendered.Embeds))
	}
	if rendered.Embeds[0].Image == nil || rendered.Embeds[0].Image.URL != "https://cdn.test/a.png" {
		t.Error("first image must ride on the primary embed")
	}
	if rendered.Embeds[1].Image.URL != "https://cdn.test/b.png" {
		t.Errorf("second embed image = %v", rendered.Embeds[1].Image.URL)
	}
}

func TestWarningVerb(t *testing.T) {
	tests := []struct {
		penalty models.Penalty
		want    string
	}{
		{models.Penalty{Ban: true}, "banned"},
		{models.Penalty{Kick: true}, "kicked"},
		{models.Penalty{Timeout: time.Hour}, "timed out"},
		{models.Penalty{}, "warned"},
	}

	for _, tt := range tests {
		w := &models.Warning{Penalty: tt.penalty}
		if got := w.Verb(); got != tt.want {
			t.Errorf("Verb() = %v, want %v", got, tt.want)
		}
	}
}

func findField(embed *discordgo.MessageEmbed, name string) *discordgo.MessageEmbedField {
	for _, f := range embed.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}
