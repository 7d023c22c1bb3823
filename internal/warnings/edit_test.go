package warnings

import (
	"context"
	"testing"

	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/models"
	"github.com/bwmarrin/discordgo"
)

func publishedWarning(t *testing.T, store *fakeStore, platform *fakePlatform, pipeline *Pipeline) *models.Warning {
	t.Helper()

	platform.addUser("mod", "moderator")
	platform.addUser("u1", "alice")

	w := createWarning(t, store, &models.Warning{
		CreatedBy: "mod",
		UserID:    "u1",
		GuildID:   "g1",
		Notified:  models.NotifiedDM,
		Penalised: models.PenalisedNoPenalty,
		Penalty:   models.Penalty{Name: "warning"},
	})

	if _, err := pipeline.Publish(context.Background(), w); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	return w
}

func TestSetDescriptionReRendersAllReplicas(t *testing.T) {
	store := newFakeStore(testGuild("g1"), testGuild("g2"))
	platform := newFakePlatform()
	pipeline, _, _ := newTestPipeline(store, platform)

	w := publishedWarning(t, store, platform, pipeline)

	if err := pipeline.SetDescription(context.Background(), w.ID, "harassment"); err != nil {
		t.Fatalf("SetDescription returned error: %v", err)
	}

	stored, _ := store.WarningByID(context.Background(), w.ID)
	if stored.Description != "harassment" {
		t.Errorf("description = %v, want harassment", stored.Description)
	}

	// Every replica is edited, main and secondary alike
	if len(platform.edits) != 2 {
		t.Fatalf("edit count = %d, want 2", len(platform.edits))
	}
	for _, edit := range platform.edits {
		field := findField(edit.embeds[0], "Reason")
		if field == nil || field.Value != "harassment" {
			t.Errorf("replica %s missing the updated reason", edit.messageID)
		}
	}
}

func TestAppendImagesWithinCap(t *testing.T) {
	store := newFakeStore(testGuild("g1"))
	platform := newFakePlatform()
	pipeline, _, _ := newTestPipeline(store, platform)

	w := publishedWarning(t, store, platform, pipeline)

	attachments := []*discordgo.MessageAttachment{
		{URL: "https://discord.test/a.png", Filename: "a.png", ContentType: "image/png"},
		{URL: "https://discord.test/b.png", Filename: "b.png", ContentType: "image/png"},
	}

	overflow, err := pipeline.AppendImages(context.Background(), w, attachments)
	if err != nil {
		t.Fatalf("AppendImages returned error: %v", err)
	}
	if overflow != 0 {
		t.Errorf("overflow = %d, want 0", overflow)
	}

	stored, _ := store.WarningByID(context.Background(), w.ID)
	if stored.ExtraImages != 2 {
		t.Errorf("extra images = %d, want 2", stored.ExtraImages)
	}
	for _, img := range stored.Images {
		if !img.Extra {
			t.Errorf("appended image %s must be marked extra", img.URL)
		}
	}

	// Replicas picked up the new rendering
	if len(platform.edits) != len(stored.LogMessages) {
		t.Errorf("edit count = %d, want %d", len(platform.edits), len(stored.LogMessages))
	}
}

func TestAppendImagesOverflowRejectedExactly(t *testing.T) {
	store := newFakeStore(testGuild("g1"))
	platform := newFakePlatform()
	pipeline, _, _ := newTestPipeline(store, platform)

	w := publishedWarning(t, store, platform, pipeline)

	// Fill the cap
	if err := store.AppendExtraImages(context.Background(), w.ID, []string{"a", "b", "c", "d"}); err != nil {
		t.Fatalf("AppendExtraImages returned error: %v", err)
	}
	w, _ = store.WarningByID(context.Background(), w.ID)

	overflow, err := pipeline.AppendImages(context.Background(), w, []*discordgo.MessageAttachment{
		{URL: "https://discord.test/e.png", Filename: "e.png", ContentType: "image/png"},
	})
	if err != nil {
		t.Fatalf("AppendImages returned error: %v", err)
	}
	if overflow != 1 {
		t.Errorf("overflow = %d, want 1", overflow)
	}

	stored, _ := store.WarningByID(context.Background(), w.ID)
	if stored.ExtraImages != models.MaxExtraImages {
		t.Errorf("extra images = %d, want %d", stored.ExtraImages, models.MaxExtraImages)
	}
	// The rejected append changed nothing, so no replica edit happened
	if len(platform.edits) != 0 {
		t.Errorf("edit count = %d, want 0", len(platform.edits))
	}
}

func TestAppendImagesPartialOverflow(t *testing.T) {
	store := newFakeStore(testGuild("g1"))
	platform := newFakePlatform()
	pipeline, _, _ := newTestPipeline(store, platform)

	w := publishedWarning(t, store, platform, pipeline)

	if err := store.AppendExtraImages(context.Background(), w.ID, []string{"a", "b", "c"}); err != nil {
		t.Fatalf("AppendExtraImages returned error: %v", err)
	}
	w, _ = store.WarningByID(context.Background(), w.ID)

	// Room for one more, three offered
	overflow, err := pipeline.AppendImages(context.Background(), w, []*discordgo.MessageAttachment{
		{URL: "https://discord.test/d.png", Filename: "d.png", ContentType: "image/png"},
		{URL: "https://discord.test/e.png", Filename: "e.png", ContentType: "image/png"},
		{URL: "https://discord.test/f.png", Filename: "f.png", ContentType: "image/png"},
	})
	if err != nil {
		t.Fatalf("AppendImages returned error: %v", err)
	}
	if overflow != 2 {
		t.Errorf("overflow = %d, want 2", overflow)
	}

	stored, _ := store.WarningByID(context.Background(), w.ID)
	if stored.ExtraImages != 3 {
		t.Errorf("extra images = %d, want 3 (rejected append must change nothing)", stored.ExtraImages)
	}
}

func TestIsImageAttachment(t *testing.T) {
	tests := []struct {
		name string
		att  *discordgo.MessageAttachment
		want bool
	}{
		{"png content type", &discordgo.MessageAttachment{ContentType: "image/png", Filename: "a.png"}, true},
		{"text content type", &discordgo.MessageAttachment{ContentType: "text/plain", Filename: "a.txt"}, false},
		{"no content type, image extension", &discordgo.MessageAttachment{Filename: "evidence.PNG"}, true},
		{"no content type, webp extension", &discordgo.MessageAttachment{Filename: "clip.webp"}, true},
		{"no content type, no image extension", &discordgo.MessageAttachment{Filename: "notes.txt"}, false},
		{"no content type, no extension", &discordgo.MessageAttachment{Filename: "evidence"}, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsImageAttachment(tt.att); got != tt.want {
				t.Errorf("IsImageAttachment() = %v, want %v", got, tt.want)
			}
		})
	}
}
