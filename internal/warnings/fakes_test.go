package warnings

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/database"
	"github.com/Jochem-W/lemonbot-warns-sub000/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// fakeStore is an in-memory Store that mirrors the write-once and capped
// append behavior of the Mongo services.
type fakeStore struct {
	mu        sync.Mutex
	nextID    int64
	warnings  map[int64]*models.Warning
	guilds    []*models.GuildConfig
	hiddenBan *models.Penalty
	deleted   []int64
}

func newFakeStore(guilds ...*models.GuildConfig) *fakeStore {
	return &fakeStore{
		warnings: make(map[int64]*models.Warning),
		guilds:   guilds,
	}
}

func (s *fakeStore) CreateWarning(ctx context.Context, w *models.Warning) (*models.Warning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	w.ID = s.nextID
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now()
	}
	stored := *w
	s.warnings[w.ID] = &stored
	return w, nil
}

func (s *fakeStore) DeleteWarning(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.warnings, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *fakeStore) WarningByID(ctx context.Context, id int64) (*models.Warning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.warnings[id]
	if !ok {
		return nil, nil
	}
	copied := *w
	copied.Images = append([]models.WarningImage(nil), w.Images...)
	copied.LogMessages = append([]models.LogMessage(nil), w.LogMessages...)
	return &copied, nil
}

func (s *fakeStore) WarningByLogMessage(ctx context.Context, messageID string) (*models.Warning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range s.warnings {
		for _, lm := range w.LogMessages {
			if lm.MessageID == messageID {
				copied := *w
				return &copied, nil
			}
		}
	}
	return nil, nil
}

func (s *fakeStore) LatestExternalBan(ctx context.Context, userID, guildID string, since time.Time) (*models.Warning, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range s.warnings {
		if w.UserID == userID && w.GuildID == guildID &&
			w.Notified == models.NotifiedRegularBan && !w.CreatedAt.Before(since) {
			copied := *w
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) SetNotified(ctx context.Context, id int64, state models.NotifiedState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.warnings[id]
	if !ok {
		return fmt.Errorf("warning %d not found", id)
	}
	if w.Notified != "" {
		return database.ErrAlreadyResolved
	}
	w.Notified = state
	return nil
}

func (s *fakeStore) SetPenalised(ctx context.Context, id int64, state models.PenalisedState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.warnings[id]
	if !ok {
		return fmt.Errorf("warning %d not found", id)
	}
	if w.Penalised != "" {
		return database.ErrAlreadyResolved
	}
	w.Penalised = state
	return nil
}

func (s *fakeStore) SetDescription(ctx context.Context, id int64, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.warnings[id]
	if !ok {
		return fmt.Errorf("warning %d not found", id)
	}
	w.Description = description
	return nil
}

func (s *fakeStore) AddLogMessage(ctx context.Context, id int64, lm models.LogMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.warnings[id]
	if !ok {
		return fmt.Errorf("warning %d not found", id)
	}
	w.LogMessages = append(w.LogMessages, lm)
	return nil
}

func (s *fakeStore) AppendExtraImages(ctx context.Context, id int64, urls []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.warnings[id]
	if !ok {
		return fmt.Errorf("warning %d not found", id)
	}
	if w.ExtraImages+len(urls) > models.MaxExtraImages {
		return database.ErrImageCapExceeded
	}
	for _, url := range urls {
		w.Images = append(w.Images, models.WarningImage{URL: url, Extra: true})
	}
	w.ExtraImages += len(urls)
	return nil
}

func (s *fakeStore) Guilds(ctx context.Context) ([]*models.GuildConfig, error) {
	return s.guilds, nil
}

func (s *fakeStore) Guild(ctx context.Context, guildID string) (*models.GuildConfig, error) {
	for _, g := range s.guilds {
		if g.ID == guildID {
			return g, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) HiddenBanPenalty(ctx context.Context) (*models.Penalty, error) {
	if s.hiddenBan == nil {
		return nil, fmt.Errorf("no hidden ban penalty configured")
	}
	return s.hiddenBan, nil
}

type sentMessage struct {
	channelID string
	msg       *discordgo.MessageSend
}

type editedMessage struct {
	channelID  string
	messageID  string
	embeds     []*discordgo.MessageEmbed
	components []discordgo.MessageComponent
}

type banCall struct {
	guildID    string
	userID     string
	reason     string
	deleteDays int
}

// fakePlatform is a scriptable Platform. Zero value behavior: everyone is a
// member, every delivery succeeds.
type fakePlatform struct {
	mu sync.Mutex

	botID      string
	users      map[string]*discordgo.User
	nonMembers map[string]bool // "guild/user" pairs that are NOT members

	dmErr error
	dms   []*discordgo.MessageSend

	fallbackChannelID string
	fallbackErr       error

	nextMessageID int
	sent          []sentMessage
	sendErr       map[string]error // per channel id

	edits   []editedMessage
	editErr error

	bans       []banCall
	banErr     error
	kicks      []string
	kickErr    error
	timeouts   []string
	timeoutErr error

	auditEntry *AuditLogBan
	auditErr   error
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		botID:             "bot-1",
		users:             make(map[string]*discordgo.User),
		nonMembers:        make(map[string]bool),
		fallbackChannelID: "fallback-channel",
		sendErr:           make(map[string]error),
	}
}

func (p *fakePlatform) addUser(id, username string) *discordgo.User {
	u := &discordgo.User{ID: id, Username: username}
	p.users[id] = u
	return u
}

func (p *fakePlatform) removeMember(guildID, userID string) {
	p.nonMembers[guildID+"/"+userID] = true
}

func (p *fakePlatform) BotUserID() string { return p.botID }

func (p *fakePlatform) User(userID string) (*discordgo.User, error) {
	if u, ok := p.users[userID]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("unknown user %s", userID)
}

func (p *fakePlatform) IsMember(guildID, userID string) (bool, error) {
	return !p.nonMembers[guildID+"/"+userID], nil
}

func (p *fakePlatform) GuildName(guildID string) string {
	return "guild-" + guildID
}

func (p *fakePlatform) SendDM(userID string, msg *discordgo.MessageSend) error {
	if p.dmErr != nil {
		return p.dmErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dms = append(p.dms, msg)
	return nil
}

func (p *fakePlatform) CreateFallbackChannel(guild *models.GuildConfig, user *discordgo.User) (string, error) {
	if p.fallbackErr != nil {
		return "", p.fallbackErr
	}
	return p.fallbackChannelID, nil
}

func (p *fakePlatform) SendMessage(channelID string, msg *discordgo.MessageSend) (string, error) {
	if err := p.sendErr[channelID]; err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextMessageID++
	p.sent = append(p.sent, sentMessage{channelID: channelID, msg: msg})
	return fmt.Sprintf("msg-%d", p.nextMessageID), nil
}

func (p *fakePlatform) EditMessage(channelID, messageID string, embeds []*discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	if p.editErr != nil {
		return p.editErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.edits = append(p.edits, editedMessage{channelID: channelID, messageID: messageID, embeds: embeds, components: components})
	return nil
}

func (p *fakePlatform) Ban(guildID, userID, reason string, deleteDays int) error {
	if p.banErr != nil {
		return p.banErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bans = append(p.bans, banCall{guildID: guildID, userID: userID, reason: reason, deleteDays: deleteDays})
	return nil
}

func (p *fakePlatform) Kick(guildID, userID, reason string) error {
	if p.kickErr != nil {
		return p.kickErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.kicks = append(p.kicks, userID)
	return nil
}

func (p *fakePlatform) Timeout(guildID, userID string, until time.Time) error {
	if p.timeoutErr != nil {
		return p.timeoutErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timeouts = append(p.timeouts, userID)
	return nil
}

func (p *fakePlatform) BanAuditLogEntry(guildID, userID string) (*AuditLogBan, error) {
	return p.auditEntry, p.auditErr
}

func (p *fakePlatform) DownloadAttachment(url string) ([]byte, string, error) {
	return []byte("image-bytes"), "image/png", nil
}

// fakeUploader returns deterministic URLs
type fakeUploader struct {
	uploads []string
}

func (u *fakeUploader) Upload(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	u.uploads = append(u.uploads, key)
	return "https://cdn.test/" + key, nil
}

// fakeReporter collects reported errors
type fakeReporter struct {
	mu     sync.Mutex
	errors []error
}

func (r *fakeReporter) Report(err error, guildID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, err)
}

func (r *fakeReporter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errors)
}

// fakePublisher collects published warnings
type fakePublisher struct {
	published []*models.Warning
}

func (p *fakePublisher) PublishWarning(w *models.Warning) {
	p.published = append(p.published, w)
}
