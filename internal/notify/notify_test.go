package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/crewbase/gangplank/internal/models"
	slackapi "github.com/slack-go/slack"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB creates an in-memory SQLite database with the notifications table.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.Notification{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// recorder captures emitted events for assertions.
type recorder struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *recorder) Emit(ctx context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, ev)
	return nil
}

func TestStore_EmitAndList(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)
	ctx := context.Background()

	events := []Event{
		{TargetUserID: "emp-e", Kind: KindAssignmentCreated, AssignmentID: "asg-00001"},
		{TargetUserID: "emp-e", Kind: KindItemApproved, AssignmentID: "asg-00001", ItemID: "itm-00001", ActorID: "mgr-sup", NewState: "approved", Note: "looks good"},
		{TargetUserID: "emp-other", Kind: KindAssignmentCreated, AssignmentID: "asg-00002"},
	}
	for _, ev := range events {
		if err := s.Emit(ctx, ev); err != nil {
			t.Fatalf("emit %s: %v", ev.Kind, err)
		}
	}

	mine, err := s.List("emp-e", ListFilters{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("len = %d, want 2", len(mine))
	}

	approved, err := s.List("emp-e", ListFilters{Kind: string(KindItemApproved)})
	if err != nil {
		t.Fatalf("list by kind: %v", err)
	}
	if len(approved) != 1 {
		t.Fatalf("len = %d, want 1", len(approved))
	}
	if !strings.Contains(approved[0].Payload, `"note":"looks good"`) {
		t.Errorf("payload = %s, missing note", approved[0].Payload)
	}
	if approved[0].Read {
		t.Error("new notification should be unread")
	}
}

func TestStore_EmitRequiresTarget(t *testing.T) {
	s := NewStore(testDB(t))
	if err := s.Emit(context.Background(), Event{Kind: KindItemCompleted}); err == nil {
		t.Fatal("expected error for missing target user")
	}
}

func TestStore_MarkRead(t *testing.T) {
	db := testDB(t)
	s := NewStore(db)

	if err := s.Emit(context.Background(), Event{TargetUserID: "emp-e", Kind: KindItemRejected}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	all, err := s.List("emp-e", ListFilters{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if err := s.MarkRead(all[0].ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	unread, err := s.List("emp-e", ListFilters{UnreadOnly: true})
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	if len(unread) != 0 {
		t.Errorf("unread = %d, want 0", len(unread))
	}

	if err := s.MarkRead(9999); err == nil {
		t.Error("expected error for unknown notification")
	}
}

func TestFanout_BestEffort(t *testing.T) {
	boom := errors.New("boom")
	failing := &recorder{err: boom}
	ok := &recorder{}

	f := Fanout{failing, ok}
	err := f.Emit(context.Background(), Event{TargetUserID: "emp-e", Kind: KindItemCompleted})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want first failure surfaced", err)
	}
	if len(ok.events) != 1 {
		t.Errorf("later emitter got %d events, want 1", len(ok.events))
	}
}

// mockSlack records posted channel IDs.
type mockSlack struct {
	channels []string
	err      error
}

func (m *mockSlack) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	if m.err != nil {
		return "", "", m.err
	}
	m.channels = append(m.channels, channelID)
	return channelID, "123", nil
}

func TestSlack_Emit(t *testing.T) {
	mock := &mockSlack{}
	s, err := NewSlack(SlackOpts{ChannelID: "C123", Client: mock})
	if err != nil {
		t.Fatalf("new slack: %v", err)
	}

	ev := Event{TargetUserID: "emp-e", Kind: KindItemApproved, AssignmentID: "asg-00001", ItemID: "itm-00001", ActorID: "mgr-sup"}
	if err := s.Emit(context.Background(), ev); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(mock.channels) != 1 || mock.channels[0] != "C123" {
		t.Errorf("posted channels = %v, want [C123]", mock.channels)
	}

	mock.err = errors.New("rate limited")
	if err := s.Emit(context.Background(), ev); err == nil {
		t.Error("expected post failure to surface")
	}
}

func TestNewSlack_Validation(t *testing.T) {
	if _, err := NewSlack(SlackOpts{BotToken: "xoxb-test"}); err == nil {
		t.Error("expected error for missing channel")
	}
	if _, err := NewSlack(SlackOpts{ChannelID: "C123"}); err == nil {
		t.Error("expected error for missing token and client")
	}
}

// mockDiscord records sent embeds.
type mockDiscord struct {
	embeds []*discordgo.MessageEmbed
	err    error
}

func (m *mockDiscord) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.embeds = append(m.embeds, embed)
	return &discordgo.Message{}, nil
}

func TestDiscord_Emit(t *testing.T) {
	mock := &mockDiscord{}
	d, err := NewDiscord(DiscordOpts{ChannelID: "987", Session: mock})
	if err != nil {
		t.Fatalf("new discord: %v", err)
	}

	ev := Event{TargetUserID: "emp-e", Kind: KindItemRejected, AssignmentID: "asg-00001", ItemID: "itm-00001", ActorID: "mgr-sup", Note: "missing receipt"}
	if err := d.Emit(context.Background(), ev); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(mock.embeds) != 1 {
		t.Fatalf("embeds = %d, want 1", len(mock.embeds))
	}
	embed := mock.embeds[0]
	if embed.Description != "missing receipt" {
		t.Errorf("Description = %q, want note text", embed.Description)
	}
	if embed.Color != hexColor(colorDanger) {
		t.Errorf("Color = %d, want danger", embed.Color)
	}
}

func TestHexColor(t *testing.T) {
	if got := hexColor("#36a64f"); got != 0x36a64f {
		t.Errorf("hexColor = %#x, want 0x36a64f", got)
	}
	if got := hexColor("nonsense"); got != 0 {
		t.Errorf("hexColor(nonsense) = %d, want 0", got)
	}
}

func TestHeadline_CoversAllKinds(t *testing.T) {
	kinds := []Kind{
		KindAssignmentCreated, KindItemCompleted, KindItemUncompleted,
		KindItemApproved, KindItemRejected, KindOverdueDigest,
	}
	seen := map[string]bool{}
	for _, k := range kinds {
		h := headline(Event{Kind: k, AssignmentID: "asg-00001", ItemID: "itm-00001", ActorID: "mgr-sup", TargetUserID: "emp-e"})
		if h == "" {
			t.Errorf("%s: empty headline", k)
		}
		if seen[h] {
			t.Errorf("%s: duplicate headline %q", k, h)
		}
		seen[h] = true
	}
}

func TestDigest_RunOnce(t *testing.T) {
	db := testDB(t)
	rec := &recorder{}

	overdue := func(db *gorm.DB, now time.Time) ([]OverdueAssignment, error) {
		return []OverdueAssignment{
			{AssignmentID: "asg-00001", UserID: "emp-a"},
			{AssignmentID: "asg-00002", UserID: "emp-b"},
		}, nil
	}
	d, err := NewDigest(db, rec, overdue, "0 9 * * *")
	if err != nil {
		t.Fatalf("new digest: %v", err)
	}

	if err := d.RunOnce(time.Now()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if len(rec.events) != 2 {
		t.Fatalf("events = %d, want 2", len(rec.events))
	}
	for _, ev := range rec.events {
		if ev.Kind != KindOverdueDigest {
			t.Errorf("kind = %q, want overdue_digest", ev.Kind)
		}
	}
}

func TestDigest_PropagatesOverdueError(t *testing.T) {
	boom := errors.New("boom")
	overdue := func(db *gorm.DB, now time.Time) ([]OverdueAssignment, error) {
		return nil, boom
	}
	d, err := NewDigest(testDB(t), &recorder{}, overdue, "0 9 * * *")
	if err != nil {
		t.Fatalf("new digest: %v", err)
	}
	if err := d.RunOnce(time.Now()); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestNewDigest_BadCron(t *testing.T) {
	overdue := func(db *gorm.DB, now time.Time) ([]OverdueAssignment, error) { return nil, nil }
	if _, err := NewDigest(testDB(t), &recorder{}, overdue, "not a cron"); err == nil {
		t.Error("expected error for invalid cron expression")
	}
}
