package bot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joxtacy/joxtabot/internal/command"
	"github.com/Joxtacy/joxtabot/internal/irc"
	"github.com/Joxtacy/joxtabot/internal/twitch"
)

type fakeChat struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeChat) SendMessage(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeChat) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

type fakeRelay struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeRelay) Publish(payload []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, string(payload))
}

func (f *fakeRelay) published() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

type fakeStreams struct {
	info twitch.StreamInfo
	err  error
}

func (f *fakeStreams) GetStreamInfo(context.Context) (twitch.StreamInfo, error) {
	return f.info, f.err
}

type fakeNotifier struct {
	mu    sync.Mutex
	posts []string
	err   error
}

func (f *fakeNotifier) Post(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.posts = append(f.posts, text)
	return nil
}

func (f *fakeNotifier) posted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.posts...)
}

type fakeRewards struct {
	mu      sync.Mutex
	first   string
	cleared int
	err     error
}

func (f *fakeRewards) SetFirstClaim(_ context.Context, user string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.first = user
	return nil
}

func (f *fakeRewards) GetFirstClaim(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.first, nil
}

func (f *fakeRewards) ClearFirstClaim(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.first = ""
	f.cleared++
	return nil
}

type routerFixture struct {
	router   *Router
	chat     *fakeChat
	relay    *fakeRelay
	streams  *fakeStreams
	notifier *fakeNotifier
	rewards  *fakeRewards
	clock    *clockwork.FakeClock
	cancel   context.CancelFunc
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	f := &routerFixture{
		chat:     &fakeChat{},
		relay:    &fakeRelay{},
		streams:  &fakeStreams{info: twitch.StreamInfo{GameName: "Factorio", Title: "The factory grows"}},
		notifier: &fakeNotifier{},
		rewards:  &fakeRewards{},
		clock:    clockwork.NewFakeClock(),
		cancel:   cancel,
	}
	f.router = NewRouter(ctx, f.chat, f.relay, f.streams, f.notifier, f.rewards, f.clock, "joxtacy")
	return f
}

func privmsg(text string) irc.ParsedMessage {
	return irc.ParsedMessage{
		Source:  &irc.Source{Nick: "viewer", Host: "viewer@viewer.tmi.twitch.tv"},
		Command: irc.Privmsg{Channel: "joxtacy", Message: text},
	}
}

func TestRouterAutoReply(t *testing.T) {
	f := newRouterFixture(t)

	f.router.HandleMessage(privmsg("that song is catJAM"))

	assert.Equal(t, []string{"catJAM"}, f.chat.messages())
}

func TestRouterAutoReplyPriority(t *testing.T) {
	f := newRouterFixture(t)

	// Both triggers present, only the first in priority order replies.
	f.router.HandleMessage(privmsg("widepeepoHappy catJAM"))

	assert.Equal(t, []string{"catJAM"}, f.chat.messages())
}

func TestRouterNoReplyWithoutTrigger(t *testing.T) {
	f := newRouterFixture(t)

	f.router.HandleMessage(privmsg("just chatting"))

	assert.Empty(t, f.chat.messages())
}

func TestRouterFirstCommandRepliesWithClaimant(t *testing.T) {
	f := newRouterFixture(t)

	f.router.Dispatch(command.First{User: "speedyviewer"})
	f.router.HandleMessage(privmsg("!first"))

	assert.Equal(t, []string{"speedyviewer was first!"}, f.chat.messages())
}

func TestRouterFirstCommandWithoutClaim(t *testing.T) {
	f := newRouterFixture(t)

	f.router.HandleMessage(privmsg("  !first  "))

	assert.Equal(t, []string{"Nobody has claimed first yet!"}, f.chat.messages())
}

func TestRouterFirstCommandSwallowsStoreFailure(t *testing.T) {
	f := newRouterFixture(t)
	f.rewards.err = errors.New("postgres down")

	require.NotPanics(t, func() {
		f.router.HandleMessage(privmsg("!first"))
	})
	assert.Empty(t, f.chat.messages())
}

func TestRouterPublishesOverlayEvents(t *testing.T) {
	f := newRouterFixture(t)

	f.router.Dispatch(command.Ded{})
	f.router.Dispatch(command.FourTwenty{})
	f.router.Dispatch(command.Nice{})

	assert.Equal(t, []string{"Death", "420", "Nice"}, f.relay.published())
}

func TestRouterStreamOnlineAnnouncement(t *testing.T) {
	f := newRouterFixture(t)

	f.router.Dispatch(command.StreamOnline{})

	assert.Equal(t, 1, f.rewards.cleared)
	require.Len(t, f.notifier.posted(), 1)

	text := f.notifier.posted()[0]
	assert.Contains(t, text, "Factorio")
	assert.Contains(t, text, "The factory grows")
	assert.Contains(t, text, "https://twitch.tv/joxtacy")
}

func TestRouterStreamOnlineFallsBackWithoutMetadata(t *testing.T) {
	f := newRouterFixture(t)
	f.streams.err = errors.New("helix down")

	f.router.Dispatch(command.StreamOnline{})

	require.Len(t, f.notifier.posted(), 1)
	text := f.notifier.posted()[0]
	assert.Contains(t, text, fallbackGameName)
	assert.Contains(t, text, fallbackTitle)
}

func TestRouterStreamOnlineSwallowsNotifierFailure(t *testing.T) {
	f := newRouterFixture(t)
	f.notifier.err = errors.New("discord down")

	require.NotPanics(t, func() {
		f.router.Dispatch(command.StreamOnline{})
	})
	assert.Equal(t, 1, f.rewards.cleared)
}

func TestRouterFirstPersistsClaim(t *testing.T) {
	f := newRouterFixture(t)

	f.router.Dispatch(command.First{User: "speedyviewer"})

	assert.Equal(t, "speedyviewer", f.rewards.first)
}

func TestRouterEmoteOnlyEnablesAndSchedulesDisable(t *testing.T) {
	f := newRouterFixture(t)

	f.router.Dispatch(command.EmoteOnly{})
	assert.Equal(t, []string{"/emoteonly"}, f.chat.messages())

	f.clock.BlockUntil(1)
	f.clock.Advance(emoteOnlyDuration)

	assert.Eventually(t, func() bool {
		msgs := f.chat.messages()
		return len(msgs) == 2 && msgs[1] == "/emoteonlyoff"
	}, time.Second, 5*time.Millisecond)
}

func TestRouterEmoteOnlyTimerCancelledByShutdown(t *testing.T) {
	f := newRouterFixture(t)

	f.router.Dispatch(command.EmoteOnly{})
	f.clock.BlockUntil(1)

	f.cancel()
	f.clock.Advance(emoteOnlyDuration)

	// The disable must not fire after shutdown.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, []string{"/emoteonly"}, f.chat.messages())
}

func TestRouterPrivmsgCommand(t *testing.T) {
	f := newRouterFixture(t)

	f.router.Dispatch(command.Privmsg{Text: "manual hello"})

	assert.Equal(t, []string{"manual hello"}, f.chat.messages())
}

func TestRouterLogOnlyCommandsHaveNoSideEffects(t *testing.T) {
	f := newRouterFixture(t)

	f.router.Dispatch(command.Timeout{Seconds: 120, User: "viewer"})
	f.router.Dispatch(command.Pushup{Count: 1})
	f.router.Dispatch(command.Situp{Count: 1})
	f.router.Dispatch(command.Unsupported{})

	assert.Empty(t, f.chat.messages())
	assert.Empty(t, f.relay.published())
	assert.Empty(t, f.notifier.posted())
	assert.Equal(t, "", f.rewards.first)
}

func TestRouterIgnoresStateMessages(t *testing.T) {
	f := newRouterFixture(t)

	messages := []irc.ParsedMessage{
		{Command: irc.RoomState{Channel: "joxtacy"}},
		{Command: irc.UserState{Channel: "joxtacy"}},
		{Command: irc.GlobalUserState{}},
		{Command: irc.Numeric{Code: 1, Message: "Welcome, GLHF!"}},
		{Command: irc.Cap{Ack: true}},
	}
	for _, msg := range messages {
		require.NotPanics(t, func() { f.router.HandleMessage(msg) })
	}

	assert.Empty(t, f.chat.messages())
}
