package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"talky/domain"
	"talky/domain/event"
	"talky/mocks"
	"talky/observability"
	"talky/runtime/workers"
	"talky/sink"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestOrchestrator(t *testing.T, summarizer *mocks.MockSummarizer) *Orchestrator {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	return NewOrchestrator(log, workers.NewSupervisor(log, 10*time.Millisecond), NewRegistry(),
		summarizer, observability.NewMonitoringManager(), Options{
			RollingLogSize:   20,
			SummaryWorkers:   1,
			SummaryQueueSize: 4,
			SummaryTimeout:   time.Second,
		})
}

func newTestSink() *sink.SessionSink {
	return sink.NewSessionSink(logs.GetLoggerFromLevel(slog.LevelDebug), 64, 10*time.Millisecond)
}

func rosterNames(u event.Users) []string {
	names := u.Usernames()
	sort.Strings(names)
	return names
}

func usersEvents(events []event.Event) []event.Users {
	return lo.FilterMap(events, func(e event.Event, _ int) (event.Users, bool) {
		u, ok := e.(event.Users)
		return u, ok
	})
}

func TestOrchestrator_Scenario_ChatAndPrivate(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	o := newTestOrchestrator(t, nil)
	aliceSink, bobSink := newTestSink(), newTestSink()

	// Given alice then bob connect
	alice, err := o.Connect(ctx, "alice", aliceSink)
	req.NoError(err)
	bob, err := o.Connect(ctx, "bob", bobSink)
	req.NoError(err)

	// Then alice saw two rosters, the last one with both
	aliceRosters := usersEvents(drain(aliceSink))
	req.Len(aliceRosters, 2)
	req.Equal([]string{"alice"}, rosterNames(aliceRosters[0]))
	req.Equal([]string{"alice", "bob"}, rosterNames(aliceRosters[1]))
	req.Contains(aliceRosters[1].Users, alice)
	req.Contains(aliceRosters[1].Users, bob)

	// And bob's last roster has both
	bobRosters := usersEvents(drain(bobSink))
	req.NotEmpty(bobRosters)
	req.Equal([]string{"alice", "bob"}, rosterNames(bobRosters[len(bobRosters)-1]))

	// When alice says hi
	req.NoError(o.HandleMessage(ctx, alice, []byte(`{"type":"chat","text":"hi"}`)))

	// Then both receive it from alice
	for _, s := range []*sink.SessionSink{aliceSink, bobSink} {
		events := drain(s)
		req.Len(events, 1)
		req.Equal("alice", events[0].(event.Chat).Username)
		req.Equal("hi", events[0].(event.Chat).Text)
	}

	// When bob whispers to alice
	req.NoError(o.HandleMessage(ctx, bob, []byte(`{"type":"private_chat","to":"alice","text":"yo"}`)))

	// Then only alice receives it
	events := drain(aliceSink)
	req.Len(events, 1)
	req.Equal(event.PrivateChat{
		Type:      domain.PrivateChatType,
		From:      "bob",
		To:        "alice",
		Text:      "yo",
		Timestamp: events[0].(event.PrivateChat).Timestamp,
	}, events[0])
	req.Empty(drain(bobSink))
}

func TestOrchestrator_Scenario_Disconnect(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	o := newTestOrchestrator(t, nil)
	aliceSink, bobSink := newTestSink(), newTestSink()

	alice, err := o.Connect(ctx, "alice", aliceSink)
	req.NoError(err)
	_, err = o.Connect(ctx, "bob", bobSink)
	req.NoError(err)
	drain(bobSink)

	// When alice disconnects, twice (transport close racing explicit removal)
	o.Disconnect(ctx, alice)
	o.Disconnect(ctx, alice)

	// Then bob gets exactly one roster without alice
	rosters := usersEvents(drain(bobSink))
	req.Len(rosters, 1)
	req.Equal([]string{"bob"}, rosterNames(rosters[0]))
	req.Equal(1, o.Sessions())
}

func TestOrchestrator_Scenario_SummarizeEmptyLogFailure(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	summarizer := mocks.NewMockSummarizer(ctrl)
	o := newTestOrchestrator(t, summarizer)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	o.Start(ctx)
	defer o.Stop()

	aliceSink := newTestSink()
	alice, err := o.Connect(ctx, "alice", aliceSink)
	req.NoError(err)
	drain(aliceSink)

	// Given the summarizer is down and nothing was said yet
	summarizer.EXPECT().Summarize(gomock.Any(), []string{}).
		Return("", fmt.Errorf("connection refused")).Times(1)

	// When alice asks for a summary
	req.NoError(o.HandleMessage(ctx, alice, []byte(`{"type":"chat","text":"/summarize"}`)))

	// Then she alone receives the fallback summary
	select {
	case e := <-aliceSink.Events():
		summary, ok := e.(event.Summary)
		req.True(ok)
		req.Equal(domain.FallbackSummary, summary.Text)
	case <-time.After(2 * time.Second):
		req.Fail("no summary delivered")
	}
}

func TestOrchestrator_Scenario_SummarizeSuccess(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	summarizer := mocks.NewMockSummarizer(ctrl)
	o := newTestOrchestrator(t, summarizer)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	o.Start(ctx)
	defer o.Stop()

	aliceSink, bobSink := newTestSink(), newTestSink()
	alice, err := o.Connect(ctx, "alice", aliceSink)
	req.NoError(err)
	bob, err := o.Connect(ctx, "bob", bobSink)
	req.NoError(err)
	req.NoError(o.HandleMessage(ctx, alice, []byte(`{"type":"chat","text":"lunch at noon?"}`)))
	req.NoError(o.HandleMessage(ctx, bob, []byte(`{"type":"chat","text":"sure, see you there"}`)))
	drain(aliceSink)
	drain(bobSink)

	summarizer.EXPECT().Summarize(gomock.Any(), []string{"lunch at noon?", "sure, see you there"}).
		Return("They agree to have lunch at noon.", nil).Times(1)

	req.NoError(o.HandleMessage(ctx, bob, []byte(`{"type":"chat","text":"/summarize"}`)))

	select {
	case e := <-bobSink.Events():
		req.Equal("They agree to have lunch at noon.", e.(event.Summary).Text)
	case <-time.After(2 * time.Second):
		req.Fail("no summary delivered")
	}
	req.Empty(drain(aliceSink))
}

func TestOrchestrator_Presence_ConvergesUnderChurn(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	o := newTestOrchestrator(t, nil)

	type session struct {
		id   domain.SessionID
		sink *sink.SessionSink
	}
	var mu sync.Mutex
	var alive []session

	// When many sessions join and some leave concurrently
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := sink.NewSessionSink(logs.GetLoggerFromLevel(slog.LevelDebug), 256, 50*time.Millisecond)
			id, err := o.Connect(ctx, fmt.Sprintf("user-%d", i), s)
			if err != nil {
				return
			}
			if i%3 == 0 {
				o.Disconnect(ctx, id)
				return
			}
			mu.Lock()
			alive = append(alive, session{id: id, sink: s})
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	// Then every remaining session's last roster equals the registry
	expected := o.registry.Snapshot()
	req.Len(alive, o.Sessions())
	for _, s := range alive {
		rosters := usersEvents(drain(s.sink))
		req.NotEmpty(rosters)
		last := rosters[len(rosters)-1]
		req.Equal(len(expected), len(last.Users))
		for id := range expected {
			req.Contains(last.Users, id)
		}
	}
}

func TestOrchestrator_SlowSession_DoesNotStallOthers(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	o := newTestOrchestrator(t, nil)
	deliveryTimeout := 300 * time.Millisecond

	// Given alice and a session whose writer never drains its one-slot buffer
	aliceSink := newTestSink()
	alice, err := o.Connect(ctx, "alice", aliceSink)
	req.NoError(err)
	slowSink := sink.NewSessionSink(logs.GetLoggerFromLevel(slog.LevelDebug), 1, deliveryTimeout)
	_, err = o.Connect(ctx, "slow", slowSink)
	req.NoError(err)

	// When alice sends several chats and bob joins
	start := time.Now()
	for i := 0; i < 5; i++ {
		req.NoError(o.HandleMessage(ctx, alice, []byte(fmt.Sprintf(`{"type":"chat","text":"m%d"}`, i))))
	}
	bobSink := newTestSink()
	_, err = o.Connect(ctx, "bob", bobSink)
	req.NoError(err)

	// Then the slow session costs at most one delivery timeout overall
	req.Less(time.Since(start), 2*deliveryTimeout)

	// And alice got every chat in order plus the final roster
	chats := lo.FilterMap(drain(aliceSink), func(e event.Event, _ int) (string, bool) {
		c, ok := e.(event.Chat)
		return c.Text, ok
	})
	req.Equal([]string{"m0", "m1", "m2", "m3", "m4"}, chats)
	bobRosters := usersEvents(drain(bobSink))
	req.NotEmpty(bobRosters)
	req.Equal([]string{"alice", "bob", "slow"}, rosterNames(bobRosters[len(bobRosters)-1]))
}
