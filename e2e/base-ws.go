package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	summarizerclient "talky/infrastructure/summarizer"
	"talky/infrastructure/ws"
	"talky/observability"
	"talky/repositories"
	"talky/runtime"
	"talky/runtime/workers"
	"talky/summarizer"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

const readTimeout = 5 * time.Second

type Frame map[string]any

type BaseWsSuite struct {
	suite.Suite
	Config Config

	addr     string
	teardown []func()
}

// SetupSuite loads the environment configuration and, without TALKY_ADDR,
// starts the summarizer and the chat server in process.
func (s *BaseWsSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)

	s.addr = s.Config.TalkyAddr
	if s.addr == "" {
		s.addr = s.startStack()
	}
}

func (s *BaseWsSuite) TearDownSuite() {
	for i := len(s.teardown) - 1; i >= 0; i-- {
		s.teardown[i]()
	}
}

func (s *BaseWsSuite) startStack() string {
	log := logs.GetLoggerFromLevel(slog.LevelWarn)

	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	s.Require().NoError(err)
	repo := repositories.NewSummaryRepository(db, log, time.Minute)
	summarizerSrv := httptest.NewServer(
		summarizer.NewServer(log, summarizer.NewService(log, repo), "", 200).Handler())

	orchestrator := runtime.NewOrchestrator(log, workers.NewSupervisor(log, 50*time.Millisecond),
		runtime.NewRegistry(), summarizerclient.NewClient(log, summarizerSrv.URL, 5*time.Second),
		observability.NewMonitoringManager(), runtime.Options{
			RollingLogSize:   20,
			SummaryWorkers:   2,
			SummaryQueueSize: 8,
			SummaryTimeout:   5 * time.Second,
		})
	ctx, cancel := context.WithCancel(context.Background())
	orchestrator.Start(ctx)

	chatServer := ws.NewChatServer(log, orchestrator, ws.Options{
		ConnectionBufferSize: 64,
		DeliveryTimeout:      time.Second,
		MaxMessageSize:       1 << 16,
	})
	chatSrv := httptest.NewServer(chatServer.Handler())

	s.teardown = append(s.teardown,
		func() { _ = db.Close() },
		summarizerSrv.Close,
		func() { cancel(); orchestrator.Stop() },
		chatSrv.Close,
		chatServer.Shutdown,
	)
	return strings.TrimPrefix(chatSrv.URL, "http://")
}

func (s *BaseWsSuite) header(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// Dial opens a session for username under a colorized step header.
func (s *BaseWsSuite) Dial(name, username string) *websocket.Conn {
	s.header(name)
	u := url.URL{Scheme: "ws", Host: s.addr, Path: "/ws", RawQuery: "username=" + url.QueryEscape(username)}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	s.Require().NoError(err, "Failed to connect to chat server at "+s.addr)
	return conn
}

func (s *BaseWsSuite) Send(conn *websocket.Conn, payload any) {
	s.Require().NoError(conn.WriteJSON(payload))
}

// Expect reads frames until match accepts one.
func (s *BaseWsSuite) Expect(conn *websocket.Conn, match func(Frame) bool) Frame {
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	for {
		var f Frame
		s.Require().NoError(conn.ReadJSON(&f))
		if s.Config.DebugJSON {
			raw, _ := json.MarshalIndent(f, "", "  ")
			s.T().Logf("FRAME:\n%s", raw)
		}
		if match(f) {
			return f
		}
	}
}

func OfType(messageType string) func(Frame) bool {
	return func(f Frame) bool { return f["type"] == messageType }
}

// RosterIs matches a users frame listing exactly these names, in any order.
func RosterIs(names ...string) func(Frame) bool {
	return func(f Frame) bool {
		if f["type"] != "users" {
			return false
		}
		users, _ := f["users"].(map[string]any)
		if len(users) != len(names) {
			return false
		}
		want := make(map[string]int)
		for _, n := range names {
			want[n]++
		}
		for _, u := range users {
			name, _ := u.(map[string]any)["username"].(string)
			want[name]--
		}
		for _, n := range want {
			if n != 0 {
				return false
			}
		}
		return true
	}
}
