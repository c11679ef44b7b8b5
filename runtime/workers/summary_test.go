package workers

import (
	"context"
	"fmt"
	"log/slog"
	"talky/domain"
	"talky/domain/event"
	"talky/errors"
	"talky/mocks"
	"talky/observability"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestSummaryWorker_Handle_Success(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	summarizer := mocks.NewMockSummarizer(ctrl)
	deliverer := mocks.NewMockDeliverer(ctrl)
	worker := NewSummaryWorker(log, summarizer, deliverer, nil, time.Second, observability.NewMonitoringManager())

	// Given the summarizer answers
	summarizer.EXPECT().Summarize(gomock.Any(), []string{"hi", "how are you"}).
		Return("Greetings were exchanged.", nil).Times(1)

	// Then only the requester receives the summary
	deliverer.EXPECT().Deliver(gomock.Any(), domain.SessionID("alice-1"), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.SessionID, e event.Event) error {
			summary, ok := e.(event.Summary)
			req.True(ok)
			req.Equal("Greetings were exchanged.", summary.Text)
			req.Equal(domain.SummaryType, summary.Type)
			return nil
		}).Times(1)

	worker.Handle(context.Background(), domain.SummaryRequest{
		Requester: "alice-1",
		Messages:  []string{"hi", "how are you"},
	})
}

func TestSummaryWorker_Handle_FailureSendsFallback(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	summarizer := mocks.NewMockSummarizer(ctrl)
	deliverer := mocks.NewMockDeliverer(ctrl)
	monitoring := observability.NewMonitoringManager()
	worker := NewSummaryWorker(log, summarizer, deliverer, nil, time.Second, monitoring)

	// Given an empty window and a broken summarizer
	summarizer.EXPECT().Summarize(gomock.Any(), []string{}).
		Return("", fmt.Errorf("connection refused")).Times(1)

	deliverer.EXPECT().Deliver(gomock.Any(), domain.SessionID("alice-1"), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.SessionID, e event.Event) error {
			req.Equal(domain.FallbackSummary, e.(event.Summary).Text)
			return nil
		}).Times(1)

	worker.Handle(context.Background(), domain.SummaryRequest{Requester: "alice-1", Messages: []string{}})
	req.Equal(uint64(1), monitoring.GetLatest(0).SummariesFailed)
}

func TestSummaryWorker_Handle_RequesterGone(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	summarizer := mocks.NewMockSummarizer(ctrl)
	deliverer := mocks.NewMockDeliverer(ctrl)
	worker := NewSummaryWorker(log, summarizer, deliverer, nil, time.Second, observability.NewMonitoringManager())

	summarizer.EXPECT().Summarize(gomock.Any(), gomock.Any()).Return("late", nil).Times(1)
	// Then the delivery is dropped silently
	deliverer.EXPECT().Deliver(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.ErrUnknownSession).Times(1)

	worker.Handle(context.Background(), domain.SummaryRequest{Requester: "gone"})
}

func TestSummaryWorker_Handle_Timeout(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	summarizer := mocks.NewMockSummarizer(ctrl)
	deliverer := mocks.NewMockDeliverer(ctrl)
	worker := NewSummaryWorker(log, summarizer, deliverer, nil, 20*time.Millisecond, observability.NewMonitoringManager())

	// Given a summarizer that never answers in time
	summarizer.EXPECT().Summarize(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ []string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		}).Times(1)

	deliverer.EXPECT().Deliver(gomock.Any(), domain.SessionID("alice-1"), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.SessionID, e event.Event) error {
			req.Equal(domain.FallbackSummary, e.(event.Summary).Text)
			return nil
		}).Times(1)

	worker.Handle(context.Background(), domain.SummaryRequest{Requester: "alice-1"})
}

func TestSummaryWorker_Run_DrainsQueue(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	summarizer := mocks.NewMockSummarizer(ctrl)
	deliverer := mocks.NewMockDeliverer(ctrl)
	requests := make(chan domain.SummaryRequest, 1)
	worker := NewSummaryWorker(log, summarizer, deliverer, requests, time.Second, observability.NewMonitoringManager())

	delivered := make(chan struct{})
	summarizer.EXPECT().Summarize(gomock.Any(), gomock.Any()).Return("ok", nil).Times(1)
	deliverer.EXPECT().Deliver(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, domain.SessionID, event.Event) error {
			close(delivered)
			return nil
		}).Times(1)

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() { errChan <- worker.Run(ctx) }()

	requests <- domain.SummaryRequest{Requester: "alice-1"}
	select {
	case <-delivered:
	case <-time.After(time.Second):
		req.Fail("summary was never delivered")
	}

	cancel()
	req.ErrorIs(<-errChan, context.Canceled)
}
