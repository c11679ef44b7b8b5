package workers

import (
	"context"
	"log/slog"
	"talky/mocks"
	"talky/observability"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestHealthWorker_ReportsUntilCanceled(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockIRegistry(ctrl)
	// Given a worker ticking fast
	mockRegistry.EXPECT().Len().Return(2).MinTimes(1)
	worker := NewHealthWorker(log, 10*time.Millisecond, mockRegistry, observability.NewMonitoringManager())

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	// Then it reports at least once and stops with the context
	err := worker.Run(ctx)
	req.ErrorIs(err, context.DeadlineExceeded)
}
