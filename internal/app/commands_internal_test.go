package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.trai.ch/respawn/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestReadCommands(t *testing.T) {
	ctrl := gomock.NewController(t)
	reloader := mocks.NewMockReloader(ctrl)
	logger := mocks.NewMockLogger(ctrl)

	failure := errors.New("rebuild failed")
	gomock.InOrder(
		reloader.EXPECT().Reset(gomock.Any()).Return(nil),
		reloader.EXPECT().Reset(gomock.Any()).Return(failure),
	)
	logger.EXPECT().Error(failure)

	in := strings.NewReader("hello\nrs\n  rs  \nrsx\n")
	readCommands(context.Background(), in, reloader, logger)
}

func TestReadCommands_StopsWithContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	reloader := mocks.NewMockReloader(ctrl)
	logger := mocks.NewMockLogger(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	readCommands(ctx, strings.NewReader("rs\n"), reloader, logger)
}
