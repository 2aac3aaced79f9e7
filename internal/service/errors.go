package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/famfund/internal/middleware"
	"github.com/mmynk/famfund/internal/models"
)

var (
	errAuthRequired = errors.New("authentication required")
	errNotOwner     = errors.New("ledger belongs to another user")
)

// connectError maps domain errors to Connect codes. Anything unrecognised is
// logged and reported as Internal.
func connectError(op string, err error) *connect.Error {
	var ce *connect.Error
	switch {
	case errors.As(err, &ce):
		return ce
	case errors.Is(err, models.ErrInvalidEvent):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, models.ErrUnknownParticipant):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, models.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, models.ErrAlreadyExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, models.ErrInUse):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}
	slog.Error(op+" failed", "error", err)
	return connect.NewError(connect.CodeInternal, fmt.Errorf("%s failed", op))
}

func invalidArgument(format string, args ...any) *connect.Error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
}

// requireUser returns the caller's user ID set by the auth middleware.
func requireUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, errAuthRequired)
	}
	return userID, nil
}
