package discord

import (
	"context"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/api/discord/handlers"
	"github.com/spec-kit/ticket-bot/internal/observability"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

// InteractionFunc handles one component activation.
type InteractionFunc func(ctx context.Context, in *handlers.Interaction) error

// CommandFunc handles one prefix command.
type CommandFunc func(ctx context.Context, cmd *handlers.Command) error

// interactionRoute and commandRoute are handlers wrapped by the error
// handling middleware. Failures are reported there, so routes return nothing.
type (
	interactionRoute func(ctx context.Context, in *handlers.Interaction)
	commandRoute     func(ctx context.Context, cmd *handlers.Command)
)

// withTimeout bounds every handler run by the configured timeout.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// interactionErrorHandling recovers panics, records metrics and turns errors
// into ephemeral replies for the invoker. Internal causes never reach the user.
func interactionErrorHandling(name string, logger *zap.Logger, metrics *observability.Metrics, next InteractionFunc) interactionRoute {
	return func(ctx context.Context, in *handlers.Interaction) {
		var err error
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			metrics.RecordEvent(observability.KindInteraction, name, time.Since(start))
			if err == nil {
				return
			}

			domainErr := apperrors.ToDomainError(err)
			metrics.RecordError(observability.KindInteraction, name, domainErr.Code)
			fields := []zap.Field{
				zap.String("custom_id", name),
				zap.String("channel_id", in.ChannelID),
				zap.String("user_id", in.Actor.ID),
				zap.String("code", domainErr.Code),
				zap.Error(err),
			}
			if apperrors.IsUserError(err) {
				logger.Debug("interaction rejected", fields...)
			} else {
				logger.Error("interaction failed", fields...)
			}

			if replyErr := in.Responder.Ephemeral(context.WithoutCancel(ctx), domainErr.Message); replyErr != nil {
				logger.Warn("reply to interaction", zap.String("custom_id", name), zap.Error(replyErr))
			}
		}()
		err = next(ctx, in)
	}
}

// commandErrorHandling recovers panics, records metrics and logs failures.
// Commands have no private reply channel, so errors stay in the logs.
func commandErrorHandling(name string, logger *zap.Logger, metrics *observability.Metrics, next CommandFunc) commandRoute {
	return func(ctx context.Context, cmd *handlers.Command) {
		var err error
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			metrics.RecordEvent(observability.KindCommand, name, time.Since(start))
			if err != nil {
				domainErr := apperrors.ToDomainError(err)
				metrics.RecordError(observability.KindCommand, name, domainErr.Code)
				logger.Error("command failed",
					zap.String("command", name),
					zap.String("channel_id", cmd.ChannelID),
					zap.String("user_id", cmd.Author.ID),
					zap.Error(err))
			}
		}()
		err = next(ctx, cmd)
	}
}
