package console

import (
	"context"
	"errors"
	"fmt"

	"github.com/podserver/console/internal/core/domain"
)

// report prints the operator-facing message for err.
func (a *App) report(err error) {
	fmt.Fprintln(a.out, a.describeError(err))
}

// describeError maps known failures to short operator messages. Anything
// else is logged with its full cause.
func (a *App) describeError(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "Interrupted"
	case errors.Is(err, ErrInputClosed):
		return "Input closed, nothing was changed"
	case errors.Is(err, domain.ErrUserNotFound):
		return "Username not found"
	case errors.Is(err, domain.ErrUserExists):
		return "An account with this username already exists"
	case errors.Is(err, domain.ErrPodcastNotFound):
		return "No podcast is registered under this feed"
	case errors.Is(err, domain.ErrPasswordTooLong):
		return fmt.Sprintf("Password too long. Use at most %d bytes.", domain.MaxPasswordBytes)
	case errors.Is(err, domain.ErrFieldNotRecognized):
		return "Field not recognized, nothing was changed"
	case errors.Is(err, errRefreshIncomplete),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrInvalidAccount):
		return err.Error()
	}

	var perr *domain.PersistenceError
	if errors.As(err, &perr) {
		a.log.Error().Err(err).Str("op", perr.Op).Msg("storage failure")
		return "Storage error, the operation was rolled back: " + perr.Error()
	}

	a.log.Error().Err(err).Msg("command failed")
	return "Error: " + err.Error()
}
