package decorator

import (
	"context"

	"github.com/ramisettybhargavi/devsecops-backend/pkg/logger"
)

type (
	commandLoggingDecorator[C Command, R any] struct {
		base   CommandHandler[C, R]
		logger logger.Logger
	}

	queryLoggingDecorator[Q Query, R Result] struct {
		base   QueryHandler[Q, R]
		logger logger.Logger
	}
)

func (d commandLoggingDecorator[C, R]) Handle(ctx context.Context, cmd C) (result R, err error) {
	log := d.logger.WithContext(ctx).With().
		Str("action", generateActionName(cmd)).
		Str("action_type", "command").
		Logger()

	log.Debug().Msg("executing command")

	defer func() {
		if err == nil {
			log.Info().Msg("command executed successfully")

			return
		}

		log.Error().Err(err).Msg("failed to execute command")
	}()

	return d.base.Handle(ctx, cmd)
}

func (d queryLoggingDecorator[Q, R]) Execute(ctx context.Context, query Q) (result R, err error) {
	log := d.logger.WithContext(ctx).With().
		Str("action", generateActionName(query)).
		Str("action_type", "query").
		Logger()

	log.Debug().Msg("executing query")

	defer func() {
		if err == nil {
			log.Debug().Msg("query executed successfully")

			return
		}

		log.Error().Err(err).Msg("failed to execute query")
	}()

	return d.base.Execute(ctx, query)
}
