package decorator_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/ramisettybhargavi/devsecops-backend/pkg/correlation"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/decorator"
	"github.com/ramisettybhargavi/devsecops-backend/pkg/logger"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace/noop"
)

type (
	stubCommand struct{}
	stubQuery   struct{}

	stubCommandHandler struct {
		err error
	}

	stubQueryHandler struct {
		err error
	}

	recordingMetrics struct {
		mu   sync.Mutex
		keys []string
	}
)

func (h stubCommandHandler) Handle(_ context.Context, _ stubCommand) (string, error) {
	if h.err != nil {
		return "", h.err
	}

	return "created", nil
}

func (h stubQueryHandler) Execute(_ context.Context, _ stubQuery) (int, error) {
	if h.err != nil {
		return 0, h.err
	}

	return 42, nil
}

func (r *recordingMetrics) Inc(_ context.Context, key string, _ any, _ ...attribute.KeyValue) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.keys = append(r.keys, key)
}

func (r *recordingMetrics) Handler() http.Handler {
	return http.NotFoundHandler()
}

func (r *recordingMetrics) Shutdown(_ context.Context) error {
	return nil
}

func (r *recordingMetrics) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.keys...)
}

func TestApplyCommandDecorators(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	recorder := &recordingMetrics{}

	handler := decorator.ApplyCommandDecorators(
		decorator.CommandHandler[stubCommand, string](stubCommandHandler{}),
		logger.NewBufferedTestLogger(&buf),
		recorder,
		noop.NewTracerProvider(),
	)

	ctx := correlation.WithID(context.Background(), "abc-123")

	result, err := handler.Handle(ctx, stubCommand{})
	require.NoError(t, err)
	require.Equal(t, "created", result)

	logOutput := buf.String()
	require.Contains(t, logOutput, `"action":"stubCommand"`)
	require.Contains(t, logOutput, `"action_type":"command"`)
	require.Contains(t, logOutput, "abc-123")
	require.Contains(t, logOutput, "command executed successfully")

	keys := recorder.recorded()
	require.Contains(t, keys, "commands.stubcommand.duration")
	require.Contains(t, keys, "commands.stubcommand.success")
}

func TestApplyCommandDecoratorsOnFailure(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	recorder := &recordingMetrics{}

	handler := decorator.ApplyCommandDecorators(
		decorator.CommandHandler[stubCommand, string](stubCommandHandler{err: errors.New("persistence unavailable")}),
		logger.NewBufferedTestLogger(&buf),
		recorder,
		noop.NewTracerProvider(),
	)

	_, err := handler.Handle(context.Background(), stubCommand{})
	require.Error(t, err)

	logOutput := buf.String()
	require.Contains(t, logOutput, "failed to execute command")
	require.Contains(t, logOutput, "persistence unavailable")

	require.Contains(t, recorder.recorded(), "commands.stubcommand.failure")
}

func TestApplyQueryDecorators(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	recorder := &recordingMetrics{}

	handler := decorator.ApplyQueryDecorators(
		decorator.QueryHandler[stubQuery, int](stubQueryHandler{}),
		logger.NewBufferedTestLogger(&buf),
		recorder,
		noop.NewTracerProvider(),
	)

	result, err := handler.Execute(context.Background(), stubQuery{})
	require.NoError(t, err)
	require.Equal(t, 42, result)

	keys := recorder.recorded()
	require.Contains(t, keys, "queries.stubquery.duration")
	require.Contains(t, keys, "queries.stubquery.success")
}

func TestApplyQueryDecoratorsOnFailure(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	recorder := &recordingMetrics{}

	handler := decorator.ApplyQueryDecorators(
		decorator.QueryHandler[stubQuery, int](stubQueryHandler{err: errors.New("backend offline")}),
		logger.NewBufferedTestLogger(&buf),
		recorder,
		noop.NewTracerProvider(),
	)

	_, err := handler.Execute(context.Background(), stubQuery{})
	require.Error(t, err)

	logOutput := buf.String()
	require.Contains(t, logOutput, "failed to execute query")

	require.Contains(t, recorder.recorded(), "queries.stubquery.failure")
}
