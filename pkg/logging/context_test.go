package logging_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/tradematch/pkg/logging"
)

func TestContextFunctions(t *testing.T) {
	t.Run("FromContext falls back to default", func(t *testing.T) {
		assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
	})

	t.Run("business context fields are attached", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), tl.Logger)
		ctx = logging.WithRunID(ctx, "run-1")
		ctx = logging.WithRegime(ctx, "MAS")
		ctx = logging.WithAssetClass(ctx, "IR")
		ctx = logging.WithStage(ctx, "dedup")
		ctx = logging.WithSide(ctx, "reference")

		logging.Ctx(ctx).Info().Msg("stage complete")

		assert.Equal(t, "run-1", logging.RunID(ctx))
		for _, want := range []string{`"run_id":"run-1"`, `"regime":"MAS"`, `"asset_class":"IR"`, `"stage":"dedup"`, `"side":"reference"`} {
			tl.AssertContains(t, want)
		}
	})

	t.Run("WithFields handles typed values", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), tl.Logger)
		ctx = logging.WithFields(ctx, map[string]any{
			"chunk_size": 1000,
			"fields":     []string{"USI Value", "UTI Value"},
			"spill":      true,
		})

		logging.FromContext(ctx).Info().Msg("configured")

		tl.AssertContains(t, `"chunk_size":1000`)
		tl.AssertContains(t, `"fields":["USI Value","UTI Value"]`)
		tl.AssertContains(t, `"spill":true`)
	})

	t.Run("RunID is empty without a run", func(t *testing.T) {
		assert.Empty(t, logging.RunID(context.Background()))
	})
}
