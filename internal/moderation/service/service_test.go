package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relato/internal/moderation/models"
	"relato/internal/moderation/scorer"
	dErrors "relato/pkg/domain-errors"
)

// scorerFunc adapts a function into a Scorer.
type scorerFunc func(ctx context.Context, photoPath string) (float64, error)

func (f scorerFunc) Score(ctx context.Context, photoPath string) (float64, error) {
	return f(ctx, photoPath)
}

// removerRecorder captures removed paths so tests can assert on cleanup.
type removerRecorder struct {
	mu      sync.Mutex
	removed []string
}

func (r *removerRecorder) remove(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, path)
	return nil
}

func candidate(name string) models.Candidate {
	return models.Candidate{Path: "/uploads/" + name, OriginalName: name, SizeBytes: 1024}
}

func scoresByPath(scores map[string]float64) scorerFunc {
	return func(_ context.Context, photoPath string) (float64, error) {
		score, ok := scores[photoPath]
		if !ok {
			return 0, fmt.Errorf("unexpected path %s", photoPath)
		}
		return score, nil
	}
}

func TestModerateBatch_Decisions(t *testing.T) {
	t.Run("accepts at or above threshold, rejects below", func(t *testing.T) {
		rec := &removerRecorder{}
		o := New(scoresByPath(map[string]float64{
			"/uploads/a.jpg": 0.8,
			"/uploads/b.jpg": 0.2,
			"/uploads/c.jpg": 0.5,
		}), WithRemover(rec.remove))

		result, err := o.ModerateBatch(context.Background(),
			[]models.Candidate{candidate("a.jpg"), candidate("b.jpg"), candidate("c.jpg")})
		require.NoError(t, err)

		require.Len(t, result.Accepted, 2)
		assert.Equal(t, "a.jpg", result.Accepted[0].OriginalName)
		assert.Equal(t, "c.jpg", result.Accepted[1].OriginalName)

		require.Len(t, result.Verdicts, 3)
		assert.Equal(t, models.DecisionAccepted, result.Verdicts[0].Decision)
		assert.Equal(t, models.DecisionRejected, result.Verdicts[1].Decision)
		assert.Equal(t, models.DecisionAccepted, result.Verdicts[2].Decision)

		assert.Equal(t, []string{"/uploads/b.jpg"}, rec.removed)
	})

	t.Run("scoring failure marks candidate failed without aborting the batch", func(t *testing.T) {
		rec := &removerRecorder{}
		o := New(scorerFunc(func(_ context.Context, path string) (float64, error) {
			if path == "/uploads/bad.jpg" {
				return 0, errors.New(`scorer output is not valid JSON: "not json"`)
			}
			return 0.9, nil
		}), WithRemover(rec.remove))

		result, err := o.ModerateBatch(context.Background(),
			[]models.Candidate{candidate("good.jpg"), candidate("bad.jpg")})
		require.NoError(t, err)

		require.Len(t, result.Accepted, 1)
		assert.Equal(t, "good.jpg", result.Accepted[0].OriginalName)

		failed := result.Verdicts[1]
		assert.Equal(t, models.DecisionFailed, failed.Decision)
		assert.Nil(t, failed.Score)
		assert.Contains(t, failed.Message, "not valid JSON")

		assert.Equal(t, []string{"/uploads/bad.jpg"}, rec.removed)
	})

	t.Run("custom threshold is honored", func(t *testing.T) {
		rec := &removerRecorder{}
		o := New(scoresByPath(map[string]float64{"/uploads/a.jpg": 0.6}),
			WithThreshold(0.7), WithRemover(rec.remove))

		result, err := o.ModerateBatch(context.Background(), []models.Candidate{candidate("a.jpg")})
		require.NoError(t, err)
		assert.Empty(t, result.Accepted)
		assert.Equal(t, models.DecisionRejected, result.Verdicts[0].Decision)
	})
}

func TestModerateBatch_Validation(t *testing.T) {
	o := New(scoresByPath(nil), WithRemover((&removerRecorder{}).remove))

	t.Run("empty batch", func(t *testing.T) {
		_, err := o.ModerateBatch(context.Background(), nil)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("too many images", func(t *testing.T) {
		batch := make([]models.Candidate, 6)
		for i := range batch {
			batch[i] = candidate(fmt.Sprintf("img-%d.jpg", i))
		}
		_, err := o.ModerateBatch(context.Background(), batch)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("candidate without a file", func(t *testing.T) {
		_, err := o.ModerateBatch(context.Background(), []models.Candidate{{OriginalName: "x.jpg"}})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestModerateBatch_LaunchFailure(t *testing.T) {
	rec := &removerRecorder{}
	o := New(scorerFunc(func(context.Context, string) (float64, error) {
		return 0, fmt.Errorf("%w: executable not found", scorer.ErrLaunch)
	}), WithRemover(rec.remove))

	_, err := o.ModerateBatch(context.Background(),
		[]models.Candidate{candidate("a.jpg"), candidate("b.jpg")})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeExternal))

	// Nothing was admitted, so every candidate file is disposed of.
	assert.ElementsMatch(t, []string{"/uploads/a.jpg", "/uploads/b.jpg"}, rec.removed)
}

func TestModerateBatch_ConcurrentPreservesOrder(t *testing.T) {
	rec := &removerRecorder{}
	scores := map[string]float64{}
	var batch []models.Candidate
	for i := range 5 {
		name := fmt.Sprintf("img-%d.jpg", i)
		batch = append(batch, candidate(name))
		scores["/uploads/"+name] = 0.9
	}

	o := New(scoresByPath(scores), WithConcurrency(4), WithRemover(rec.remove))

	result, err := o.ModerateBatch(context.Background(), batch)
	require.NoError(t, err)
	require.Len(t, result.Accepted, 5)
	for i, c := range result.Accepted {
		assert.Equal(t, fmt.Sprintf("img-%d.jpg", i), c.OriginalName)
	}
	assert.Empty(t, rec.removed)
}

func TestModerateBatch_DeletionFailureIsNotEscalated(t *testing.T) {
	o := New(scoresByPath(map[string]float64{"/uploads/a.jpg": 0.1}),
		WithRemover(func(string) error { return errors.New("read-only filesystem") }))

	result, err := o.ModerateBatch(context.Background(), []models.Candidate{candidate("a.jpg")})
	require.NoError(t, err)
	assert.Empty(t, result.Accepted)
}
