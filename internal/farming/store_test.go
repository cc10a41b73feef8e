package farming

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agriklima/internal/types"
)

// fakeRuleSetRepo is an in-memory RuleSetRepo. It mimics the database
// contract: GetActive returns not_found_rule_set when nothing is active and
// ReplaceActive deactivates history before inserting.
type fakeRuleSetRepo struct {
	sets       []*types.RuleSet
	getErr     error
	insertErr  error
	replaceErr error
}

func (f *fakeRuleSetRepo) GetActive(context.Context) (*types.RuleSet, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, rs := range f.sets {
		if rs.Active {
			cp := *rs
			return &cp, nil
		}
	}
	return nil, types.NewAppError(types.ErrCodeNotFoundRuleSet, "no active rule set", nil)
}

func (f *fakeRuleSetRepo) Insert(_ context.Context, rs *types.RuleSet) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	cp := *rs
	f.sets = append(f.sets, &cp)
	return nil
}

func (f *fakeRuleSetRepo) ReplaceActive(_ context.Context, rs *types.RuleSet) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	for _, existing := range f.sets {
		existing.Active = false
	}
	cp := *rs
	cp.Active = true
	f.sets = append(f.sets, &cp)
	return nil
}

func (f *fakeRuleSetRepo) DeleteAll(context.Context) error {
	f.sets = nil
	return nil
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

var testNow = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func TestActiveRuleSet_MaterializesDefault(t *testing.T) {
	repo := &fakeRuleSetRepo{}
	store := NewRuleStore(repo, fixedClock(testNow), nil)

	got, err := store.ActiveRuleSet(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, got.ID)
	assert.True(t, got.Active)
	assert.Nil(t, got.CreatedBy)
	assert.Equal(t, testNow, got.LastUpdated)
	assert.Equal(t, DefaultRuleSet().Temperature, got.Temperature)

	// The default was persisted, not just returned.
	require.Len(t, repo.sets, 1)

	// A second read serves the stored set instead of inserting again.
	again, err := store.ActiveRuleSet(context.Background())
	require.NoError(t, err)
	assert.Equal(t, got.ID, again.ID)
	assert.Len(t, repo.sets, 1)
}

func TestActiveRuleSet_PropagatesStorageErrors(t *testing.T) {
	repo := &fakeRuleSetRepo{
		getErr: types.NewAppError(types.ErrCodeInternalDB, "boom", nil),
	}
	store := NewRuleStore(repo, fixedClock(testNow), nil)

	_, err := store.ActiveRuleSet(context.Background())
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeInternalDB, appErr.Code)
	assert.Empty(t, repo.sets)
}

func TestReplaceActiveRuleSet_MergesWithPrevious(t *testing.T) {
	repo := &fakeRuleSetRepo{}
	store := NewRuleStore(repo, fixedClock(testNow), nil)

	// Materialize the default, then tune only the wind thresholds.
	base, err := store.ActiveRuleSet(context.Background())
	require.NoError(t, err)

	wind := base.Wind
	wind.Moderate.Threshold = 15
	wind.High.Threshold = 25

	got, err := store.ReplaceActiveRuleSet(context.Background(), &types.RuleSetUpdate{
		Wind: &wind,
	}, "admin-1")
	require.NoError(t, err)

	assert.NotEqual(t, base.ID, got.ID)
	assert.True(t, got.Active)
	require.NotNil(t, got.CreatedBy)
	assert.Equal(t, "admin-1", *got.CreatedBy)
	assert.Equal(t, 15.0, got.Wind.Moderate.Threshold)

	// Untouched dimensions carry over from the previous active set.
	assert.Equal(t, base.Temperature, got.Temperature)
	assert.Equal(t, base.Humidity, got.Humidity)
	assert.Equal(t, base.Precipitation, got.Precipitation)

	// The previous set is retained as inactive history.
	require.Len(t, repo.sets, 2)
	assert.False(t, repo.sets[0].Active)
	assert.True(t, repo.sets[1].Active)
}

func TestReplaceActiveRuleSet_EmptyUpdateRejected(t *testing.T) {
	store := NewRuleStore(&fakeRuleSetRepo{}, fixedClock(testNow), nil)

	for _, update := range []*types.RuleSetUpdate{nil, {}} {
		_, err := store.ReplaceActiveRuleSet(context.Background(), update, "admin-1")
		require.Error(t, err)

		var appErr *types.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, types.ErrCodeValidationInvalidRules, appErr.Code)
	}
}

func TestReplaceActiveRuleSet_InvalidMergeIsClientError(t *testing.T) {
	repo := &fakeRuleSetRepo{}
	store := NewRuleStore(repo, fixedClock(testNow), nil)

	// A temperature group whose optimal band no longer touches its
	// neighbors fails the partition check.
	temp := DefaultRuleSet().Temperature
	temp.Optimal.MinThreshold = 26

	_, err := store.ReplaceActiveRuleSet(context.Background(), &types.RuleSetUpdate{
		Temperature: &temp,
	}, "admin-1")
	require.Error(t, err)

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeValidationInvalidRules, appErr.Code)
	assert.Equal(t, 400, appErr.HTTPStatus())

	// The bad set was never persisted; only the materialized default exists.
	require.Len(t, repo.sets, 1)
	assert.True(t, repo.sets[0].Active)
}

func TestResetToDefault(t *testing.T) {
	repo := &fakeRuleSetRepo{}
	store := NewRuleStore(repo, fixedClock(testNow), nil)

	// Build some history: default plus one replacement.
	_, err := store.ActiveRuleSet(context.Background())
	require.NoError(t, err)

	wind := DefaultRuleSet().Wind
	wind.High.Threshold = 50
	_, err = store.ReplaceActiveRuleSet(context.Background(), &types.RuleSetUpdate{Wind: &wind}, "admin-1")
	require.NoError(t, err)
	require.Len(t, repo.sets, 2)

	got, err := store.ResetToDefault(context.Background())
	require.NoError(t, err)

	// History is gone; only the fresh default remains.
	require.Len(t, repo.sets, 1)
	assert.True(t, got.Active)
	assert.Nil(t, got.CreatedBy)
	assert.Equal(t, DefaultRuleSet().Wind, got.Wind)
}
