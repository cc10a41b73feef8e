package farming

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"agriklima/internal/types"
)

// RuleSetRepo defines the persistence contract the rule store depends on.
// Implemented by db.RuleSetRepository.
type RuleSetRepo interface {
	GetActive(ctx context.Context) (*types.RuleSet, error)
	Insert(ctx context.Context, rs *types.RuleSet) error
	ReplaceActive(ctx context.Context, rs *types.RuleSet) error
	DeleteAll(ctx context.Context) error
}

// Clock abstracts time.Now for deterministic tests.
type Clock func() time.Time

// RuleStore serves the single active rule set and manages versioned
// replacement and reset. Replacement is append-only: prior rule sets are
// retained as inactive history.
type RuleStore struct {
	repo   RuleSetRepo
	clock  Clock
	logger *slog.Logger
}

// NewRuleStore creates a RuleStore. A nil clock defaults to time.Now and a
// nil logger to slog.Default.
func NewRuleStore(repo RuleSetRepo, clock Clock, logger *slog.Logger) *RuleStore {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RuleStore{
		repo:   repo,
		clock:  clock,
		logger: logger,
	}
}

// ActiveRuleSet returns the active rule set, materializing and persisting
// the built-in default when none exists. Materialization is lazy and
// idempotent; two callers racing on an empty store may both insert a
// default, which is tolerated for configuration data.
func (s *RuleStore) ActiveRuleSet(ctx context.Context) (*types.RuleSet, error) {
	rs, err := s.repo.GetActive(ctx)
	if err == nil {
		return rs, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	s.logger.Info("no active rule set found, materializing default")
	return s.materializeDefault(ctx)
}

// ReplaceActiveRuleSet validates and persists a new active rule set.
// Partial updates merge with the previous active set: a nil dimension in
// the update inherits the previous values, so tuning one dimension never
// silently resets the other three.
func (s *RuleStore) ReplaceActiveRuleSet(ctx context.Context, update *types.RuleSetUpdate, actorID string) (*types.RuleSet, error) {
	if update == nil ||
		(update.Temperature == nil && update.Humidity == nil &&
			update.Wind == nil && update.Precipitation == nil) {
		return nil, types.NewAppError(
			types.ErrCodeValidationInvalidRules,
			"rule update must specify at least one dimension",
			nil,
		)
	}

	base, err := s.ActiveRuleSet(ctx)
	if err != nil {
		return nil, err
	}

	merged := *base
	if update.Temperature != nil {
		merged.Temperature = *update.Temperature
	}
	if update.Humidity != nil {
		merged.Humidity = *update.Humidity
	}
	if update.Wind != nil {
		merged.Wind = *update.Wind
	}
	if update.Precipitation != nil {
		merged.Precipitation = *update.Precipitation
	}

	// The merged result must still partition every dimension. Surface
	// inconsistencies as client errors here: the bad values came from the
	// request, not from stored configuration.
	if err := ValidateRules(&merged); err != nil {
		var appErr *types.AppError
		if errors.As(err, &appErr) {
			return nil, types.NewAppError(types.ErrCodeValidationInvalidRules, appErr.Message, nil)
		}
		return nil, err
	}

	merged.ID = uuid.NewString()
	merged.Active = true
	merged.CreatedBy = &actorID
	merged.LastUpdated = s.clock().UTC()

	if err := s.repo.ReplaceActive(ctx, &merged); err != nil {
		return nil, err
	}

	s.logger.Info("rule set replaced", "rule_set_id", merged.ID, "actor_id", actorID)
	return &merged, nil
}

// ResetToDefault deletes every rule set, history included, and
// re-materializes the built-in default. There is no undo.
func (s *RuleStore) ResetToDefault(ctx context.Context) (*types.RuleSet, error) {
	if err := s.repo.DeleteAll(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("rule sets reset to default")
	return s.materializeDefault(ctx)
}

// materializeDefault persists the built-in default rule set as active.
func (s *RuleStore) materializeDefault(ctx context.Context) (*types.RuleSet, error) {
	rs := DefaultRuleSet()
	rs.ID = uuid.NewString()
	rs.Active = true
	rs.LastUpdated = s.clock().UTC()

	if err := s.repo.Insert(ctx, rs); err != nil {
		return nil, err
	}
	return rs, nil
}

// isNotFound reports whether err is the repo's "no active rule set" error.
func isNotFound(err error) bool {
	var appErr *types.AppError
	return errors.As(err, &appErr) && appErr.Code == types.ErrCodeNotFoundRuleSet
}
