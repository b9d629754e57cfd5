package optimizer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/boostlab/internal/domain"
	"github.com/kailas-cloud/boostlab/internal/domain/search/boost"
	"github.com/kailas-cloud/boostlab/internal/metrics"
	"github.com/kailas-cloud/boostlab/internal/usecase/evaluation"
)

// TrialState is the final state of a trial.
type TrialState string

// Trial states.
const (
	TrialComplete TrialState = "complete"
	TrialFailed   TrialState = "failed"
)

// Trial is one evaluated boost vector.
type Trial struct {
	Number int                `json:"number"`
	Boost  boost.Vector       `json:"-"`
	Params map[string]float64 `json:"params"`
	Score  float64            `json:"score"`
	State  TrialState         `json:"state"`
	Error  string             `json:"error,omitempty"`
	// Took is wall-clock time and is not serialized.
	Took time.Duration `json:"-"`
}

// Study is the outcome of one optimization run.
type Study struct {
	RunID     string       `json:"run_id"`
	Seed      uint64       `json:"seed"`
	Best      boost.Vector `json:"-"`
	BestScore float64      `json:"best_score"`

	// BestTrial is the number of the best complete trial, -1 when none completed.
	BestTrial int     `json:"best_trial"`
	Trials    []Trial `json:"trials"`
}

// Completed returns how many trials finished without error.
func (s *Study) Completed() int {
	n := 0
	for _, t := range s.Trials {
		if t.State == TrialComplete {
			n++
		}
	}
	return n
}

// Evaluator scores a search function against labeled records.
type Evaluator interface {
	Evaluate(ctx context.Context, records []evaluation.Record, fn evaluation.SearchFunc) (evaluation.Result, error)
}

// SearchFactory binds a boost vector into a query-only search function.
type SearchFactory func(boosts boost.Vector) (evaluation.SearchFunc, error)

// Service runs TPE searches over boost weights, maximizing MRR.
// It holds no state between Optimize calls.
type Service struct {
	eval          Evaluator
	factory       SearchFactory
	logger        *zap.Logger
	startupTrials int
	eiCandidates  int
	priorWeight   float64
}

// New creates an optimizer with the default sampler settings.
func New(eval Evaluator, factory SearchFactory) *Service {
	return &Service{
		eval:          eval,
		factory:       factory,
		logger:        zap.NewNop(),
		startupTrials: DefaultStartupTrials,
		eiCandidates:  DefaultEICandidates,
		priorWeight:   DefaultPriorWeight,
	}
}

// WithLogger sets the logger used for trial progress.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// WithStartupTrials sets how many trials are sampled uniformly before the
// density model kicks in.
func (s *Service) WithStartupTrials(n int) *Service {
	if n >= 0 {
		s.startupTrials = n
	}
	return s
}

// WithCandidates sets the number of expected-improvement candidates per parameter.
func (s *Service) WithCandidates(n int) *Service {
	if n > 0 {
		s.eiCandidates = n
	}
	return s
}

// WithPriorWeight sets the weight of the prior component.
func (s *Service) WithPriorWeight(w float64) *Service {
	if w > 0 {
		s.priorWeight = w
	}
	return s
}

// Optimize runs nTrials trials and returns the study. On context
// cancellation the trials run so far are returned together with ctx.Err().
func (s *Service) Optimize(
	ctx context.Context, records []evaluation.Record, ranges boost.Ranges, nTrials int, seed uint64,
) (*Study, error) {
	if err := ranges.Validate(); err != nil {
		return nil, err
	}
	if nTrials < 1 {
		return nil, domain.Configf("trial count must be at least 1, got %d", nTrials)
	}
	if len(records) == 0 {
		return nil, domain.Configf("validation set is empty")
	}
	if s.eval == nil || s.factory == nil {
		return nil, domain.Configf("optimizer requires an evaluator and a search factory")
	}

	study := &Study{
		RunID:     uuid.NewString(),
		Seed:      seed,
		BestTrial: -1,
		Trials:    make([]Trial, 0, nTrials),
	}
	log := s.logger.With(zap.String("run_id", study.RunID), zap.Uint64("seed", seed))
	sampler := newTPE(seed, s.startupTrials, s.eiCandidates, s.priorWeight)
	history := make([]observation, 0, nTrials)

	for n := range nTrials {
		if err := ctx.Err(); err != nil {
			log.Info("Optimization interrupted", zap.Int("trials", len(study.Trials)))
			return study, err
		}

		params := sampler.propose(ranges, history)
		trial := s.runTrial(ctx, n, params, records)
		if trial.State == TrialFailed && ctx.Err() != nil {
			// Trial was cut short by cancellation, not by the backend.
			log.Info("Optimization interrupted", zap.Int("trials", len(study.Trials)))
			return study, ctx.Err()
		}
		study.Trials = append(study.Trials, trial)
		metrics.OptimizerTrialsTotal.WithLabelValues(string(trial.State)).Inc()

		if trial.State == TrialFailed {
			log.Warn("Trial failed", zap.Int("trial", n), zap.String("error", trial.Error))
			continue
		}
		history = append(history, observation{params: params, score: trial.Score})
		if study.BestTrial < 0 || trial.Score > study.BestScore {
			study.Best = trial.Boost
			study.BestScore = trial.Score
			study.BestTrial = n
			metrics.OptimizerBestScore.Set(trial.Score)
		}
		log.Debug("Trial complete",
			zap.Int("trial", n),
			zap.Float64("score", trial.Score),
			zap.Float64("best", study.BestScore),
			zap.Duration("took", trial.Took),
			zap.Stringer("boosts", trial.Boost),
		)
	}

	log.Info("Optimization finished",
		zap.Int("trials", len(study.Trials)),
		zap.Int("completed", study.Completed()),
		zap.Float64("best_score", study.BestScore),
	)
	return study, nil
}

func (s *Service) runTrial(
	ctx context.Context, n int, params map[string]float64, records []evaluation.Record,
) (trial Trial) {
	start := time.Now()
	trial = Trial{Number: n, Params: params, State: TrialComplete}
	defer func() {
		trial.Took = time.Since(start)
	}()

	fail := func(err error) {
		trial.State = TrialFailed
		trial.Score = 0
		trial.Error = fmt.Errorf("%w: %w", domain.ErrTrialFailed, err).Error()
	}

	defer func() {
		if r := recover(); r != nil {
			fail(fmt.Errorf("panic: %v", r))
		}
	}()

	vec, err := boost.New(params)
	if err != nil {
		fail(err)
		return trial
	}
	trial.Boost = vec

	fn, err := s.factory(vec)
	if err != nil {
		fail(err)
		return trial
	}
	res, err := s.eval.Evaluate(ctx, records, fn)
	if err != nil {
		fail(err)
		return trial
	}
	trial.Score = res.MRR
	return trial
}
