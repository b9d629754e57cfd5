package optimizer

import (
	"context"
	"errors"
	"maps"
	"strings"
	"testing"

	"github.com/kailas-cloud/boostlab/internal/domain"
	domdoc "github.com/kailas-cloud/boostlab/internal/domain/document"
	"github.com/kailas-cloud/boostlab/internal/domain/search/boost"
	"github.com/kailas-cloud/boostlab/internal/domain/search/result"
	"github.com/kailas-cloud/boostlab/internal/usecase/evaluation"
)

// --- Fakes ---

// objective peaks at question=3, text=1.
func objective(v boost.Vector) float64 {
	dq := v.Weight("question") - 3
	dt := v.Weight("text") - 1
	return 1 / (1 + dq*dq + dt*dt)
}

// scoreFactory encodes the objective as the score of a single hit.
func scoreFactory(v boost.Vector) (evaluation.SearchFunc, error) {
	score := objective(v)
	return func(_ context.Context, _ string) ([]result.Result, error) {
		return []result.Result{result.New(domdoc.MustNew("doc", nil, nil), score, 0)}, nil
	}, nil
}

// mockEvaluator reports the first hit's score as MRR.
type mockEvaluator struct {
	calls  int
	failOn func(call int) error
	after  func(call int)
}

func (m *mockEvaluator) Evaluate(
	ctx context.Context, records []evaluation.Record, fn evaluation.SearchFunc,
) (evaluation.Result, error) {
	m.calls++
	call := m.calls
	if m.after != nil {
		defer m.after(call)
	}
	if m.failOn != nil {
		if err := m.failOn(call); err != nil {
			return evaluation.Result{}, err
		}
	}
	hits, err := fn(ctx, records[0].Query)
	if err != nil {
		return evaluation.Result{}, err
	}
	return evaluation.Result{HitRate: 1, MRR: hits[0].Score(), Records: len(records)}, nil
}

func testRanges() boost.Ranges {
	return boost.Ranges{
		"question": {Low: 0, High: 10},
		"text":     {Low: 0, High: 5},
	}
}

func testRecords() []evaluation.Record {
	return []evaluation.Record{{Query: "q", DocumentID: "doc"}}
}

// --- Tests ---

func TestOptimize_Deterministic(t *testing.T) {
	run := func(seed uint64) *Study {
		t.Helper()
		study, err := New(&mockEvaluator{}, scoreFactory).
			Optimize(context.Background(), testRecords(), testRanges(), 30, seed)
		if err != nil {
			t.Fatalf("Optimize: %v", err)
		}
		return study
	}

	a, b := run(42), run(42)
	if len(a.Trials) != 30 || len(b.Trials) != 30 {
		t.Fatalf("trials = %d, %d", len(a.Trials), len(b.Trials))
	}
	for i := range a.Trials {
		if !maps.Equal(a.Trials[i].Params, b.Trials[i].Params) {
			t.Fatalf("trial %d differs: %v vs %v", i, a.Trials[i].Params, b.Trials[i].Params)
		}
	}
	if !a.Best.Equal(b.Best) || a.BestScore != b.BestScore || a.BestTrial != b.BestTrial {
		t.Errorf("best differs: %v/%f vs %v/%f", a.Best, a.BestScore, b.Best, b.BestScore)
	}
	if a.RunID == b.RunID {
		t.Error("run ids must be unique per call")
	}

	c := run(7)
	if maps.Equal(a.Trials[0].Params, c.Trials[0].Params) {
		t.Error("different seeds produced the same first trial")
	}
}

func TestOptimize_BestIsMaxOfCompleted(t *testing.T) {
	study, err := New(&mockEvaluator{}, scoreFactory).
		Optimize(context.Background(), testRecords(), testRanges(), 40, 1)
	if err != nil {
		t.Fatal(err)
	}

	bestSoFar := -1.0
	bestIdx := -1
	ranges := testRanges()
	for _, tr := range study.Trials {
		if tr.State != TrialComplete {
			t.Fatalf("trial %d unexpectedly %s", tr.Number, tr.State)
		}
		if !ranges.Contains(tr.Boost) {
			t.Errorf("trial %d out of range: %v", tr.Number, tr.Boost)
		}
		if tr.Score > bestSoFar {
			bestSoFar = tr.Score
			bestIdx = tr.Number
		}
	}
	if study.BestScore != bestSoFar || study.BestTrial != bestIdx {
		t.Errorf("best = %f@%d, want %f@%d", study.BestScore, study.BestTrial, bestSoFar, bestIdx)
	}
	if !study.Best.Equal(study.Trials[bestIdx].Boost) {
		t.Errorf("best vector %v does not match trial %d", study.Best, bestIdx)
	}
}

func TestOptimize_ModelBeatsStartup(t *testing.T) {
	study, err := New(&mockEvaluator{}, scoreFactory).
		Optimize(context.Background(), testRecords(), testRanges(), 60, 3)
	if err != nil {
		t.Fatal(err)
	}
	startupBest := 0.0
	for _, tr := range study.Trials[:DefaultStartupTrials] {
		startupBest = max(startupBest, tr.Score)
	}
	if study.BestScore < startupBest {
		t.Errorf("best %f below startup best %f", study.BestScore, startupBest)
	}
}

func TestOptimize_FailedTrialsRecorded(t *testing.T) {
	eval := &mockEvaluator{failOn: func(call int) error {
		if call%3 == 0 {
			return errors.New("backend down")
		}
		return nil
	}}
	study, err := New(eval, scoreFactory).
		Optimize(context.Background(), testRecords(), testRanges(), 12, 5)
	if err != nil {
		t.Fatalf("failed trials must not abort the run: %v", err)
	}
	if len(study.Trials) != 12 {
		t.Fatalf("trials = %d, want 12", len(study.Trials))
	}
	failed := 0
	for _, tr := range study.Trials {
		if tr.State != TrialFailed {
			continue
		}
		failed++
		if tr.Score != 0 {
			t.Errorf("failed trial %d has score %f", tr.Number, tr.Score)
		}
		if !strings.Contains(tr.Error, domain.ErrTrialFailed.Error()) || !strings.Contains(tr.Error, "backend down") {
			t.Errorf("failed trial error = %q", tr.Error)
		}
		if tr.Number == study.BestTrial {
			t.Errorf("failed trial %d chosen as best", tr.Number)
		}
	}
	if failed != 4 || study.Completed() != 8 {
		t.Errorf("failed = %d completed = %d, want 4 and 8", failed, study.Completed())
	}
}

func TestOptimize_PanicIsFailedTrial(t *testing.T) {
	calls := 0
	factory := func(v boost.Vector) (evaluation.SearchFunc, error) {
		calls++
		if calls == 2 {
			panic("boom")
		}
		return scoreFactory(v)
	}
	study, err := New(&mockEvaluator{}, factory).
		Optimize(context.Background(), testRecords(), testRanges(), 3, 9)
	if err != nil {
		t.Fatal(err)
	}
	if study.Trials[1].State != TrialFailed || !strings.Contains(study.Trials[1].Error, "boom") {
		t.Errorf("trial 1 = %+v", study.Trials[1])
	}
	if study.Completed() != 2 {
		t.Errorf("completed = %d, want 2", study.Completed())
	}
}

func TestOptimize_CancelReturnsPartialStudy(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eval := &mockEvaluator{after: func(call int) {
		if call == 3 {
			cancel()
		}
	}}
	study, err := New(eval, scoreFactory).Optimize(ctx, testRecords(), testRanges(), 50, 11)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if study == nil || len(study.Trials) != 3 {
		t.Fatalf("expected 3 trials in partial study, got %+v", study)
	}
	if study.BestTrial < 0 {
		t.Error("partial study must keep its best trial")
	}
}

func TestOptimize_ConfigurationErrors(t *testing.T) {
	svc := New(&mockEvaluator{}, scoreFactory)
	tests := []struct {
		name    string
		records []evaluation.Record
		ranges  boost.Ranges
		trials  int
	}{
		{"empty ranges", testRecords(), boost.Ranges{}, 5},
		{"low above high", testRecords(), boost.Ranges{"question": {Low: 3, High: 1}}, 5},
		{"negative low", testRecords(), boost.Ranges{"question": {Low: -1, High: 1}}, 5},
		{"zero trials", testRecords(), testRanges(), 0},
		{"no records", nil, testRanges(), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Optimize(context.Background(), tt.records, tt.ranges, tt.trials, 1)
			if !errors.Is(err, domain.ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestOptimize_DegenerateRange(t *testing.T) {
	ranges := boost.Ranges{"question": {Low: 2, High: 2}, "text": {Low: 0, High: 5}}
	study, err := New(&mockEvaluator{}, scoreFactory).
		Optimize(context.Background(), testRecords(), ranges, 15, 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, tr := range study.Trials {
		if tr.Params["question"] != 2 {
			t.Fatalf("trial %d question = %f, want 2", tr.Number, tr.Params["question"])
		}
	}
}
