package profile

import (
	"time"

	"github.com/kailas-cloud/boostlab/internal/domain/search/boost"
)

// profileRow is the JSON form stored under the profile key.
type profileRow struct {
	Name      string             `json:"name"`
	Boosts    map[string]float64 `json:"boosts"`
	Score     float64            `json:"score"`
	RunID     string             `json:"run_id,omitempty"`
	Seed      uint64             `json:"seed"`
	Trials    int                `json:"trials"`
	CreatedAt int64              `json:"created_at"` // unix millis
}

func toRow(p *Profile) profileRow {
	return profileRow{
		Name:      p.Name,
		Boosts:    p.Boosts.Map(),
		Score:     p.Score,
		RunID:     p.RunID,
		Seed:      p.Seed,
		Trials:    p.Trials,
		CreatedAt: p.CreatedAt.UnixMilli(),
	}
}

func fromRow(r profileRow) (Profile, error) {
	b, err := boost.New(r.Boosts)
	if err != nil {
		return Profile{}, err
	}
	return Profile{
		Name:      r.Name,
		Boosts:    b,
		Score:     r.Score,
		RunID:     r.RunID,
		Seed:      r.Seed,
		Trials:    r.Trials,
		CreatedAt: time.UnixMilli(r.CreatedAt).UTC(),
	}, nil
}
