package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/boostlab/internal/db"
	"github.com/kailas-cloud/boostlab/internal/domain"
	"github.com/kailas-cloud/boostlab/internal/domain/search/boost"
)

// Profile is a tuned boost vector together with its provenance.
type Profile struct {
	Name      string
	Boosts    boost.Vector
	Score     float64
	RunID     string
	Seed      uint64
	Trials    int
	CreatedAt time.Time
}

// store is the consumer interface for profiles (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
}

// Repo persists boost profiles as JSON values.
type Repo struct {
	store store
	now   func() time.Time
}

// New creates a profile repository.
func New(s store) *Repo {
	return &Repo{store: s, now: time.Now}
}

// Save stores p under its name, overwriting any previous profile.
// A zero CreatedAt is set to the current time.
func (r *Repo) Save(ctx context.Context, p Profile) error {
	if !db.IsValidIdentifier(p.Name) {
		return domain.Configf("invalid profile name %q", p.Name)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.now()
	}
	data, err := json.Marshal(toRow(&p))
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := r.store.Set(ctx, domain.ProfileKey(p.Name), data); err != nil {
		return fmt.Errorf("save profile %s: %w", p.Name, err)
	}
	return nil
}

// Get loads a profile by name.
func (r *Repo) Get(ctx context.Context, name string) (Profile, error) {
	data, err := r.store.Get(ctx, domain.ProfileKey(name))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return Profile{}, fmt.Errorf("profile %s: %w", name, domain.ErrNotFound)
		}
		return Profile{}, fmt.Errorf("get profile %s: %w", name, err)
	}
	var row profileRow
	if err := json.Unmarshal(data, &row); err != nil {
		return Profile{}, fmt.Errorf("unmarshal profile %s: %w", name, err)
	}
	return fromRow(row)
}

// Boosts loads only the boost vector of a profile.
func (r *Repo) Boosts(ctx context.Context, name string) (boost.Vector, error) {
	p, err := r.Get(ctx, name)
	if err != nil {
		return boost.Vector{}, err
	}
	return p.Boosts, nil
}

// Delete removes a profile.
func (r *Repo) Delete(ctx context.Context, name string) error {
	if err := r.store.Del(ctx, domain.ProfileKey(name)); err != nil {
		return fmt.Errorf("delete profile %s: %w", name, err)
	}
	return nil
}
