package views

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/qpath/qpath/internal/api"
	"github.com/qpath/qpath/internal/levels"
	"github.com/qpath/qpath/internal/migrate"
)

// DefaultSettleDelay is how long Profile.Load waits after migrating
// rewards before fetching, giving the backend time to commit.
const DefaultSettleDelay = 100 * time.Millisecond

// ErrRewardFields is returned by AddReward when a field is blank.
var ErrRewardFields = errors.New("condition and reward are required")

// ProfileBackend is what the profile page needs from the session client.
type ProfileBackend interface {
	ProfileDetails(ctx context.Context) (*api.ProfileDetails, error)
	CreateReward(ctx context.Context, condition, reward string) (*api.Reward, error)
}

// RewardMigrator moves legacy rewards to the backend.
type RewardMigrator interface {
	Rewards(ctx context.Context) migrate.Result
}

// Profile holds the profile details and the user's rewards.
type Profile struct {
	backend  ProfileBackend
	migrator RewardMigrator
	log      *slog.Logger

	// SettleDelay is waited after a successful reward migration.
	SettleDelay time.Duration

	mu      sync.RWMutex
	details *api.ProfileDetails
	rewards []api.Reward
	errMsg  string
}

// NewProfile creates a Profile view. migrator may be nil.
func NewProfile(backend ProfileBackend, migrator RewardMigrator, logger *slog.Logger) *Profile {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Profile{
		backend:     backend,
		migrator:    migrator,
		log:         logger,
		SettleDelay: DefaultSettleDelay,
	}
}

// Load runs the reward migration, then fetches the profile details.
func (p *Profile) Load(ctx context.Context) error {
	if p.migrator != nil {
		if res := p.migrator.Rewards(ctx); res.Migrated && p.SettleDelay > 0 {
			select {
			case <-time.After(p.SettleDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	details, err := p.backend.ProfileDetails(ctx)
	if err != nil {
		p.log.Error("load profile failed", "error", err)
		p.setErr(Localize(err, MsgLoadProfile))
		return err
	}

	p.mu.Lock()
	p.details = details
	p.rewards = slices.Clone(details.Rewards)
	p.errMsg = ""
	p.mu.Unlock()
	return nil
}

// AddReward creates a reward and appends it to the cache.
func (p *Profile) AddReward(ctx context.Context, condition, reward string) (*api.Reward, error) {
	condition, reward = strings.TrimSpace(condition), strings.TrimSpace(reward)
	if condition == "" || reward == "" {
		p.setErr(MsgRewardFields)
		return nil, ErrRewardFields
	}

	created, err := p.backend.CreateReward(ctx, condition, reward)
	if err != nil {
		p.log.Error("create reward failed", "error", err)
		p.setErr(Localize(err, MsgCreateReward))
		return nil, err
	}

	p.mu.Lock()
	p.rewards = append(p.rewards, *created)
	p.errMsg = ""
	p.mu.Unlock()
	return created, nil
}

func (p *Profile) setErr(msg string) {
	p.mu.Lock()
	p.errMsg = msg
	p.mu.Unlock()
}

// Details returns the cached profile details, or nil before a load.
func (p *Profile) Details() *api.ProfileDetails {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.details == nil {
		return nil
	}
	d := *p.details
	return &d
}

// Rewards returns a copy of the cached rewards.
func (p *Profile) Rewards() []api.Reward {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.rewards)
}

// Level places the cached total XP on the level ladder.
func (p *Profile) Level() levels.Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.details == nil {
		return levels.Compute(0)
	}
	return levels.Compute(p.details.Profile.TotalXP)
}

// Err returns the current inline error message, or "".
func (p *Profile) Err() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.errMsg
}
