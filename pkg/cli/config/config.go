package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/argos/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// App holds the CLI flag locating the application profile
type App struct {
	path string
}

// Flags returns CLI flags for the application profile
func (a *App) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the TOML application profile",
			Sources:     cli.EnvVars("ARGOS_CONFIG"),
			Destination: &a.path,
		},
	}
}

// Path returns the configured profile path
func (a *App) Path() string {
	return a.path
}

// Configure loads and validates the application profile
func (a *App) Configure() (*Profile, error) {
	if a.path == "" {
		return nil, goerr.Wrap(ErrProfileNotFound, "--config is required")
	}
	return LoadProfile(a.path)
}

// Profile represents the application profile loaded from TOML
type Profile struct {
	HomeGuildID     string   `toml:"home_guild_id"`
	OperatorUserIDs []string `toml:"operator_user_ids"`

	Sweep       SweepProfile       `toml:"sweep"`
	UpdateWatch UpdateWatchProfile `toml:"update_watch"`
}

// HomeGuild returns the home guild ID as a typed value
func (p *Profile) HomeGuild() types.GuildID {
	return types.GuildID(p.HomeGuildID)
}

// Operators returns the operator override users as typed values
func (p *Profile) Operators() []types.UserID {
	ids := make([]types.UserID, len(p.OperatorUserIDs))
	for i, id := range p.OperatorUserIDs {
		ids[i] = types.UserID(id)
	}
	return ids
}

// Validate checks if the Profile is valid
func (p *Profile) Validate() error {
	if p.HomeGuildID == "" {
		return goerr.Wrap(ErrInvalidProfile, "home_guild_id is required")
	}
	if err := types.GuildID(p.HomeGuildID).Validate(); err != nil {
		return goerr.Wrap(ErrInvalidProfile, "home_guild_id is not a valid guild ID", goerr.V("value", p.HomeGuildID))
	}

	for i, id := range p.OperatorUserIDs {
		if err := types.UserID(id).Validate(); err != nil {
			return goerr.Wrap(ErrInvalidProfile, "operator_user_ids entry is not a valid user ID", goerr.V("index", i), goerr.V("value", id))
		}
	}

	if err := p.Sweep.Validate(); err != nil {
		return goerr.Wrap(err, "invalid sweep settings")
	}
	if err := p.UpdateWatch.Validate(); err != nil {
		return goerr.Wrap(err, "invalid update_watch settings")
	}

	return nil
}

// SweepProfile tunes the inactive guild sweeper. Durations are Go duration
// strings; empty values fall back to the defaults.
type SweepProfile struct {
	InitialDelay string `toml:"initial_delay"`
	Interval     string `toml:"interval"`
	Threshold    string `toml:"threshold"`
}

// Validate checks if the SweepProfile is valid
func (s *SweepProfile) Validate() error {
	if err := validateDuration("initial_delay", s.InitialDelay); err != nil {
		return err
	}
	if err := validateDuration("interval", s.Interval); err != nil {
		return err
	}
	return validateDuration("threshold", s.Threshold)
}

// InitialDelayDuration returns the delay before the first sweep pass (default 1h)
func (s *SweepProfile) InitialDelayDuration() time.Duration {
	return durationOr(s.InitialDelay, time.Hour)
}

// IntervalDuration returns the interval between sweep passes (default 24h)
func (s *SweepProfile) IntervalDuration() time.Duration {
	return durationOr(s.Interval, 24*time.Hour)
}

// ThresholdDuration returns the inactivity threshold for deactivation (default 30 days)
func (s *SweepProfile) ThresholdDuration() time.Duration {
	return durationOr(s.Threshold, 30*24*time.Hour)
}

// UpdateWatchProfile tunes the release watcher. The watcher is disabled unless
// both owner and repo are set.
type UpdateWatchProfile struct {
	Owner    string `toml:"owner"`
	Repo     string `toml:"repo"`
	Interval string `toml:"interval"`
}

// Validate checks if the UpdateWatchProfile is valid
func (u *UpdateWatchProfile) Validate() error {
	if (u.Owner == "") != (u.Repo == "") {
		return goerr.Wrap(ErrInvalidProfile, "update_watch owner and repo must be set together",
			goerr.V("owner", u.Owner), goerr.V("repo", u.Repo))
	}
	return validateDuration("interval", u.Interval)
}

// Enabled returns true if a release repository is configured
func (u *UpdateWatchProfile) Enabled() bool {
	return u.Owner != "" && u.Repo != ""
}

// IntervalDuration returns the interval between release checks (default 6h)
func (u *UpdateWatchProfile) IntervalDuration() time.Duration {
	return durationOr(u.Interval, 6*time.Hour)
}

func validateDuration(field, raw string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return goerr.Wrap(ErrInvalidDuration, "failed to parse duration",
			goerr.V("field", field), goerr.V("value", raw))
	}
	if d <= 0 {
		return goerr.Wrap(ErrInvalidDuration, "duration must be positive",
			goerr.V("field", field), goerr.V("value", raw))
	}
	return nil
}

// durationOr parses a validated duration string, falling back to def when empty
func durationOr(raw string, def time.Duration) time.Duration {
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}

// LoadProfile loads the application profile from a TOML file
func LoadProfile(path string) (*Profile, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(ErrProfileNotFound, "failed to read profile", goerr.V("path", path))
		}
		return nil, goerr.Wrap(err, "failed to read profile", goerr.V("path", path))
	}

	var prof Profile
	if err := toml.Unmarshal(data, &prof); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML profile", goerr.V("path", path))
	}

	if err := prof.Validate(); err != nil {
		return nil, goerr.Wrap(err, "profile validation failed", goerr.V("path", path))
	}

	return &prof, nil
}
