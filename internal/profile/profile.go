// Package profile defines the user configuration the decision engine runs
// against: hard constraints that gate an opportunity and preferences that
// score it. The two groups are independent axes.
package profile

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// RemotePolicy is the working arrangement offered by an opportunity or
// required by the user.
type RemotePolicy string

const (
	RemoteAny    RemotePolicy = "any"
	RemoteOnly   RemotePolicy = "remote"
	RemoteHybrid RemotePolicy = "hybrid"
	RemoteOnsite RemotePolicy = "onsite"
)

// ParseRemotePolicy converts a raw string into a RemotePolicy. Unknown values
// are an error rather than silently mapped to RemoteAny.
func ParseRemotePolicy(s string) (RemotePolicy, error) {
	p := RemotePolicy(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case RemoteAny, RemoteOnly, RemoteHybrid, RemoteOnsite:
		return p, nil
	case "":
		return RemoteAny, nil
	}
	return "", fmt.Errorf("unknown remote policy %q", s)
}

// UserProfile enumerates everything the pipeline knows about the user.
type UserProfile struct {
	// Hard constraints. A violated required constraint declines the
	// opportunity regardless of score. Each *Strict flag makes its
	// dimension fail closed when the message does not mention it instead
	// of getting the benefit of the doubt.
	SalaryFloor        int          `mapstructure:"salary-floor"`
	SalaryStrict       bool         `mapstructure:"salary-strict"`
	Currency           string       `mapstructure:"currency"`
	MaxWorkWeekHours   int          `mapstructure:"max-work-week-hours"`
	WorkWeekStrict     bool         `mapstructure:"work-week-strict"`
	RequiredRemote     RemotePolicy `mapstructure:"required-remote-policy"`
	RemoteStrict       bool         `mapstructure:"remote-strict"`
	MustHaveKeywords   []string     `mapstructure:"must-have-keywords"`
	RejectKeywords     []string     `mapstructure:"reject-keywords"`
	MinStackOverlapPct float64      `mapstructure:"min-stack-overlap-pct"`
	StackStrict        bool         `mapstructure:"stack-strict"`

	// Preferences. These only influence the score.
	PreferredStack   []string  `mapstructure:"preferred-stack"`
	IdealSalary      int       `mapstructure:"ideal-salary"`
	TargetSeniority  Seniority `mapstructure:"target-seniority"`
	PreferredSize    string    `mapstructure:"preferred-company-size"`
	PreferredIndustry string   `mapstructure:"preferred-industry"`
	KnownCompanies   []string  `mapstructure:"known-companies"`

	// Answers the follow-up analyzer may hand out without a human. A zero
	// AvailabilityWeeks means "not configured".
	AvailabilityWeeks int  `mapstructure:"availability-weeks"`
	ShareSalary       bool `mapstructure:"share-salary"`
}

// FromMap decodes a generic configuration map into a UserProfile, converting
// seniority and remote-policy strings along the way.
func FromMap(raw map[string]any) (*UserProfile, error) {
	var p UserProfile

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     &p,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(decodeSeniority, decodeRemotePolicy),
	})
	if err != nil {
		return nil, err
	}

	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return &p, nil
}

// Validate checks the profile for configurations the pipeline cannot work
// with. It is called once at startup, never per message.
func (p *UserProfile) Validate() error {
	if p == nil {
		return fmt.Errorf("profile is required")
	}
	if p.SalaryFloor < 0 {
		return fmt.Errorf("salary floor must not be negative")
	}
	if p.IdealSalary > 0 && p.IdealSalary < p.SalaryFloor {
		return fmt.Errorf("ideal salary (%d) must not be below the salary floor (%d)", p.IdealSalary, p.SalaryFloor)
	}
	if p.MinStackOverlapPct < 0 || p.MinStackOverlapPct > 100 {
		return fmt.Errorf("min stack overlap must be between 0 and 100, got %v", p.MinStackOverlapPct)
	}
	if _, err := ParseRemotePolicy(string(p.RequiredRemote)); err != nil {
		return err
	}
	return nil
}

// IdealOrFloorSalary returns the salary the user is aiming for, falling back
// to the floor when no ideal is configured.
func (p *UserProfile) IdealOrFloorSalary() int {
	if p.IdealSalary > 0 {
		return p.IdealSalary
	}
	return p.SalaryFloor
}
