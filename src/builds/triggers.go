package builds

import (
	"fmt"
	"strconv"

	"tpgci/src/teamcity"
)

const (
	DefaultStartHour   = 4
	DefaultDaysOfWeek  = "*"
	DefaultDaysOfMonth = "*"
	DefaultBranchName  = "refs/heads/nightly-test"
)

// NightlyTriggerConfiguration is the schedule of a pipeline entry point.
type NightlyTriggerConfiguration struct {
	Branch      string
	Enabled     bool
	StartHour   int
	DaysOfWeek  string
	DaysOfMonth string
}

// DefaultNightlyTrigger runs every day at 04:00 server time on the nightly branch.
func DefaultNightlyTrigger() NightlyTriggerConfiguration {
	return NightlyTriggerConfiguration{
		Branch:      DefaultBranchName,
		Enabled:     true,
		StartHour:   DefaultStartHour,
		DaysOfWeek:  DefaultDaysOfWeek,
		DaysOfMonth: DefaultDaysOfMonth,
	}
}

func (c NightlyTriggerConfiguration) validate() error {
	if c.StartHour < 0 || c.StartHour > 23 {
		return fmt.Errorf("trigger start hour %d out of range 0-23", c.StartHour)
	}
	if c.Branch == "" {
		return fmt.Errorf("trigger branch is required")
	}
	return nil
}

// AddTrigger attaches a schedule trigger to bt. Empty day fields mean every day.
func AddTrigger(bt *teamcity.BuildType, cfg NightlyTriggerConfiguration) error {
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("failed to add trigger to %s: %w", bt.ID, err)
	}

	dow := cfg.DaysOfWeek
	if dow == "" {
		dow = DefaultDaysOfWeek
	}
	dom := cfg.DaysOfMonth
	if dom == "" {
		dom = DefaultDaysOfMonth
	}

	bt.Triggers = append(bt.Triggers, teamcity.ScheduleTrigger{
		Enabled:      cfg.Enabled,
		BranchFilter: "+:" + cfg.Branch,
		Cron: teamcity.Cron{
			Hours:      strconv.Itoa(cfg.StartHour),
			DayOfWeek:  dow,
			DayOfMonth: dom,
			Timezone:   "SERVER",
		},
		TriggerBuild:           "always",
		WithPendingChangesOnly: false,
		CleanCheckoutForDeps:   true,
	})
	return nil
}
