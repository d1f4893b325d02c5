package projects

import (
	"tpgci/src/config"
)

// Schedule holds the day-of-week policy of one CI server environment.
type Schedule struct {
	NightlyDaysOfWeek       string
	FeatureBranchDaysOfWeek string
	FeatureBranchEnabled    bool
}

// CronForEnvironment returns the schedule policy for env.
//
// The public server keeps Wednesday (4 in the server's 1=Sunday numbering) free of
// nightly runs so feature branches can use the test projects. The private server
// tests every day and does not run feature branches.
func CronForEnvironment(env config.Environment) (Schedule, error) {
	if err := env.Validate(); err != nil {
		return Schedule{}, err
	}

	if env == config.EnvironmentPublic {
		return Schedule{
			NightlyDaysOfWeek:       "1-3,5-7",
			FeatureBranchDaysOfWeek: "4",
			FeatureBranchEnabled:    true,
		}, nil
	}

	return Schedule{
		NightlyDaysOfWeek:       "*",
		FeatureBranchDaysOfWeek: "*",
		FeatureBranchEnabled:    false,
	}, nil
}
