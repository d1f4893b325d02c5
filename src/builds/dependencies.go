package builds

import (
	"fmt"

	"tpgci/src/teamcity"
)

// Chain wires pre-sweep → packages → post-sweep.
//
// Every package waits for the pre-sweep and does not start if it fails. The
// post-sweep depends on every package and runs regardless of their outcome, so
// resources are cleaned up even after partial failure.
func Chain(pre *teamcity.BuildType, packages []*teamcity.BuildType, post *teamcity.BuildType) error {
	if pre == nil || post == nil {
		return fmt.Errorf("chain requires both a pre-sweep and a post-sweep build")
	}
	if len(packages) == 0 {
		return fmt.Errorf("chain %s → %s has no package builds", pre.ID, post.ID)
	}

	for _, bt := range packages {
		bt.Dependencies = append(bt.Dependencies, teamcity.SnapshotDependency{
			BuildTypeID:         pre.ID,
			OnDependencyFailure: teamcity.FailToStart,
			OnDependencyCancel:  teamcity.FailToStart,
		})
	}

	for _, bt := range packages {
		post.Dependencies = append(post.Dependencies, teamcity.SnapshotDependency{
			BuildTypeID:         bt.ID,
			OnDependencyFailure: teamcity.Ignore,
			OnDependencyCancel:  teamcity.Ignore,
		})
	}

	return nil
}
