package projects

import (
	"fmt"
	"sort"

	"tpgci/src/builds"
	"tpgci/src/registry"
	"tpgci/src/sanitize"
	"tpgci/src/teamcity"
)

const (
	SharedResourceNameGa   = "ci-test-project-nightly-ga Service Lock"
	SharedResourceNameBeta = "ci-test-project-nightly-beta Service Lock"
	SharedResourceNameVcr  = "ci-test-project-nightly-vcr Service Lock"
)

// sharedResource builds a custom-values resource holding every package name of
// the given registries plus the sweeper names, sorted and deduplicated.
func sharedResource(name string, regs ...*registry.Registry) (teamcity.SharedResource, error) {
	id, err := sanitize.ID(name)
	if err != nil {
		return teamcity.SharedResource{}, fmt.Errorf("failed to build shared resource id: %w", err)
	}

	set := map[string]bool{
		builds.ServiceSweeperName: true,
		builds.ProjectSweeperName: true,
	}
	for _, reg := range regs {
		for _, n := range reg.Names() {
			set[n] = true
		}
	}

	values := make([]string, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	sort.Strings(values)

	return teamcity.SharedResource{ID: id, Name: name, Values: values}, nil
}

const (
	upstreamRepoGa     = "https://github.com/hashicorp/terraform-provider-google"
	upstreamRepoBeta   = "https://github.com/hashicorp/terraform-provider-google-beta"
	downstreamRepoGa   = "https://github.com/modular-magician/terraform-provider-google"
	downstreamRepoBeta = "https://github.com/modular-magician/terraform-provider-google-beta"
	defaultVcsBranch   = "refs/heads/main"
	defaultBranchSpec  = "+:*"
)

// vcsRoots are declared on the root project and referenced by id from every build.
type vcsRoots struct {
	UpstreamGa, UpstreamBeta     teamcity.VcsRoot
	DownstreamGa, DownstreamBeta teamcity.VcsRoot
}

func newVcsRoots(rootID string) vcsRoots {
	root := func(suffix, name, url string) teamcity.VcsRoot {
		return teamcity.VcsRoot{
			ID:         rootID + "_" + suffix,
			Name:       name,
			URL:        url,
			Branch:     defaultVcsBranch,
			BranchSpec: defaultBranchSpec,
		}
	}
	return vcsRoots{
		UpstreamGa:     root("HASHICORP_VCS_ROOT_GA", "hashicorp/terraform-provider-google", upstreamRepoGa),
		UpstreamBeta:   root("HASHICORP_VCS_ROOT_BETA", "hashicorp/terraform-provider-google-beta", upstreamRepoBeta),
		DownstreamGa:   root("MODULAR_MAGICIAN_VCS_ROOT_GA", "modular-magician/terraform-provider-google", downstreamRepoGa),
		DownstreamBeta: root("MODULAR_MAGICIAN_VCS_ROOT_BETA", "modular-magician/terraform-provider-google-beta", downstreamRepoBeta),
	}
}

func (v vcsRoots) list() []teamcity.VcsRoot {
	return []teamcity.VcsRoot{v.UpstreamGa, v.UpstreamBeta, v.DownstreamGa, v.DownstreamBeta}
}
