package builds

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tpgci/src/config"
	"tpgci/src/registry"
	"tpgci/src/sanitize"
	"tpgci/src/teamcity"
)

func testConfig() config.AccTestConfiguration {
	return config.AccTestConfiguration{
		Credentials:    "{\"type\":\"service_account\"}",
		Project:        "ci-test-project",
		Region:         "us-central1",
		Zone:           "us-central1-a",
		CredentialsGCS: "gcs",
	}
}

func stepNames(bt *teamcity.BuildType) []string {
	var names []string
	for _, s := range bt.Steps {
		names = append(names, s.Name)
	}
	return names
}

func TestPackageBuild(t *testing.T) {
	bt, err := PackageBuild(PackageOptions{
		ProjectID:      "NightlyTests",
		Provider:       registry.ProviderBeta,
		Package:        registry.Package{Name: "compute", DisplayName: "Compute", Path: "./google-beta/services/compute"},
		VcsRootID:      "TerraformProviderGoogleBeta",
		Config:         testConfig(),
		SharedResource: "ci-test-project-nightly-beta Service Lock",
	})
	if err != nil {
		t.Fatalf("PackageBuild() unexpected error: %v", err)
	}

	if bt.ID != "NIGHTLYTESTS_GOOGLEBETA_PACKAGE_COMPUTE" {
		t.Errorf("ID = %q", bt.ID)
	}
	if bt.Name != "Compute - Acceptance Tests" {
		t.Errorf("Name = %q", bt.Name)
	}
	if bt.Kind != teamcity.KindPackage {
		t.Errorf("Kind = %q", bt.Kind)
	}

	wantSteps := []string{
		StepSetCommitBuildID,
		StepTagTriggerMethod,
		StepConfigureGoEnv,
		StepDownloadTerraform,
		StepRunAcceptanceTests,
		StepUploadDebugLogs,
		StepArchiveArtifacts,
	}
	if diff := cmp.Diff(wantSteps, stepNames(bt)); diff != "" {
		t.Errorf("steps mismatch (-want +got):\n%s", diff)
	}

	wantParams := map[string]string{
		"PARALLELISM":                   "12",
		"TEST_PREFIX":                   "TestAcc",
		"TIMEOUT":                       "12",
		"env.TF_ACC":                    "1",
		"env.RELEASE_DIFF":              "",
		"PROVIDER_NAME":                 "google-beta",
		"PACKAGE_PATH":                  "./google-beta/services/compute",
		"env.TERRAFORM_CORE_VERSION":    DefaultTerraformCoreVersion,
		"env.TF_SCHEMA_PANIC_ON_ERROR":  "1",
		"env.GOOGLE_PROJECT":            "ci-test-project",
		"teamcity.ui.settings.readOnly": "true",
	}
	for name, want := range wantParams {
		if got, ok := bt.Params.Get(name); !ok || got.Value != want {
			t.Errorf("param %s = %q (set %v), want %q", name, got.Value, ok, want)
		}
	}

	creds, _ := bt.Params.Get("env.GOOGLE_CREDENTIALS")
	if !creds.Secret() || creds.Display != teamcity.DisplayHidden {
		t.Errorf("credentials param = %+v, want hidden password", creds)
	}

	if bt.Failure.ExecutionTimeoutMin != DefaultBuildTimeoutMinutes || !bt.Failure.ErrorMessage {
		t.Errorf("Failure = %+v", bt.Failure)
	}
	if diff := cmp.Diff([]string{ArtifactRulesDebugLogs}, bt.ArtifactRules); diff != "" {
		t.Errorf("artifact rules mismatch (-want +got):\n%s", diff)
	}

	wantLocks := []teamcity.Lock{{Resource: "ci-test-project-nightly-beta Service Lock", Mode: teamcity.SpecificLock, Value: "compute"}}
	if diff := cmp.Diff(wantLocks, bt.Locks); diff != "" {
		t.Errorf("locks mismatch (-want +got):\n%s", diff)
	}
	if len(bt.Triggers) != 0 || len(bt.Dependencies) != 0 {
		t.Error("PackageBuild() should not attach triggers or dependencies")
	}
}

func TestPackageBuildOverrides(t *testing.T) {
	tests := []struct {
		name            string
		opts            PackageOptions
		wantParallelism string
		wantTimeout     int
		wantReleaseDiff string
	}{
		{
			name:            "defaults",
			opts:            PackageOptions{},
			wantParallelism: "12",
			wantTimeout:     DefaultBuildTimeoutMinutes,
		},
		{
			name:            "package override",
			opts:            PackageOptions{Package: registry.Package{Parallelism: 4, TimeoutMinutes: 300}},
			wantParallelism: "4",
			wantTimeout:     300,
		},
		{
			name:            "options win over package",
			opts:            PackageOptions{Parallelism: 2, TimeoutMinutes: 60, Package: registry.Package{Parallelism: 4, TimeoutMinutes: 300}},
			wantParallelism: "2",
			wantTimeout:     60,
		},
		{
			name:            "release diff",
			opts:            PackageOptions{ReleaseDiff: true},
			wantParallelism: "12",
			wantTimeout:     DefaultBuildTimeoutMinutes,
			wantReleaseDiff: "true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			opts.ProjectID = "NightlyTests"
			opts.Provider = registry.ProviderGa
			opts.Package.Name = "dns"
			opts.Package.DisplayName = "Dns"
			opts.Package.Path = "./google/services/dns"

			bt, err := PackageBuild(opts)
			if err != nil {
				t.Fatalf("PackageBuild() unexpected error: %v", err)
			}
			if got := bt.Params.Value("PARALLELISM"); got != tt.wantParallelism {
				t.Errorf("PARALLELISM = %q, want %q", got, tt.wantParallelism)
			}
			if bt.Failure.ExecutionTimeoutMin != tt.wantTimeout {
				t.Errorf("timeout = %d, want %d", bt.Failure.ExecutionTimeoutMin, tt.wantTimeout)
			}
			if got := bt.Params.Value("env.RELEASE_DIFF"); got != tt.wantReleaseDiff {
				t.Errorf("env.RELEASE_DIFF = %q, want %q", got, tt.wantReleaseDiff)
			}
			if len(bt.Locks) != 0 {
				t.Errorf("Locks = %v, want none without a shared resource", bt.Locks)
			}
		})
	}
}

func TestPackageBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		opts PackageOptions
	}{
		{
			name: "missing path",
			opts: PackageOptions{ProjectID: "NightlyTests", Provider: "google", Package: registry.Package{Name: "dns"}},
		},
		{
			name: "id too long",
			opts: PackageOptions{
				ProjectID: strings.Repeat("X", 220),
				Provider:  "google",
				Package:   registry.Package{Name: "dns", DisplayName: "Dns", Path: "./google/services/dns"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := PackageBuild(tt.opts); err == nil {
				t.Error("PackageBuild() expected error, got nil")
			}
		})
	}
}

func TestPackageBuildsOnePerPackage(t *testing.T) {
	for _, load := range []func() (*registry.Registry, error){registry.LoadGa, registry.LoadBeta} {
		reg, err := load()
		if err != nil {
			t.Fatalf("load registry: %v", err)
		}

		t.Run(reg.Provider(), func(t *testing.T) {
			bts, err := PackageBuilds(reg, PackageOptions{
				ProjectID: "TerraformProviderGoogle_NightlyTests",
				Provider:  reg.Provider(),
				Config:    testConfig(),
			})
			if err != nil {
				t.Fatalf("PackageBuilds() unexpected error: %v", err)
			}

			if len(bts) != reg.Len() {
				t.Fatalf("len(builds) = %d, want %d", len(bts), reg.Len())
			}

			ids := make(map[string]bool)
			for i, bt := range bts {
				if ids[bt.ID] {
					t.Errorf("duplicate build id %s", bt.ID)
				}
				ids[bt.ID] = true

				if !sanitize.Valid(bt.ID) {
					t.Errorf("invalid build id %s", bt.ID)
				}
				want, _ := PackageBuildID("TerraformProviderGoogle_NightlyTests", reg.Provider(), reg.Names()[i])
				if bt.ID != want {
					t.Errorf("build %d id = %s, want %s (sorted by package)", i, bt.ID, want)
				}
			}
		})
	}
}

func TestPackageBuildsCollision(t *testing.T) {
	reg, err := registry.Parse("t.hcl", []byte(`
sweeper_path = "./sweeper"
service "foo-bar" {
  display_name = "FooBar"
  path         = "./foo-bar"
}
service "foobar" {
  display_name = "Foobar"
  path         = "./foobar"
}
`), registry.ProviderGa)
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}

	_, err = PackageBuilds(reg, PackageOptions{ProjectID: "NightlyTests", Provider: registry.ProviderGa})
	if !errors.Is(err, sanitize.ErrInvalidID) {
		t.Errorf("PackageBuilds() error = %v, want ErrInvalidID for colliding ids", err)
	}
}
