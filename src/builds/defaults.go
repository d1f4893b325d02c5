// Package builds assembles the build types of an acceptance-test pipeline: one build
// per service package, the sweepers that clean up around them and the VCR recording
// build, plus the schedule triggers and snapshot dependencies that chain them.
package builds

const (
	DefaultParallelism = 12

	// DefaultBuildTimeoutMinutes bounds a whole build; DefaultTestTimeoutHours bounds
	// the go test binary inside it.
	DefaultBuildTimeoutMinutes = 12 * 60
	DefaultTestTimeoutHours    = "12"

	SweeperTimeoutMinutes = 3 * 60

	DefaultTestPrefix = "TestAcc"

	DefaultTerraformCoreVersion = "1.8.3"

	// DefaultSweeperRegions are swept by every sweeper build.
	DefaultSweeperRegions = "us-central1,us-east1,us-west1"

	// ProjectSweepRun restricts a sweep to project resources.
	ProjectSweepRun = "GoogleProject"

	ArtifactRulesDebugLogs = "%teamcity.build.checkoutDir%/debug*.txt"
)

const (
	ServiceSweeperName = "Service Sweeper"
	ProjectSweeperName = "Project Sweeper"
	PreSweeperName     = "Pre-Sweeper"
	PostSweeperName    = "Post-Sweeper"
	VcrBuildName       = "VCR Recording"
)

// Step names. Validation relies on these to find the debug log upload.
const (
	StepSetCommitBuildID   = "Set build id as commit hash"
	StepTagTriggerMethod   = "Tag build with trigger method"
	StepConfigureGoEnv     = "Configure Go environment"
	StepDownloadTerraform  = "Download Terraform binary"
	StepRunAcceptanceTests = "Run acceptance tests"
	StepUploadDebugLogs    = "Upload debug logs to GCS"
	StepArchiveArtifacts   = "Archive artifacts if over limit"
	StepRunSweepers        = "Run sweepers"
	StepVcrSetup           = "Set up VCR cassettes"
	StepVcrRunTests        = "Run VCR acceptance tests in recording mode"
	StepVcrSaveCassettes   = "Upload recorded VCR cassettes"
)
