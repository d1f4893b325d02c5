package builds

import (
	"strconv"

	"tpgci/src/config"
	"tpgci/src/teamcity"
)

// The parameter groups below are applied in a fixed order by each build assembler.
// A later group may override a name set by an earlier one.

// googleTestParams exports the channel's identifiers to the provider test code.
func googleTestParams(p *teamcity.Params, cfg config.AccTestConfiguration) {
	p.Hidden("env.GOOGLE_BILLING_ACCOUNT", cfg.BillingAccount, "The billing account associated with the first google organization")
	p.Hidden("env.GOOGLE_BILLING_ACCOUNT_2", cfg.BillingAccount2, "The billing account associated with the second google organization")
	p.Hidden("env.GOOGLE_CUST_ID", cfg.CustID, "The ID of the Google Identity Customer")
	p.Hidden("env.GOOGLE_ORG", cfg.Org, "The Google Organization Id")
	p.Hidden("env.GOOGLE_ORG_2", cfg.Org2, "The second Google Organization Id")
	p.Hidden("env.GOOGLE_MASTER_BILLING_ACCOUNT", cfg.MasterBillingAccount, "The master billing account")
	p.Hidden("env.GOOGLE_PROJECT", cfg.Project, "The google project for this build")
	p.Hidden("env.GOOGLE_ORG_DOMAIN", cfg.OrgDomain, "The org domain")
	p.Hidden("env.GOOGLE_PROJECT_NUMBER", cfg.ProjectNumber, "The project number associated with the project")
	p.Hidden("env.GOOGLE_REGION", cfg.Region, "The google region to use")
	p.Hidden("env.GOOGLE_SERVICE_ACCOUNT", cfg.ServiceAccount, "The service account")
	p.Hidden("env.GOOGLE_ZONE", cfg.Zone, "The google zone to use")
	p.Hidden("env.GOOGLE_IDENTITY_USER", cfg.IdentityUser, "The user for the identity platform")
	p.Hidden("env.GOOGLE_CHRONICLE_INSTANCE_ID", cfg.ChronicleInstanceID, "The id of the Chronicle instance")
	p.Hidden("env.GOOGLE_VMWAREENGINE_PROJECT", cfg.VmwareengineProject, "The project used for vmwareengine tests")
	p.HiddenPassword("env.GOOGLE_CREDENTIALS", cfg.Credentials, "The Google credentials for this test runner")
}

// acceptanceTestParams controls how the test command is templated.
func acceptanceTestParams(p *teamcity.Params, parallelism int, prefix, timeoutHours string, releaseDiff bool) {
	p.Hidden("env.TF_ACC", "1", "Set to a value to run the Acceptance Tests")
	p.Text("PARALLELISM", strconv.Itoa(parallelism))
	p.Text("TEST_PREFIX", prefix)
	p.Text("TIMEOUT", timeoutHours)
	if releaseDiff {
		p.Text("env.RELEASE_DIFF", "true")
	} else {
		// Empty rather than "false": the test harness only checks for presence.
		p.Text("env.RELEASE_DIFF", "")
	}
}

func sweeperParams(p *teamcity.Params, regions, sweepRun string) {
	p.Text("SWEEPER_REGIONS", regions)
	p.Text("SWEEP_RUN", sweepRun)
}

// projectSweepParams toggles sweeping of project resources.
func projectSweepParams(p *teamcity.Params, enabled bool) {
	if enabled {
		p.Text("env.SKIP_PROJECT_SWEEPER", "")
		return
	}
	p.Text("env.SKIP_PROJECT_SWEEPER", "1")
}

// vcrParams may be changed in custom builds, e.g. VCR_MODE=REPLAYING.
func vcrParams(p *teamcity.Params, cfg config.AccTestConfiguration, provider string) {
	p.Text("env.VCR_MODE", "RECORDING")
	p.Text("env.VCR_PATH", "%system.teamcity.build.checkoutDir%/fixtures")
	p.Text("env.TEST", "./"+provider+"/services/...")
	p.Text("env.TESTARGS", "-run=%TEST_PREFIX%")
	p.Hidden("env.GOOGLE_INFRA_PROJECT", cfg.InfraProject, "The project that's linked to the GCS bucket storing VCR cassettes")
	p.Hidden("env.VCR_BUCKET_NAME", cfg.VcrBucketName, "The name of the GCS bucket storing VCR cassettes")
}

func loggingParams(p *teamcity.Params, cfg config.AccTestConfiguration, provider string) {
	p.Text("env.TF_LOG", "DEBUG")
	p.Text("env.TF_LOG_CORE", "WARN")
	p.Text("env.TF_LOG_SDK_FRAMEWORK", "INFO")

	p.Text("PROVIDER_NAME", provider)
	// .txt so the artifacts open in the browser.
	p.Text("env.TF_LOG_PATH_MASK", "%system.teamcity.build.checkoutDir%/debug-%PROVIDER_NAME%-%env.BUILD_NUMBER%-%teamcity.build.id%-%s.txt")

	p.HiddenPassword("env.GOOGLE_CREDENTIALS_GCS", cfg.CredentialsGCS, "The Google credentials for copying debug logs to the GCS bucket")
}

// ReadOnlySettings stops edits in the CI server UI; the generated files are the source of truth.
func ReadOnlySettings(p *teamcity.Params) {
	p.Hidden("teamcity.ui.settings.readOnly", "true", "Requires build configurations be edited via generated config")
}

func terraformBinaryParams(p *teamcity.Params, version string) {
	if version == "" {
		version = DefaultTerraformCoreVersion
	}
	p.TextWithDescription("env.TERRAFORM_CORE_VERSION", version, "The version of Terraform Core which should be used for testing")
	p.Hidden("env.TF_ACC_TERRAFORM_PATH", "%system.teamcity.build.checkoutDir%/tools/terraform", "The path where the Terraform Binary is located. Used by the testing framework.")
}

func schemaPanicParams(p *teamcity.Params) {
	p.Hidden("env.TF_SCHEMA_PANIC_ON_ERROR", "1", "Panic if unknown/unmatched fields are set into the state")
}

func workingDirectory(p *teamcity.Params, path string) {
	p.Hidden("PACKAGE_PATH", path, "The path at which to run - automatically updated")
}
