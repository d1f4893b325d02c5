package builds

import "tpgci/src/teamcity"

// Step scripts are shell. %NAME% references are resolved by the CI server at run
// time, so they are left untouched here.

func setCommitBuildIDStep() teamcity.Step {
	return teamcity.Step{
		Name: StepSetCommitBuildID,
		Script: `#!/bin/bash
set -euo pipefail
BUILD_NUMBER=$(git log -1 --format=%%H)
echo "##teamcity[buildNumber '${BUILD_NUMBER}']"
`,
	}
}

func tagTriggerMethodStep() teamcity.Step {
	return teamcity.Step{
		Name: StepTagTriggerMethod,
		Script: `#!/bin/bash
TRIGGERED_BY_USERNAME=%teamcity.build.triggeredBy.username%

if [[ "$TRIGGERED_BY_USERNAME" = "n/a" ]] ; then
    echo "Build was triggered as part of automated testing on the schedule"
    echo "##teamcity[addBuildTag 'cron-trigger']"
    exit 0
fi

echo "Build was triggered manually by $TRIGGERED_BY_USERNAME"
echo "##teamcity[addBuildTag 'manual-trigger']"
`,
	}
}

func configureGoEnvStep() teamcity.Step {
	return teamcity.Step{
		Name: StepConfigureGoEnv,
		Script: `#!/bin/bash
set -euo pipefail
echo "##teamcity[setParameter name='env.GOPATH' value='$(go env GOPATH)']"
echo "##teamcity[setParameter name='env.PATH' value='${PATH}:$(go env GOPATH)/bin']"
go mod download
go install gotest.tools/gotestsum@latest
`,
	}
}

func downloadTerraformStep() teamcity.Step {
	return teamcity.Step{
		Name: StepDownloadTerraform,
		Script: `#!/bin/bash
set -euo pipefail
mkdir -p tools
wget -q -O tf.zip "https://releases.hashicorp.com/terraform/%env.TERRAFORM_CORE_VERSION%/terraform_%env.TERRAFORM_CORE_VERSION%_linux_amd64.zip"
unzip -o tf.zip -d tools
rm tf.zip
./tools/terraform version
`,
	}
}

func runAcceptanceTestsStep() teamcity.Step {
	return teamcity.Step{
		Name: StepRunAcceptanceTests,
		Script: `#!/bin/bash
set -euo pipefail
export TEST_COUNT=$(go test "%PACKAGE_PATH%" -list="%TEST_PREFIX%" | grep -c "^%TEST_PREFIX%" || true)
echo "Found ${TEST_COUNT} tests that match the given test prefix %TEST_PREFIX%"
if [ "${TEST_COUNT}" -le "0" ]; then
    echo "Skipping test execution; no tests to run"
    exit 0
fi

echo "Compiling test binary"
go test -c "%PACKAGE_PATH%" -o test-binary

echo "Starting tests"
go tool test2json -t ./test-binary -test.v -test.run="%TEST_PREFIX%" -test.timeout="%TIMEOUT%h" -test.parallel="%PARALLELISM%"
`,
	}
}

func uploadDebugLogsStep() teamcity.Step {
	return teamcity.Step{
		Name: StepUploadDebugLogs,
		Script: `#!/bin/bash
set -euo pipefail
if ! ls debug*.txt >/dev/null 2>&1; then
    echo "No debug logs to upload"
    exit 0
fi

echo "$GOOGLE_CREDENTIALS_GCS" > gcs-credentials.json
gcloud auth activate-service-account --key-file=gcs-credentials.json
rm gcs-credentials.json

DATE=$(date +%%Y-%%m-%%d)
gsutil -m cp debug*.txt "gs://teamcity-logs/%PROVIDER_NAME%/${DATE}/%teamcity.build.id%/"
`,
	}
}

func archiveArtifactsStep() teamcity.Step {
	return teamcity.Step{
		Name: StepArchiveArtifacts,
		Script: `#!/bin/bash
set -euo pipefail
ARTIFACT_SIZE_LIMIT_MB=5000
SIZE=$(du -cm debug*.txt 2>/dev/null | tail -1 | cut -f1 || echo 0)
if [ "${SIZE}" -lt "${ARTIFACT_SIZE_LIMIT_MB}" ]; then
    echo "Debug logs total ${SIZE}MB; leaving them as individual artifacts"
    exit 0
fi

echo "Debug logs total ${SIZE}MB; archiving"
tar -czf debug-logs.tar.gz debug*.txt
rm debug*.txt
`,
	}
}

func runSweepersStep() teamcity.Step {
	return teamcity.Step{
		Name: StepRunSweepers,
		Script: `#!/bin/bash
set -euo pipefail
go test -v "%PACKAGE_PATH%" -sweep="%SWEEPER_REGIONS%" -sweep-allow-failures -sweep-run="%SWEEP_RUN%" -timeout 30m
`,
	}
}

func vcrSetupStep() teamcity.Step {
	return teamcity.Step{
		Name: StepVcrSetup,
		Script: `#!/bin/bash
set -euo pipefail
mkdir -p "$VCR_PATH"
gsutil -m cp "gs://${VCR_BUCKET_NAME}/%PROVIDER_NAME%/fixtures/*" "$VCR_PATH" || echo "No cassettes to restore"
`,
	}
}

func vcrRunTestsStep() teamcity.Step {
	return teamcity.Step{
		Name: StepVcrRunTests,
		Script: `#!/bin/bash
set -euo pipefail
go test $TEST -v $TESTARGS -timeout="%TIMEOUT%h" -test.parallel="%PARALLELISM%" -ldflags="-X=github.com/hashicorp/terraform-provider-%PROVIDER_NAME%/version.ProviderVersion=acc"
`,
	}
}

func vcrSaveCassettesStep() teamcity.Step {
	return teamcity.Step{
		Name: StepVcrSaveCassettes,
		Script: `#!/bin/bash
set -euo pipefail
gsutil -m cp "$VCR_PATH"/* "gs://${VCR_BUCKET_NAME}/%PROVIDER_NAME%/fixtures/"
`,
	}
}
