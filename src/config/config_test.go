package config

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sethvargo/go-envconfig"
)

func fullEnv() map[string]string {
	env := map[string]string{
		"TPGCI_BILLING_ACCOUNT": "billing-1",
		"TPGCI_ORG":             "1234",
		"TPGCI_VCR_BUCKET_NAME": "cassettes",
		"TPGCI_CREDENTIALS_GCS": "gcs-creds",
	}
	for _, ch := range []string{"GA", "BETA", "VCR"} {
		lower := strings.ToLower(ch)
		env["TPGCI_"+ch+"_CREDENTIALS"] = "creds-" + lower
		env["TPGCI_"+ch+"_SERVICE_ACCOUNT"] = "sa-" + lower
		env["TPGCI_"+ch+"_PROJECT"] = "proj-" + lower
		env["TPGCI_"+ch+"_PROJECT_NUMBER"] = "num-" + lower
		env["TPGCI_"+ch+"_ORG_2"] = "org2-" + lower
	}
	return env
}

func TestLoadFromMap(t *testing.T) {
	ctx := context.Background()

	t.Run("all required values", func(t *testing.T) {
		cfg, err := LoadFromMap(ctx, fullEnv())
		if err != nil {
			t.Fatalf("LoadFromMap() unexpected error: %v", err)
		}

		if cfg.Context.Ga.Project != "proj-ga" {
			t.Errorf("LoadFromMap() ga project = %v, want %v", cfg.Context.Ga.Project, "proj-ga")
		}
		if cfg.Context.Region != "us-central1" {
			t.Errorf("LoadFromMap() region = %v, want default us-central1", cfg.Context.Region)
		}
		if cfg.Generator.Environment != EnvironmentPublic {
			t.Errorf("LoadFromMap() environment = %v, want %v", cfg.Generator.Environment, EnvironmentPublic)
		}
		if cfg.Generator.TerraformCoreVersion != "" {
			t.Errorf("LoadFromMap() terraform version = %v, want empty so builds use their default", cfg.Generator.TerraformCoreVersion)
		}
		if cfg.LogLevel != "info" {
			t.Errorf("LoadFromMap() log level = %v, want info", cfg.LogLevel)
		}
	})

	t.Run("missing credentials", func(t *testing.T) {
		env := fullEnv()
		delete(env, "TPGCI_BETA_CREDENTIALS")

		_, err := LoadFromMap(ctx, env)
		if err == nil {
			t.Fatal("LoadFromMap() expected error for missing credentials, got nil")
		}
		if !strings.Contains(err.Error(), "TPGCI_BETA_CREDENTIALS") {
			t.Errorf("LoadFromMap() error = %v, want it to name TPGCI_BETA_CREDENTIALS", err)
		}
	})

	t.Run("unknown environment", func(t *testing.T) {
		env := fullEnv()
		env["TPGCI_ENVIRONMENT"] = "staging"

		_, err := LoadFromMap(ctx, env)
		if !errors.Is(err, ErrUnknownEnvironment) {
			t.Errorf("LoadFromMap() error = %v, want ErrUnknownEnvironment", err)
		}
	})

	t.Run("terraform version override", func(t *testing.T) {
		env := fullEnv()
		env["TPGCI_TERRAFORM_CORE_VERSION"] = "1.9.5"

		cfg, err := LoadFromMap(ctx, env)
		if err != nil {
			t.Fatalf("LoadFromMap() unexpected error: %v", err)
		}
		if cfg.Generator.TerraformCoreVersion != "1.9.5" {
			t.Errorf("LoadFromMap() terraform version = %v, want 1.9.5", cfg.Generator.TerraformCoreVersion)
		}
	})

	t.Run("feature branch packages", func(t *testing.T) {
		env := fullEnv()
		env["TPGCI_FEATURE_BRANCH"] = "FEATURE-BRANCH-major-release-6.0.0"
		env["TPGCI_FEATURE_BRANCH_PACKAGES"] = "compute,container"

		cfg, err := LoadFromMap(ctx, env)
		if err != nil {
			t.Fatalf("LoadFromMap() unexpected error: %v", err)
		}
		if got := strings.Join(cfg.Generator.FeatureBranchPackages, "|"); got != "compute|container" {
			t.Errorf("LoadFromMap() feature packages = %v, want compute|container", got)
		}
	})
}

func TestChannelBundles(t *testing.T) {
	cfg, err := LoadFromMap(context.Background(), fullEnv())
	if err != nil {
		t.Fatalf("LoadFromMap() unexpected error: %v", err)
	}
	p := cfg.Context

	tests := []struct {
		name    string
		bundle  AccTestConfiguration
		project string
		creds   string
		org2    string
	}{
		{name: "ga", bundle: p.GaConfig(), project: "proj-ga", creds: "creds-ga", org2: "org2-ga"},
		{name: "beta", bundle: p.BetaConfig(), project: "proj-beta", creds: "creds-beta", org2: "org2-beta"},
		{name: "vcr", bundle: p.VcrConfig(), project: "proj-vcr", creds: "creds-vcr", org2: "org2-vcr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.bundle.Project != tt.project {
				t.Errorf("Project = %v, want %v", tt.bundle.Project, tt.project)
			}
			if tt.bundle.Credentials != tt.creds {
				t.Errorf("Credentials = %v, want %v", tt.bundle.Credentials, tt.creds)
			}
			if tt.bundle.Org2 != tt.org2 {
				t.Errorf("Org2 = %v, want %v", tt.bundle.Org2, tt.org2)
			}
			// Shared values are identical across channels.
			if tt.bundle.BillingAccount != "billing-1" || tt.bundle.Org != "1234" {
				t.Errorf("shared values = %v/%v, want billing-1/1234", tt.bundle.BillingAccount, tt.bundle.Org)
			}
			if tt.bundle.VcrBucketName != "cassettes" || tt.bundle.CredentialsGCS != "gcs-creds" {
				t.Errorf("shared storage values = %v/%v", tt.bundle.VcrBucketName, tt.bundle.CredentialsGCS)
			}
		})
	}
}

func TestLoadSettingsUsesPlaceholders(t *testing.T) {
	cfg, err := loadSettings(context.Background(), envconfig.MapLookuper(map[string]string{
		"TPGCI_ENVIRONMENT":      "private",
		"TPGCI_REDPANDA_BROKERS": "localhost:9092, localhost:9093,",
	}))
	if err != nil {
		t.Fatalf("loadSettings() unexpected error: %v", err)
	}

	if cfg.Generator.Environment != EnvironmentPrivate {
		t.Errorf("environment = %v, want private", cfg.Generator.Environment)
	}
	if cfg.Context.Ga.Credentials != "%credentialsGa%" {
		t.Errorf("ga credentials = %v, want placeholder", cfg.Context.Ga.Credentials)
	}
	if got := strings.Join(cfg.Brokers(), ","); got != "localhost:9092,localhost:9093" {
		t.Errorf("Brokers() = %v", got)
	}
}

func TestEnvironmentValidate(t *testing.T) {
	tests := []struct {
		env     Environment
		wantErr bool
	}{
		{EnvironmentPublic, false},
		{EnvironmentPrivate, false},
		{"", true},
		{"PUBLIC", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.env), func(t *testing.T) {
			err := tt.env.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMustLoadFromEnvPanics(t *testing.T) {
	t.Setenv("TPGCI_ENVIRONMENT", "nowhere")

	defer func() {
		if r := recover(); r == nil {
			t.Error("MustLoadFromEnv() expected panic, got none")
		}
	}()
	MustLoadFromEnv(context.Background())
}
