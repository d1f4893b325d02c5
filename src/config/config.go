// Package config resolves the externally supplied values that generation depends on.
//
// Everything is read from the environment with a TPGCI_ prefix. Per-channel secrets
// come in GA, Beta and VCR variants; values shared across the test environments
// exist once.
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

// Environment selects the schedule policy of the CI server the tree is generated for.
type Environment string

const (
	EnvironmentPublic  Environment = "public"
	EnvironmentPrivate Environment = "private"
)

var ErrUnknownEnvironment = errors.New("unknown environment")

// Validate returns ErrUnknownEnvironment for anything but public or private.
func (e Environment) Validate() error {
	switch e {
	case EnvironmentPublic, EnvironmentPrivate:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownEnvironment, string(e))
}

// ChannelSecrets are the values that differ between the GA, Beta and VCR test environments.
type ChannelSecrets struct {
	Credentials          string `env:"CREDENTIALS, required"`
	ServiceAccount       string `env:"SERVICE_ACCOUNT, required"`
	Project              string `env:"PROJECT, required"`
	ProjectNumber        string `env:"PROJECT_NUMBER, required"`
	IdentityUser         string `env:"IDENTITY_USER"`
	MasterBillingAccount string `env:"MASTER_BILLING_ACCOUNT"`
	Org2                 string `env:"ORG_2"`
	ChronicleInstanceID  string `env:"CHRONICLE_INSTANCE_ID"`
	VmwareengineProject  string `env:"VMWAREENGINE_PROJECT"`
}

// AllContextParameters carries every externally supplied value.
type AllContextParameters struct {
	Ga   ChannelSecrets `env:",prefix=GA_"`
	Beta ChannelSecrets `env:",prefix=BETA_"`
	Vcr  ChannelSecrets `env:",prefix=VCR_"`

	BillingAccount  string `env:"BILLING_ACCOUNT, required"`
	BillingAccount2 string `env:"BILLING_ACCOUNT_2"`
	CustID          string `env:"CUST_ID"`
	Org             string `env:"ORG, required"`
	OrgDomain       string `env:"ORG_DOMAIN"`
	Region          string `env:"REGION, default=us-central1"`
	Zone            string `env:"ZONE, default=us-central1-a"`

	// VCR cassette storage.
	InfraProject  string `env:"INFRA_PROJECT"`
	VcrBucketName string `env:"VCR_BUCKET_NAME"`

	// Credentials used to copy debug logs to GCS.
	CredentialsGCS string `env:"CREDENTIALS_GCS"`
}

// AccTestConfiguration is the bundle of values one channel's builds are parameterised with.
type AccTestConfiguration struct {
	BillingAccount       string
	BillingAccount2      string
	Credentials          string
	CustID               string
	IdentityUser         string
	MasterBillingAccount string
	Org                  string
	Org2                 string
	ChronicleInstanceID  string
	OrgDomain            string
	Project              string
	ProjectNumber        string
	Region               string
	ServiceAccount       string
	VmwareengineProject  string
	Zone                 string

	InfraProject   string
	VcrBucketName  string
	CredentialsGCS string
}

func (p AllContextParameters) bundle(ch ChannelSecrets) AccTestConfiguration {
	return AccTestConfiguration{
		BillingAccount:       p.BillingAccount,
		BillingAccount2:      p.BillingAccount2,
		Credentials:          ch.Credentials,
		CustID:               p.CustID,
		IdentityUser:         ch.IdentityUser,
		MasterBillingAccount: ch.MasterBillingAccount,
		Org:                  p.Org,
		Org2:                 ch.Org2,
		ChronicleInstanceID:  ch.ChronicleInstanceID,
		OrgDomain:            p.OrgDomain,
		Project:              ch.Project,
		ProjectNumber:        ch.ProjectNumber,
		Region:               p.Region,
		ServiceAccount:       ch.ServiceAccount,
		VmwareengineProject:  ch.VmwareengineProject,
		Zone:                 p.Zone,
		InfraProject:         p.InfraProject,
		VcrBucketName:        p.VcrBucketName,
		CredentialsGCS:       p.CredentialsGCS,
	}
}

// GaConfig returns the GA channel bundle.
func (p AllContextParameters) GaConfig() AccTestConfiguration {
	return p.bundle(p.Ga)
}

// BetaConfig returns the Beta channel bundle.
func (p AllContextParameters) BetaConfig() AccTestConfiguration {
	return p.bundle(p.Beta)
}

// VcrConfig returns the VCR recording bundle.
func (p AllContextParameters) VcrConfig() AccTestConfiguration {
	return p.bundle(p.Vcr)
}

// Placeholders returns parameters whose values are CI server references
// (%credentialsGa% and so on) instead of literal secrets. Used to render
// or inspect the tree on machines that hold no credentials.
func Placeholders() AllContextParameters {
	channel := func(suffix string) ChannelSecrets {
		ref := func(name string) string { return "%" + name + suffix + "%" }
		return ChannelSecrets{
			Credentials:          ref("credentials"),
			ServiceAccount:       ref("serviceAccount"),
			Project:              ref("project"),
			ProjectNumber:        ref("projectNumber"),
			IdentityUser:         ref("identityUser"),
			MasterBillingAccount: ref("masterBillingAccount"),
			Org2:                 ref("org2"),
			ChronicleInstanceID:  ref("chronicleInstanceId"),
			VmwareengineProject:  ref("vmwareengineProject"),
		}
	}
	return AllContextParameters{
		Ga:              channel("Ga"),
		Beta:            channel("Beta"),
		Vcr:             channel("Vcr"),
		BillingAccount:  "%billingAccount%",
		BillingAccount2: "%billingAccount2%",
		CustID:          "%custId%",
		Org:             "%org%",
		OrgDomain:       "%orgDomain%",
		Region:          "us-central1",
		Zone:            "us-central1-a",
		InfraProject:    "%infraProject%",
		VcrBucketName:   "%vcrBucketName%",
		CredentialsGCS:  "%credentialsGCS%",
	}
}

// Generator holds the settings that shape the generated tree.
type Generator struct {
	Environment   Environment `env:"ENVIRONMENT, default=public"`
	RootProjectID string      `env:"ROOT_PROJECT_ID, default=TerraformProviderGoogle"`

	// Empty uses the builds package default.
	TerraformCoreVersion string `env:"TERRAFORM_CORE_VERSION"`

	// Feature branch testing; empty branch disables the subproject.
	FeatureBranch         string   `env:"FEATURE_BRANCH"`
	FeatureBranchPackages []string `env:"FEATURE_BRANCH_PACKAGES"`
}

// Config holds the application configuration.
type Config struct {
	Generator Generator            `env:",prefix=TPGCI_"`
	Context   AllContextParameters `env:",prefix=TPGCI_"`

	// LogLevel is one of debug, info, error.
	LogLevel string `env:"TPGCI_LOG_LEVEL, default=info"`

	// PostgresDSN enables the snapshot store; empty uses the in-memory store.
	PostgresDSN string `env:"TPGCI_POSTGRES_DSN"`

	// RedpandaBrokers is a comma separated seed broker list for publishing.
	RedpandaBrokers string `env:"TPGCI_REDPANDA_BROKERS"`
}

// Brokers splits RedpandaBrokers into a seed list.
func (c *Config) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.RedpandaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

// LoadFromMap loads configuration from the given key/value pairs instead of the process environment.
func LoadFromMap(ctx context.Context, env map[string]string) (*Config, error) {
	return load(ctx, envconfig.MapLookuper(env))
}

// LoadSettings loads everything except the context parameters, which are filled
// with CI server placeholders. Commands that only inspect the tree use this.
func LoadSettings(ctx context.Context) (*Config, error) {
	return loadSettings(ctx, envconfig.OsLookuper())
}

func loadSettings(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var settings struct {
		Generator       Generator `env:",prefix=TPGCI_"`
		LogLevel        string    `env:"TPGCI_LOG_LEVEL, default=info"`
		PostgresDSN     string    `env:"TPGCI_POSTGRES_DSN"`
		RedpandaBrokers string    `env:"TPGCI_REDPANDA_BROKERS"`
	}
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &settings, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	if err := settings.Generator.Environment.Validate(); err != nil {
		return nil, err
	}

	return &Config{
		Generator:       settings.Generator,
		Context:         Placeholders(),
		LogLevel:        settings.LogLevel,
		PostgresDSN:     settings.PostgresDSN,
		RedpandaBrokers: settings.RedpandaBrokers,
	}, nil
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := cfg.Generator.Environment.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoadFromEnv loads configuration from environment variables and panics on error.
// This is useful for initialization in main() where configuration errors should be fatal.
func MustLoadFromEnv(ctx context.Context) *Config {
	cfg, err := LoadFromEnv(ctx)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}
