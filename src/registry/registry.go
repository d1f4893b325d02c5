// Package registry holds the static service package tables for each provider channel.
// The tables are HCL files embedded in the binary; package paths are templates that
// resolve against the provider name, so one table shape serves both channels.
package registry

import (
	"embed"
	"errors"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

const (
	// ProviderGa is the provider name built from the GA release channel.
	ProviderGa = "google"
	// ProviderBeta is the provider name built from the Beta release channel.
	ProviderBeta = "google-beta"
)

var (
	ErrDuplicatePackage = errors.New("duplicate package")
	ErrUnknownProvider  = errors.New("unknown provider")
	ErrNotFound         = errors.New("package not found")
)

//go:embed data/*.hcl
var tables embed.FS

var tableFiles = map[string]string{
	ProviderGa:   "data/services_ga.hcl",
	ProviderBeta: "data/services_beta.hcl",
}

// Package is one service package of the provider: a directory of resources whose
// acceptance tests run as a single build.
type Package struct {
	Name        string
	DisplayName string
	Path        string

	// Overrides; zero means "use the pipeline default".
	Parallelism    int
	TimeoutMinutes int
}

// Registry is the immutable package table for one provider.
type Registry struct {
	provider    string
	sweeperPath string
	packages    map[string]Package
	names       []string
}

// fileRoot is the decoded shape of a table file.
type fileRoot struct {
	SweeperPath string          `hcl:"sweeper_path"`
	Services    []*serviceBlock `hcl:"service,block"`
}

type serviceBlock struct {
	Name           string `hcl:"name,label"`
	DisplayName    string `hcl:"display_name"`
	Path           string `hcl:"path"`
	Parallelism    *int   `hcl:"parallelism,optional"`
	TimeoutMinutes *int   `hcl:"timeout_minutes,optional"`
}

// LoadGa loads the embedded GA table.
func LoadGa() (*Registry, error) {
	return Load(ProviderGa)
}

// LoadBeta loads the embedded Beta table.
func LoadBeta() (*Registry, error) {
	return Load(ProviderBeta)
}

// Load loads the embedded table for the given provider.
func Load(provider string) (*Registry, error) {
	file, ok := tableFiles[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}

	src, err := tables.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read package table %s: %w", file, err)
	}

	return Parse(file, src, provider)
}

// Parse decodes a package table. Any malformed or duplicate entry fails the whole
// table; a partial registry is never returned.
func Parse(filename string, src []byte, provider string) (*Registry, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse package table %s: %w", filename, diags)
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"provider": cty.StringVal(provider),
		},
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(f.Body, evalCtx, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode package table %s: %w", filename, diags)
	}

	r := &Registry{
		provider:    provider,
		sweeperPath: root.SweeperPath,
		packages:    make(map[string]Package, len(root.Services)),
	}

	for _, svc := range root.Services {
		if _, exists := r.packages[svc.Name]; exists {
			return nil, fmt.Errorf("%w: %q in %s", ErrDuplicatePackage, svc.Name, filename)
		}
		if svc.DisplayName == "" || svc.Path == "" {
			return nil, fmt.Errorf("package %q in %s: display_name and path must be set", svc.Name, filename)
		}

		pkg := Package{
			Name:        svc.Name,
			DisplayName: svc.DisplayName,
			Path:        svc.Path,
		}
		if svc.Parallelism != nil {
			pkg.Parallelism = *svc.Parallelism
		}
		if svc.TimeoutMinutes != nil {
			pkg.TimeoutMinutes = *svc.TimeoutMinutes
		}

		r.packages[svc.Name] = pkg
		r.names = append(r.names, svc.Name)
	}

	sort.Strings(r.names)
	return r, nil
}

// Provider returns the provider name this table was resolved against.
func (r *Registry) Provider() string {
	return r.provider
}

// SweeperPath returns the package path that holds the provider's sweepers.
func (r *Registry) SweeperPath() string {
	return r.sweeperPath
}

// Get returns the named package.
func (r *Registry) Get(name string) (Package, error) {
	pkg, ok := r.packages[name]
	if !ok {
		return Package{}, fmt.Errorf("%w: %s/%s", ErrNotFound, r.provider, name)
	}
	return pkg, nil
}

// Names returns all package names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// Packages returns all packages sorted by name.
func (r *Registry) Packages() []Package {
	pkgs := make([]Package, 0, len(r.names))
	for _, name := range r.names {
		pkgs = append(pkgs, r.packages[name])
	}
	return pkgs
}

// Subset returns a registry restricted to the named packages. Unknown names fail.
func (r *Registry) Subset(names []string) (*Registry, error) {
	sub := &Registry{
		provider:    r.provider,
		sweeperPath: r.sweeperPath,
		packages:    make(map[string]Package, len(names)),
	}
	for _, name := range names {
		pkg, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		if _, exists := sub.packages[name]; exists {
			continue
		}
		sub.packages[name] = pkg
		sub.names = append(sub.names, name)
	}
	sort.Strings(sub.names)
	return sub, nil
}

// Len returns the number of packages.
func (r *Registry) Len() int {
	return len(r.names)
}
