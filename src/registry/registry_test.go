package registry

import (
	"errors"
	"sort"
	"strings"
	"testing"
)

func TestLoadEmbeddedTables(t *testing.T) {
	tests := []struct {
		name        string
		provider    string
		minPackages int
		wantSweeper string
	}{
		{name: "ga", provider: ProviderGa, minPackages: 150, wantSweeper: "./google/sweeper"},
		{name: "beta", provider: ProviderBeta, minPackages: 120, wantSweeper: "./google-beta/sweeper"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Load(tt.provider)
			if err != nil {
				t.Fatalf("Load(%q) unexpected error: %v", tt.provider, err)
			}

			if r.Len() < tt.minPackages {
				t.Errorf("Len() = %d, want at least %d", r.Len(), tt.minPackages)
			}
			if r.Provider() != tt.provider {
				t.Errorf("Provider() = %q, want %q", r.Provider(), tt.provider)
			}
			if r.SweeperPath() != tt.wantSweeper {
				t.Errorf("SweeperPath() = %q, want %q", r.SweeperPath(), tt.wantSweeper)
			}

			prefix := "./" + tt.provider + "/services/"
			for _, pkg := range r.Packages() {
				if pkg.Path != prefix+pkg.Name {
					t.Errorf("package %s path = %q, want %q", pkg.Name, pkg.Path, prefix+pkg.Name)
				}
				if pkg.DisplayName == "" {
					t.Errorf("package %s has empty display name", pkg.Name)
				}
			}
		})
	}
}

func TestLoadUnknownProvider(t *testing.T) {
	_, err := Load("google-alpha")
	if !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("Load() error = %v, want ErrUnknownProvider", err)
	}
}

func TestNamesSorted(t *testing.T) {
	r, err := LoadGa()
	if err != nil {
		t.Fatalf("LoadGa() unexpected error: %v", err)
	}

	names := r.Names()
	if !sort.StringsAreSorted(names) {
		t.Error("Names() is not sorted")
	}

	// Returned slice must be a copy.
	names[0] = "mutated"
	if r.Names()[0] == "mutated" {
		t.Error("Names() exposed internal slice")
	}
}

func TestSecurityCenterV2Once(t *testing.T) {
	for _, load := range []func() (*Registry, error){LoadGa, LoadBeta} {
		r, err := load()
		if err != nil {
			t.Fatalf("load unexpected error: %v", err)
		}
		count := 0
		for _, name := range r.Names() {
			if name == "securitycenterv2" {
				count++
			}
		}
		if count != 1 {
			t.Errorf("%s: securitycenterv2 count = %d, want 1", r.Provider(), count)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
		check   func(t *testing.T, r *Registry)
	}{
		{
			name: "template and overrides",
			src: `
sweeper_path = "./${provider}/sweeper"

service "compute" {
  display_name    = "Compute"
  path            = "./${provider}/services/compute"
  parallelism     = 6
  timeout_minutes = 900
}

service "dns" {
  display_name = "Dns"
  path         = "./${provider}/services/dns"
}
`,
			check: func(t *testing.T, r *Registry) {
				compute, err := r.Get("compute")
				if err != nil {
					t.Fatalf("Get(compute) unexpected error: %v", err)
				}
				if compute.Path != "./google-beta/services/compute" {
					t.Errorf("compute path = %q", compute.Path)
				}
				if compute.Parallelism != 6 || compute.TimeoutMinutes != 900 {
					t.Errorf("compute overrides = %d/%d, want 6/900", compute.Parallelism, compute.TimeoutMinutes)
				}
				dns, _ := r.Get("dns")
				if dns.Parallelism != 0 || dns.TimeoutMinutes != 0 {
					t.Errorf("dns overrides should default to zero, got %d/%d", dns.Parallelism, dns.TimeoutMinutes)
				}
				if got := strings.Join(r.Names(), ","); got != "compute,dns" {
					t.Errorf("Names() = %s", got)
				}
			},
		},
		{
			name: "duplicate package",
			src: `
sweeper_path = "./sweeper"
service "securitycenterv2" {
  display_name = "Securitycenterv2"
  path         = "./a"
}
service "securitycenterv2" {
  display_name = "Securitycenterv2"
  path         = "./b"
}
`,
			wantErr: ErrDuplicatePackage,
		},
		{
			name: "missing path",
			src: `
sweeper_path = "./sweeper"
service "dns" {
  display_name = "Dns"
}
`,
		},
		{
			name: "unknown attribute",
			src: `
sweeper_path = "./sweeper"
service "dns" {
  display_name = "Dns"
  path         = "./dns"
  owner        = "team"
}
`,
		},
		{
			name: "syntax error",
			src:  `service "dns" {`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Parse("test.hcl", []byte(tt.src), ProviderBeta)
			if tt.check != nil {
				if err != nil {
					t.Fatalf("Parse() unexpected error: %v", err)
				}
				tt.check(t, r)
				return
			}

			if err == nil {
				t.Fatal("Parse() expected error, got nil")
			}
			if r != nil {
				t.Error("Parse() returned a partial registry alongside an error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetNotFound(t *testing.T) {
	r, err := LoadGa()
	if err != nil {
		t.Fatalf("LoadGa() unexpected error: %v", err)
	}
	if _, err := r.Get("nosuchservice"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestSubset(t *testing.T) {
	r, err := LoadGa()
	if err != nil {
		t.Fatalf("LoadGa() unexpected error: %v", err)
	}

	sub, err := r.Subset([]string{"storage", "compute", "storage"})
	if err != nil {
		t.Fatalf("Subset() unexpected error: %v", err)
	}
	if got := strings.Join(sub.Names(), ","); got != "compute,storage" {
		t.Errorf("Subset().Names() = %s, want compute,storage", got)
	}
	if sub.SweeperPath() != r.SweeperPath() {
		t.Errorf("Subset() sweeper path = %q, want %q", sub.SweeperPath(), r.SweeperPath())
	}

	if _, err := r.Subset([]string{"compute", "bogus"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Subset() with unknown name error = %v, want ErrNotFound", err)
	}
}
