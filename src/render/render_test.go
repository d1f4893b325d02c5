package render

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tpgci/src/config"
	"tpgci/src/projects"
	"tpgci/src/registry"
	"tpgci/src/teamcity"
)

func tree(t *testing.T) *teamcity.Project {
	t.Helper()
	ga, err := registry.LoadGa()
	if err != nil {
		t.Fatalf("LoadGa() unexpected error: %v", err)
	}
	beta, err := registry.LoadBeta()
	if err != nil {
		t.Fatalf("LoadBeta() unexpected error: %v", err)
	}
	root, err := projects.Build(context.Background(), projects.Inputs{
		Context:   config.Placeholders(),
		Generator: config.Generator{Environment: config.EnvironmentPublic, RootProjectID: "TerraformProviderGoogle"},
		Ga:        ga,
		Beta:      beta,
	})
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}
	return root
}

func TestRenderOneFilePerProject(t *testing.T) {
	root := tree(t)
	cs, err := Render(root)
	if err != nil {
		t.Fatalf("Render() unexpected error: %v", err)
	}

	var want []string
	for _, p := range root.AllProjects() {
		want = append(want, FileName(p.ID))
	}
	got := cs.Files()
	if len(got) != len(want) {
		t.Fatalf("len(Files()) = %d, want %d", len(got), len(want))
	}
	for _, name := range want {
		body, ok := cs[name]
		if !ok {
			t.Errorf("missing %s", name)
			continue
		}
		if !bytes.HasPrefix(body, []byte(header)) {
			t.Errorf("%s lacks the generated header", name)
		}
	}
}

func TestRenderDeterministic(t *testing.T) {
	first, err := Render(tree(t))
	if err != nil {
		t.Fatalf("Render() unexpected error: %v", err)
	}
	second, err := Render(tree(t))
	if err != nil {
		t.Fatalf("Render() unexpected error: %v", err)
	}

	if first.Digest() != second.Digest() {
		t.Error("Digest() differs between identical generations")
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Render() not byte-identical (-first +second):\n%s", diff)
	}
}

func TestRenderRoundTrip(t *testing.T) {
	root := tree(t)
	nightly, err := root.FindProject("TERRAFORMPROVIDERGOOGLE_GA_NIGHTLYTESTS")
	if err != nil {
		t.Fatalf("FindProject() unexpected error: %v", err)
	}

	body, err := Project(nightly, "TERRAFORMPROVIDERGOOGLE_GA")
	if err != nil {
		t.Fatalf("Project() unexpected error: %v", err)
	}

	id, parent, bts, err := Decode(body)
	if err != nil {
		t.Fatalf("Decode() unexpected error: %v", err)
	}
	if id != nightly.ID || parent != "TERRAFORMPROVIDERGOOGLE_GA" {
		t.Errorf("Decode() id/parent = %s/%s", id, parent)
	}
	if len(bts) != len(nightly.BuildTypes) {
		t.Fatalf("decoded %d build types, want %d", len(bts), len(nightly.BuildTypes))
	}

	// Params are rendered sorted.
	want := *nightly.BuildTypes[1]
	want.Params = want.Params.Sorted()
	if diff := cmp.Diff(want, bts[1]); diff != "" {
		t.Errorf("decoded build type mismatch (-want +got):\n%s", diff)
	}
}

func gen(body string) []byte {
	return []byte(header + body)
}

func TestWriteAndPlan(t *testing.T) {
	dir := t.TempDir()
	cs := ConfigSet{
		"A.yaml": gen("a: 1\n"),
		"B.yaml": gen("b: 2\n"),
	}

	plan, err := cs.Write(dir)
	if err != nil {
		t.Fatalf("Write() unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"A.yaml", "B.yaml"}, plan.Write); diff != "" {
		t.Errorf("first Write() mismatch (-want +got):\n%s", diff)
	}

	plan, err = cs.Plan(dir)
	if err != nil {
		t.Fatalf("Plan() unexpected error: %v", err)
	}
	if !plan.UpToDate() || len(plan.Unchanged) != 2 {
		t.Errorf("Plan() after Write() = %+v, want up to date", plan)
	}

	// Drop B, modify A: B is removed and A rewritten.
	next := ConfigSet{"A.yaml": gen("a: 3\n")}
	plan, err = next.Write(dir)
	if err != nil {
		t.Fatalf("Write() unexpected error: %v", err)
	}
	want := &Plan{Write: []string{"A.yaml"}, Remove: []string{"B.yaml"}}
	if diff := cmp.Diff(want, plan); diff != "" {
		t.Errorf("second Write() plan mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(filepath.Join(dir, "B.yaml")); !os.IsNotExist(err) {
		t.Error("stale B.yaml was not removed")
	}

	onDisk, err := ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() unexpected error: %v", err)
	}
	if onDisk.Digest() != next.Digest() {
		t.Error("ReadDir() digest differs from written set")
	}
}

func TestWriteKeepsHandWrittenFiles(t *testing.T) {
	dir := t.TempDir()
	workflow := filepath.Join(dir, ".github", "workflows", "ci.yaml")
	if err := os.MkdirAll(filepath.Dir(workflow), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(workflow, []byte("on: push\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cs := ConfigSet{"ROOT.yaml": gen("root: 1\n")}
	plan, err := cs.Write(dir)
	if err != nil {
		t.Fatalf("Write() unexpected error: %v", err)
	}
	if diff := cmp.Diff(&Plan{Write: []string{"ROOT.yaml"}}, plan); diff != "" {
		t.Errorf("Write() plan mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(workflow); err != nil {
		t.Errorf("hand-written workflow was touched: %v", err)
	}

	plan, err = cs.Plan(dir)
	if err != nil {
		t.Fatalf("Plan() unexpected error: %v", err)
	}
	if !plan.UpToDate() {
		t.Errorf("Plan() = %+v, want up to date with a hand-written file present", plan)
	}

	onDisk, err := ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"ROOT.yaml"}, onDisk.Files()); diff != "" {
		t.Errorf("ReadDir() files mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteRefusesToOverwriteHandWrittenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ROOT.yaml")
	if err := os.WriteFile(path, []byte("mine: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cs := ConfigSet{"ROOT.yaml": gen("root: 1\n"), "SUB.yaml": gen("sub: 1\n")}
	plan, err := cs.Write(dir)
	if !errors.Is(err, ErrForeignFile) {
		t.Fatalf("Write() error = %v, want ErrForeignFile", err)
	}
	if diff := cmp.Diff([]string{"ROOT.yaml"}, plan.Foreign); diff != "" {
		t.Errorf("Foreign mismatch (-want +got):\n%s", diff)
	}
	if plan.UpToDate() {
		t.Error("UpToDate() = true with a foreign file in the way")
	}

	body, _ := os.ReadFile(path)
	if string(body) != "mine: true\n" {
		t.Errorf("ROOT.yaml = %q, want it untouched", body)
	}
	if _, err := os.Stat(filepath.Join(dir, "SUB.yaml")); !os.IsNotExist(err) {
		t.Error("Write() wrote files despite the foreign file")
	}
}

func TestReadDirMissing(t *testing.T) {
	cs, err := ReadDir(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("ReadDir() unexpected error: %v", err)
	}
	if len(cs) != 0 {
		t.Errorf("ReadDir() = %v, want empty", cs.Files())
	}
}

func TestDigestSensitivity(t *testing.T) {
	base := ConfigSet{"A.yaml": []byte("ab"), "B.yaml": []byte("c")}
	tests := []struct {
		name string
		cs   ConfigSet
	}{
		{name: "content", cs: ConfigSet{"A.yaml": []byte("ab"), "B.yaml": []byte("d")}},
		{name: "boundary", cs: ConfigSet{"A.yaml": []byte("a"), "B.yaml": []byte("bc")}},
		{name: "rename", cs: ConfigSet{"A.yaml": []byte("ab"), "C.yaml": []byte("c")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.cs.Digest() == base.Digest() {
				t.Error("Digest() did not change")
			}
		})
	}
}

func TestJSON(t *testing.T) {
	out, err := JSON(teamcity.Lock{Resource: "r", Mode: teamcity.WriteLock})
	if err != nil {
		t.Fatalf("JSON() unexpected error: %v", err)
	}
	if !strings.Contains(string(out), `"mode": "writeLock"`) {
		t.Errorf("JSON() = %s", out)
	}
}
