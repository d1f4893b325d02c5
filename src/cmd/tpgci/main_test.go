package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tpgci/src/broker"
	"tpgci/src/config"
	"tpgci/src/contracts"
	"tpgci/src/logger"
	"tpgci/src/render"
	"tpgci/src/store"
	"tpgci/src/teamcity"
	"tpgci/src/validate"
)

func testConfig() *config.Config {
	return &config.Config{
		Generator: config.Generator{
			Environment:          config.EnvironmentPublic,
			RootProjectID:        "TerraformProviderGoogle",
			TerraformCoreVersion: "1.8.3",
		},
		Context: config.Placeholders(),
	}
}

func mustGenerate(t *testing.T, cfg *config.Config) (*teamcity.Project, render.ConfigSet) {
	t.Helper()
	root, cs, err := generate(context.Background(), cfg, &logger.SilentLogger{})
	if err != nil {
		t.Fatalf("generate() unexpected error: %v", err)
	}
	return root, cs
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantHint string
	}{
		{name: "environment", err: fmt.Errorf("%w: %q", config.ErrUnknownEnvironment, "staging"), wantHint: "TPGCI_ENVIRONMENT"},
		{name: "violations", err: &validate.Error{Violations: []validate.Violation{{Rule: validate.RuleCycle, Subject: "A", Message: "cycle"}}}, wantHint: "tpgci validate"},
		{name: "no snapshot", err: fmt.Errorf("failed: %w", store.ErrNotFound), wantHint: "snapshot save"},
		{name: "out of date", err: errOutOfDate, wantHint: "tpgci generate"},
		{name: "foreign file", err: fmt.Errorf("%w: ROOT.yaml", render.ErrForeignFile), wantHint: "--out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapError(tt.err)
			var userErr *UserError
			if !errors.As(got, &userErr) {
				t.Fatalf("WrapError() = %T, want *UserError", got)
			}
			if !strings.Contains(userErr.Hint, tt.wantHint) {
				t.Errorf("Hint = %q, want it to mention %q", userErr.Hint, tt.wantHint)
			}
			if !errors.Is(got, tt.err) {
				t.Error("wrapped error does not unwrap to the original")
			}
		})
	}
}

func TestWrapErrorPassThrough(t *testing.T) {
	if WrapError(nil) != nil {
		t.Error("WrapError(nil) should be nil")
	}

	plain := errors.New("boom")
	if got := WrapError(plain); got != plain {
		t.Errorf("WrapError(plain) = %v, want it unchanged", got)
	}

	userErr := &UserError{Message: "already friendly"}
	if got := WrapError(userErr); got != userErr {
		t.Error("WrapError() rewrapped a *UserError")
	}
}

func TestUserErrorFormat(t *testing.T) {
	err := &UserError{Message: "Bad", Hint: "Fix it", Err: errors.New("cause")}
	want := "Bad\n\nHint: Fix it\n\nDetails: cause"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWriteFilesCheck(t *testing.T) {
	_, cs := mustGenerate(t, testConfig())
	dir := t.TempDir()
	log := &logger.SilentLogger{}

	if err := writeFiles(cs, dir, true, log); !errors.Is(err, errOutOfDate) {
		t.Fatalf("check on empty dir = %v, want errOutOfDate", err)
	}
	if err := writeFiles(cs, dir, false, log); err != nil {
		t.Fatalf("writeFiles() unexpected error: %v", err)
	}
	if err := writeFiles(cs, dir, true, log); err != nil {
		t.Errorf("check after write = %v, want nil", err)
	}

	workflow := filepath.Join(dir, "ci.yaml")
	if err := os.WriteFile(workflow, []byte("on: push\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := writeFiles(cs, dir, true, log); err != nil {
		t.Errorf("check with a hand-written yaml = %v, want nil", err)
	}
	if err := writeFiles(cs, dir, false, log); err != nil {
		t.Fatalf("writeFiles() unexpected error: %v", err)
	}
	if _, err := os.Stat(workflow); err != nil {
		t.Errorf("writeFiles() removed a hand-written file: %v", err)
	}

	onDisk, err := render.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() unexpected error: %v", err)
	}
	if onDisk.Digest() != cs.Digest() {
		t.Error("files on disk differ from the generated set")
	}
}

func TestGenerateRejectsUnknownFeaturePackage(t *testing.T) {
	cfg := testConfig()
	cfg.Generator.FeatureBranch = "FEATURE-BRANCH-major-release-6.0.0"
	cfg.Generator.FeatureBranchPackages = []string{"no-such-package"}

	_, _, err := generate(context.Background(), cfg, &logger.SilentLogger{})
	if err == nil {
		t.Fatal("generate() expected error for unknown package")
	}
	var userErr *UserError
	if !errors.As(WrapError(err), &userErr) {
		t.Errorf("WrapError() = %v, want *UserError", err)
	}
}

func TestShowBuildTypeMasksSecrets(t *testing.T) {
	cfg := testConfig()
	cfg.Context.Ga.Credentials = "super-secret-json"
	root, _ := mustGenerate(t, cfg)

	var pkg *teamcity.BuildType
	for _, bt := range root.AllBuildTypes() {
		if bt.Kind == teamcity.KindPackage && bt.Params.Value("env.GOOGLE_CREDENTIALS") == "super-secret-json" {
			pkg = bt
			break
		}
	}
	if pkg == nil {
		t.Fatal("no GA package build found")
	}

	for _, asJSON := range []bool{false, true} {
		var buf bytes.Buffer
		if err := showBuildType(&buf, root, pkg.ID, asJSON); err != nil {
			t.Fatalf("showBuildType(json=%t) unexpected error: %v", asJSON, err)
		}
		if strings.Contains(buf.String(), "super-secret-json") {
			t.Errorf("showBuildType(json=%t) leaked a secret", asJSON)
		}
		if !strings.Contains(buf.String(), pkg.ID) {
			t.Errorf("showBuildType(json=%t) output lacks the build id", asJSON)
		}
	}

	if pkg.Params.Value("env.GOOGLE_CREDENTIALS") != "super-secret-json" {
		t.Error("showBuildType() modified the tree")
	}
}

func TestShowBuildTypeUnknown(t *testing.T) {
	root, _ := mustGenerate(t, testConfig())
	err := showBuildType(&bytes.Buffer{}, root, "NOPE", false)
	if !errors.Is(err, teamcity.ErrNotFound) {
		t.Errorf("showBuildType() = %v, want ErrNotFound", err)
	}
}

func TestPrintTree(t *testing.T) {
	root, _ := mustGenerate(t, testConfig())
	var buf bytes.Buffer
	printTree(&buf, root, 0)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(root.AllProjects()) {
		t.Errorf("printTree() printed %d lines, want %d", len(lines), len(root.AllProjects()))
	}
	if !strings.HasPrefix(lines[0], root.ID) {
		t.Errorf("first line = %q, want root project", lines[0])
	}
}

func resolvedConfig() *config.Config {
	cfg := testConfig()
	cfg.Context.Ga.Credentials = "super-secret-json"
	cfg.Context.Beta.Credentials = "super-secret-json"
	return cfg
}

func TestPublishAndFetch(t *testing.T) {
	_, cs := mustGenerate(t, testConfig())
	b := broker.NewInMemoryBroker()
	defer b.Close()
	log := &logger.SilentLogger{}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	digest, err := publish(ctx, b, testConfig(), time.Date(2024, 5, 1, 4, 0, 0, 0, time.UTC), log)
	if err != nil {
		t.Fatalf("publish() unexpected error: %v", err)
	}
	if digest != cs.Digest() {
		t.Errorf("publish() digest = %s, want %s", digest, cs.Digest())
	}

	dir := t.TempDir()
	if err := fetch(ctx, b, "public", dir, log); err != nil {
		t.Fatalf("fetch() unexpected error: %v", err)
	}
	got, err := render.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() unexpected error: %v", err)
	}
	if got.Digest() != cs.Digest() {
		t.Error("fetched files differ from the published set")
	}
}

func TestPublishNeverCarriesResolvedSecrets(t *testing.T) {
	b := broker.NewInMemoryBroker()
	defer b.Close()
	ctx := context.Background()

	digest, err := publish(ctx, b, resolvedConfig(), time.Now(), &logger.SilentLogger{})
	if err != nil {
		t.Fatalf("publish() unexpected error: %v", err)
	}
	_, placeholders := mustGenerate(t, testConfig())
	if digest != placeholders.Digest() {
		t.Error("publish() did not render placeholder context parameters")
	}

	for _, topic := range []string{contracts.TopicConfigFiles, contracts.TopicConfigManifests} {
		msgs, err := b.ReadAll(ctx, topic)
		if err != nil {
			t.Fatalf("ReadAll(%s) unexpected error: %v", topic, err)
		}
		for _, msg := range msgs {
			if bytes.Contains(msg.Value, []byte("super-secret-json")) {
				t.Fatalf("record %s on %s carries a resolved secret", msg.Key, topic)
			}
		}
	}
}

func TestSaveSnapshotNeverCarriesResolvedSecrets(t *testing.T) {
	st := store.NewInMemoryStore()
	ctx := context.Background()

	if _, err := saveSnapshot(ctx, st, resolvedConfig(), time.Now(), &logger.SilentLogger{}); err != nil {
		t.Fatalf("saveSnapshot() unexpected error: %v", err)
	}
	snap, err := st.LatestSnapshot(ctx, "public")
	if err != nil {
		t.Fatalf("LatestSnapshot() unexpected error: %v", err)
	}
	for name, body := range snap.Files {
		if bytes.Contains(body, []byte("super-secret-json")) {
			t.Fatalf("snapshot file %s carries a resolved secret", name)
		}
	}
}

func TestShareableKeepsCallerConfig(t *testing.T) {
	cfg := resolvedConfig()
	out := shareable(cfg)
	if out.Context.Ga.Credentials == "super-secret-json" {
		t.Error("shareable() kept the resolved credentials")
	}
	if cfg.Context.Ga.Credentials != "super-secret-json" {
		t.Error("shareable() modified its argument")
	}
	if out.Generator.RootProjectID != cfg.Generator.RootProjectID {
		t.Error("shareable() dropped generator settings")
	}
}

func TestFetchTimesOutWithoutManifest(t *testing.T) {
	b := broker.NewInMemoryBroker()
	defer b.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := fetch(ctx, b, "public", t.TempDir(), &logger.SilentLogger{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("fetch() = %v, want DeadlineExceeded", err)
	}
}

func TestConnectRequiresBrokers(t *testing.T) {
	_, err := connect(testConfig(), &logger.SilentLogger{})
	var userErr *UserError
	if !errors.As(err, &userErr) || !errors.Is(err, errNoBrokers) {
		t.Errorf("connect() = %v, want *UserError wrapping errNoBrokers", err)
	}
}

func TestOpenStoreRequiresDSN(t *testing.T) {
	_, err := openStore(context.Background(), testConfig())
	if !errors.Is(err, errNoDatabase) {
		t.Errorf("openStore() = %v, want errNoDatabase", err)
	}
}

func TestSaveAndListSnapshots(t *testing.T) {
	_, cs := mustGenerate(t, testConfig())
	st := store.NewInMemoryStore()
	ctx := context.Background()
	log := &logger.SilentLogger{}
	now := time.Date(2024, 5, 1, 4, 0, 0, 0, time.UTC)

	first, err := saveSnapshot(ctx, st, testConfig(), now, log)
	if err != nil {
		t.Fatalf("saveSnapshot() unexpected error: %v", err)
	}
	again, err := saveSnapshot(ctx, st, testConfig(), now.Add(time.Hour), log)
	if err != nil {
		t.Fatalf("saveSnapshot() unexpected error: %v", err)
	}
	if again.ID != first.ID {
		t.Errorf("identical generation got id %d, want %d", again.ID, first.ID)
	}

	var buf bytes.Buffer
	if err := listSnapshots(ctx, &buf, st, "public", 10); err != nil {
		t.Fatalf("listSnapshots() unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, cs.Digest()) || !strings.Contains(out, "2024-05-01T04:00:00Z") {
		t.Errorf("listSnapshots() output = %q", out)
	}
	if got := strings.Count(strings.TrimSpace(out), "\n"); got != 1 {
		t.Errorf("listSnapshots() listed %d snapshots, want 1", got)
	}

	if err := listSnapshots(ctx, &buf, st, "private", 10); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("listSnapshots(private) = %v, want ErrNotFound", err)
	}
}
