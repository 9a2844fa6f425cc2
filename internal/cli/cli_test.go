package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd("test")
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPipelineCommands(t *testing.T) {
	dir := t.TempDir()
	if _, err := execute(t, "init", "--root", dir); err != nil {
		t.Fatalf("init: %v", err)
	}
	for _, name := range []string{"Inbox", "Needs_Action", "Plans", "Done", "Archive", "Dashboard.md"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("init did not create %s: %v", name, err)
		}
	}

	task := filepath.Join(dir, "Needs_Action", "write_docs.md")
	if err := os.WriteFile(task, []byte("Write the docs.\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, "pending", "--root", dir)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if !strings.Contains(out, "- write_docs.md") {
		t.Fatalf("pending output:\n%s", out)
	}

	if _, err := execute(t, "plan", "--root", dir); err != nil {
		t.Fatalf("plan: %v", err)
	}
	plan := filepath.Join(dir, "Plans", "Plan_write_docs.md")
	if _, err := os.Stat(plan); err != nil {
		t.Fatalf("plan missing: %v", err)
	}

	if _, err := execute(t, "close", "--ready", "--root", dir); err != nil {
		t.Fatalf("close --ready: %v", err)
	}
	if _, err := os.Stat(plan); err != nil {
		t.Fatalf("unticked plan closed by --ready: %v", err)
	}
	if _, err := execute(t, "close", "Plan_write_docs.md", "--root", dir); err != nil {
		t.Fatalf("close: %v", err)
	}
	archived, _ := filepath.Glob(filepath.Join(dir, "Archive", "Plan_write_docs_completed_*.md"))
	if len(archived) != 1 {
		t.Fatalf("archive = %v", archived)
	}

	if _, err := execute(t, "log", "--root", dir, "reviewed", "the", "docs"); err != nil {
		t.Fatalf("log: %v", err)
	}
	dashboard, err := os.ReadFile(filepath.Join(dir, "Dashboard.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(dashboard), "reviewed the docs") {
		t.Fatalf("dashboard missing entry:\n%s", dashboard)
	}
}

func TestMissingRecordExitsWithFailure(t *testing.T) {
	dir := t.TempDir()
	if _, err := execute(t, "init", "--root", dir); err != nil {
		t.Fatalf("init: %v", err)
	}
	out, err := execute(t, "plan", "ghost.md", "--root", dir)
	if !errors.Is(err, ErrFailed) {
		t.Fatalf("plan error = %v, want ErrFailed", err)
	}
	if !strings.Contains(out, "ghost.md not found") {
		t.Fatalf("output:\n%s", out)
	}
	if _, err := execute(t, "sweep", "--root", dir); err != nil {
		t.Fatalf("empty sweep: %v", err)
	}
}

func TestSkillsListsBuiltins(t *testing.T) {
	out, err := execute(t, "skills")
	if err != nil {
		t.Fatalf("skills: %v", err)
	}
	for _, id := range []string{"close-plan", "create-plan", "list-pending", "update-activity"} {
		if !strings.Contains(out, id) {
			t.Fatalf("skills output missing %s:\n%s", id, out)
		}
	}
}
