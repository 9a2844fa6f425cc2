package update_activity

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/kingrea/taskflow/internal/config"
	"github.com/kingrea/taskflow/internal/console"
	"github.com/kingrea/taskflow/internal/skill"
)

func newContext(t *testing.T) (*skill.Context, *bytes.Buffer) {
	t.Helper()
	root := t.TempDir()
	if err := config.InitProjectDir(root); err != nil {
		t.Fatalf("InitProjectDir: %v", err)
	}
	cfg, err := config.NewConfig(root)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	var buf bytes.Buffer
	ctx, err := skill.NewContext(cfg, nil, console.New(&buf))
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	return ctx, &buf
}

func TestRunAppendsJoinedMessage(t *testing.T) {
	ctx, _ := newContext(t)
	res, err := New().Run(ctx, []string{"Reviewed", "inbox"})
	if err != nil || res.Status != skill.StatusCompleted {
		t.Fatalf("Run = %+v, %v", res, err)
	}
	data, err := os.ReadFile(ctx.Config.DashboardPath())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "] Reviewed inbox\n") {
		t.Fatalf("dashboard = %q", data)
	}
}

func TestRunRequiresMessage(t *testing.T) {
	ctx, _ := newContext(t)
	if _, err := New().Run(ctx, []string{"  "}); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("err = %v, want ErrEmptyMessage", err)
	}
}

func TestRunReportsMissingSection(t *testing.T) {
	ctx, buf := newContext(t)
	if err := os.WriteFile(ctx.Config.DashboardPath(), []byte("# Dashboard\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := New().Run(ctx, []string{"x"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Status != skill.StatusFailed {
		t.Fatalf("status = %s", res.Status)
	}
	if !strings.Contains(buf.String(), "## Recent Activity") {
		t.Fatalf("output = %q", buf.String())
	}
}
