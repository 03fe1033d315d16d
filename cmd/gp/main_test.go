package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := runCmd(t, "version")
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if !strings.Contains(out, "gp dev") {
		t.Errorf("expected output to contain 'gp dev', got: %s", out)
	}
	if !strings.Contains(out, "commit: none") {
		t.Errorf("expected output to contain 'commit: none', got: %s", out)
	}
}

func TestVersionCmdWithCustomValues(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, Date
	Version, Commit, Date = "1.0.0", "abc123", "2026-01-01"
	defer func() { Version, Commit, Date = origVersion, origCommit, origDate }()

	out, err := runCmd(t, "version")
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if !strings.Contains(out, "gp 1.0.0") {
		t.Errorf("expected output to contain 'gp 1.0.0', got: %s", out)
	}
	if !strings.Contains(out, "commit: abc123") {
		t.Errorf("expected output to contain 'commit: abc123', got: %s", out)
	}
	if !strings.Contains(out, "built: 2026-01-01") {
		t.Errorf("expected output to contain 'built: 2026-01-01', got: %s", out)
	}
}

func TestRootCmdHelp(t *testing.T) {
	out, err := runCmd(t, "--help")
	if err != nil {
		t.Fatalf("help command failed: %v", err)
	}
	for _, want := range []string{"Gangplank", "serve", "db", "template", "assign", "progress", "rules", "notify"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected help output to contain %q, got: %s", want, out)
		}
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	cases := []struct {
		parent string
		subs   []string
	}{
		{"template", []string{"create", "list", "show", "add-item", "delete"}},
		{"assign", []string{"create", "bulk", "list", "show", "revoke"}},
		{"progress", []string{"show", "complete", "uncomplete", "verify"}},
		{"rules", []string{"add", "list", "delete", "run"}},
		{"notify", []string{"list", "read"}},
		{"db", []string{"init", "reset"}},
	}

	root := newRootCmd()
	for _, tc := range cases {
		parent := findCmd(t, root, tc.parent)
		for _, sub := range tc.subs {
			if !hasSub(parent, sub) {
				t.Errorf("%s: missing subcommand %q", tc.parent, sub)
			}
		}
	}
}

func findCmd(t *testing.T, root *cobra.Command, name string) *cobra.Command {
	t.Helper()
	for _, c := range root.Commands() {
		if c.Name() == name {
			return c
		}
	}
	t.Fatalf("command %q not registered", name)
	return nil
}

func hasSub(parent *cobra.Command, name string) bool {
	for _, c := range parent.Commands() {
		if c.Name() == name {
			return true
		}
	}
	return false
}

func TestUnknownCommandFails(t *testing.T) {
	if _, err := runCmd(t, "nonsense"); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestExecuteExitCodes(t *testing.T) {
	ok := newRootCmd()
	ok.SetOut(new(bytes.Buffer))
	ok.SetArgs([]string{"version"})
	if code := execute(ok); code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}

	bad := newRootCmd()
	bad.SetOut(new(bytes.Buffer))
	bad.SetErr(new(bytes.Buffer))
	bad.SetArgs([]string{"nonsense"})
	if code := execute(bad); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
}
