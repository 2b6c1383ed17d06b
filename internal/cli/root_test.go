package cli

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/matzehuels/cascade/pkg/buildinfo"
)

func TestRootCommandSubcommands(t *testing.T) {
	root := New(os.Stderr, LogInfo).RootCommand()

	want := []string{"render", "layout", "serve", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("--config flag missing")
	}
}

func TestVersionOutput(t *testing.T) {
	root := New(os.Stderr, LogInfo).RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--version"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), buildinfo.Version) {
		t.Errorf("version output = %q", out.String())
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			root := New(os.Stderr, LogInfo).RootCommand()
			var out bytes.Buffer
			root.SetOut(&out)
			root.SetArgs([]string{"completion", shell})
			if err := root.Execute(); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(out.String(), appName) {
				t.Errorf("%s completion does not mention %s", shell, appName)
			}
		})
	}

	root := New(os.Stderr, LogInfo).RootCommand()
	root.SetArgs([]string{"completion", "tcsh"})
	root.SetErr(&bytes.Buffer{})
	if err := root.Execute(); err == nil {
		t.Error("unsupported shell should fail")
	}
}
