package main

import "testing"

func TestBuildRootCmd(t *testing.T) {
	t.Setenv("CHATCTL_BASE_URL", "")
	root := buildRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"chat", "models"} {
		if !names[want] {
			t.Fatalf("missing %q subcommand", want)
		}
	}
	f := root.PersistentFlags().Lookup("base-url")
	if f == nil || f.DefValue != "http://127.0.0.1:8000" {
		t.Fatalf("base-url flag: %+v", f)
	}
}

func TestEnvStr(t *testing.T) {
	t.Setenv("CHATCTL_BASE_URL", "http://example.invalid")
	if got := envStr("CHATCTL_BASE_URL", "x"); got != "http://example.invalid" {
		t.Fatalf("got %q", got)
	}
	if got := envStr("CHATCTL_UNSET_12345", "fallback"); got != "fallback" {
		t.Fatalf("got %q", got)
	}
}
