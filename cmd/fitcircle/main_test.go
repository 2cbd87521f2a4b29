package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/tbourn/go-fitcircle/internal/domain"
)

func setupEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DB_PATH", filepath.Join(dir, "fitcircle.db"))
	t.Setenv("STATE_BACKEND", "file")
	t.Setenv("STATE_PATH", filepath.Join(dir, "state"))
	t.Setenv("REMOTE_BACKEND", "sqlite")
	t.Setenv("LOG_LEVEL", "error")
}

// run executes one CLI invocation and returns what it printed.
func run(t *testing.T, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	defer func() { stdout = prev }()

	argv := append([]string{"fitcircle", "--env-file", ""}, args...)
	if err := newRoot().Run(context.Background(), argv); err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return buf.String()
}

func TestCLI_PutThenGet(t *testing.T) {
	setupEnv(t)

	run(t, "put", "--json", `{"name":"Runners","privacy":"public"}`, "groups", "g1")
	id := strings.TrimSpace(run(t, "put", "--json", `{"name":"Walkers"}`, "groups"))
	if id == "" {
		t.Fatalf("add printed no id")
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(run(t, "get", "groups", "g1")), &doc); err != nil {
		t.Fatalf("decode doc: %v", err)
	}
	if doc["id"] != "g1" || doc["name"] != "Runners" {
		t.Fatalf("doc = %v", doc)
	}

	var items []map[string]any
	out := run(t, "get", "--order-by", "name:desc", "groups")
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("decode items: %v", err)
	}
	if len(items) != 2 || items[0]["name"] != "Walkers" || items[1]["name"] != "Runners" {
		t.Fatalf("items = %v", items)
	}
}

func TestCLI_StateAndLogout(t *testing.T) {
	setupEnv(t)

	var st domain.AppState
	if err := json.Unmarshal([]byte(run(t, "state")), &st); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if len(st.Posts) == 0 || st.DarkMode {
		t.Fatalf("expected the default snapshot, got %+v", st)
	}

	if out := run(t, "logout"); !strings.Contains(out, "state cleared") {
		t.Fatalf("logout output = %q", out)
	}
}

func TestCLI_BadPath(t *testing.T) {
	setupEnv(t)
	err := newRoot().Run(context.Background(), []string{"fitcircle", "--env-file", "", "get", "groups", ""})
	if err == nil {
		t.Fatalf("expected an error for an empty segment")
	}
}
