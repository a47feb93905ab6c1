package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(strings.NewReader(stdin), &out, &errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, "", args...)
	if err != nil {
		t.Fatalf("rosedb %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv(passphraseEnv, "")
	return dir
}

func TestSetGetDel(t *testing.T) {
	dir := isolate(t)
	file := filepath.Join(dir, "data", "db.json")

	mustRun(t, "--file", file, "set", "name", "meslzy")
	mustRun(t, "--file", file, "set", "count", "3")

	if out := mustRun(t, "--file", file, "get", "name"); out != "meslzy\n" {
		t.Fatalf("get name = %q", out)
	}
	if out := mustRun(t, "--file", file, "get", "count"); out != "3\n" {
		t.Fatalf("get count = %q", out)
	}
	if out := mustRun(t, "--file", file, "has", "name"); out != "true\n" {
		t.Fatalf("has name = %q", out)
	}
	if out := mustRun(t, "--file", file, "keys"); out != "count\nname\n" {
		t.Fatalf("keys = %q", out)
	}

	mustRun(t, "--file", file, "del", "name")
	if out := mustRun(t, "--file", file, "has", "name"); out != "false\n" {
		t.Fatalf("has after del = %q", out)
	}
	if _, err := run(t, "", "--file", file, "get", "name"); err == nil {
		t.Fatal("expected not found error")
	}
	if out := mustRun(t, "--file", file, "get", "name", "--default", "anon"); out != "anon\n" {
		t.Fatalf("get with default = %q", out)
	}
}

func TestSetRawString(t *testing.T) {
	dir := isolate(t)
	file := filepath.Join(dir, "db.json")
	mustRun(t, "--file", file, "set", "--string", "zip", "01234")
	mustRun(t, "--file", file, "set", "obj", `{"a":[1,2]}`)

	if out := mustRun(t, "--file", file, "get", "zip"); out != "01234\n" {
		t.Fatalf("get zip = %q", out)
	}
	if out := mustRun(t, "--file", file, "get", "obj"); out != "{\"a\":[1,2]}\n" {
		t.Fatalf("get obj = %q", out)
	}
}

func TestDumpClearReset(t *testing.T) {
	dir := isolate(t)
	file := filepath.Join(dir, "db.yaml")
	mustRun(t, "--file", file, "set", "name", "rosedb")

	raw, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(raw)) != "name: rosedb" {
		t.Fatalf("file should be YAML, got %q", raw)
	}

	if out := mustRun(t, "--file", file, "dump", "-o", "json"); !strings.Contains(out, `"name": "rosedb"`) {
		t.Fatalf("dump = %q", out)
	}
	if _, err := run(t, "", "--file", file, "dump", "-o", "cson"); err == nil {
		t.Fatal("expected unknown format error")
	}

	mustRun(t, "--file", file, "clear")
	if out := mustRun(t, "--file", file, "keys"); out != "" {
		t.Fatalf("keys after clear = %q", out)
	}
	mustRun(t, "--file", file, "set", "x", "1")
	mustRun(t, "--file", file, "reset")
	if out := mustRun(t, "--file", file, "dump"); strings.TrimSpace(out) != "{}" {
		t.Fatalf("dump after reset = %q", out)
	}
}

func TestShiftEncryption(t *testing.T) {
	dir := isolate(t)
	file := filepath.Join(dir, "db.json")
	mustRun(t, "--file", file, "--encryption", "shift", "set", "secret", "meslzy")

	raw, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "meslzy") {
		t.Fatal("file should be obfuscated")
	}
	if out := mustRun(t, "--file", file, "--encryption", "shift", "get", "secret"); out != "meslzy\n" {
		t.Fatalf("get = %q", out)
	}
	if _, err := run(t, "", "--file", file, "get", "secret"); err == nil {
		t.Fatal("reading a shifted file without encryption should fail")
	}
}

func TestPassphraseEncryption(t *testing.T) {
	dir := isolate(t)
	file := filepath.Join(dir, "db.json")

	t.Setenv(passphraseEnv, "correct horse")
	mustRun(t, "--file", file, "--encryption", "passphrase", "set", "k", "v")
	if out := mustRun(t, "--file", file, "--encryption", "passphrase", "get", "k"); out != "v\n" {
		t.Fatalf("get = %q", out)
	}

	t.Setenv(passphraseEnv, "")
	out, err := run(t, "correct horse\n", "--file", file, "--encryption", "passphrase", "get", "k")
	if err != nil || out != "v\n" {
		t.Fatalf("stdin passphrase: %q, %v", out, err)
	}
	if _, err := run(t, "wrong\n", "--file", file, "--encryption", "passphrase", "get", "k"); err == nil {
		t.Fatal("expected failure with wrong passphrase")
	}
	if _, err := run(t, "", "--file", file, "--encryption", "passphrase", "get", "k"); err == nil {
		t.Fatal("expected failure without passphrase")
	}
}

func TestBoltDocuments(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "store", "rosedb.db")

	mustRun(t, "--bolt", db, "--doc", "alpha", "set", "k", "1")
	mustRun(t, "--bolt", db, "--doc", "beta", "--format", "yaml", "set", "k", "2")

	if out := mustRun(t, "--bolt", db, "--doc", "alpha", "get", "k"); out != "1\n" {
		t.Fatalf("alpha k = %q", out)
	}
	if out := mustRun(t, "--bolt", db, "--doc", "beta", "--format", "yaml", "get", "k"); out != "2\n" {
		t.Fatalf("beta k = %q", out)
	}
	if out := mustRun(t, "--bolt", db, "docs"); out != "alpha\nbeta\n" {
		t.Fatalf("docs = %q", out)
	}
	if _, err := run(t, "", "docs"); err == nil {
		t.Fatal("docs without --bolt should fail")
	}
}

func TestConfigFile(t *testing.T) {
	dir := isolate(t)
	file := filepath.Join(dir, "conf.toml")
	cfg := "[store]\nfile = \"" + filepath.Join(dir, "from-config.json") + "\"\n[log]\nlevel = \"error\"\n"
	if err := os.WriteFile(file, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	mustRun(t, "--config", file, "set", "a", "b")
	if _, err := os.Stat(filepath.Join(dir, "from-config.json")); err != nil {
		t.Fatalf("config file location not used: %v", err)
	}

	if _, err := run(t, "", "--config", file, "--log-level", "chatty", "keys"); err == nil {
		t.Fatal("expected validation error for bad log level")
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		raw  bool
		want any
	}{
		{"meslzy", false, "meslzy"},
		{`"quoted"`, false, "quoted"},
		{"true", false, true},
		{"1.5", false, 1.5},
		{"null", false, nil},
		{"true", true, "true"},
	}
	for _, tt := range tests {
		if got := parseValue(tt.in, tt.raw); got != tt.want {
			t.Errorf("parseValue(%q, %v) = %#v, want %#v", tt.in, tt.raw, got, tt.want)
		}
	}
}
