package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phobologic/archmap/internal/config"
	"github.com/phobologic/archmap/internal/model"
	"github.com/phobologic/archmap/internal/report"
)

func writeTestFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func createSampleProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeTestFile(t, dir, "src/api/client.ts", `import { formatDate } from "../utils/format";

export async function fetchUser(id: string) {
  const res = await fetch("/users/" + id);
  return formatDate(res);
}
`)
	writeTestFile(t, dir, "src/utils/format.ts", `export function formatDate(d) {
  return d && d.toString();
}
`)
	writeTestFile(t, dir, "src/components/Header.tsx", `import React from "react";
import { fetchUser } from "../api/client";

export function Header() {
  return <div>{fetchUser ? "a" : "b"}</div>;
}
`)
	return dir
}

func sampleArchitecture() *model.Architecture {
	return &model.Architecture{
		Name: "sample",
		Modules: []model.ModuleRecord{
			{Path: "src/api/client.ts", Name: "client", Complexity: 3, Size: 10},
			{Path: "src/core/engine.ts", Name: "engine", Complexity: 40, Size: 20},
		},
		Layers: map[string]model.Layer{
			"src/api/client.ts":  model.LayerAPI,
			"src/core/engine.ts": model.LayerBusinessLogic,
		},
	}
}

func TestRunBasic(t *testing.T) {
	t.Parallel()
	dir := createSampleProject(t)
	out := filepath.Join(t.TempDir(), "out")

	var stdout, stderr bytes.Buffer
	if err := run([]string{dir, "-o", out}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	for _, name := range []string{
		report.DiagramFile, report.MatrixFile, report.ComplexityFile, report.LayersFile, report.ModelFile,
	} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
		}
	}

	summary := stdout.String()
	if !strings.Contains(summary, "archmap:") {
		t.Errorf("missing summary header:\n%s", summary)
	}
	if !strings.Contains(summary, "3 modules") {
		t.Errorf("expected 3 modules in summary:\n%s", summary)
	}
	if !strings.Contains(summary, "wrote "+filepath.Join(out, report.DiagramFile)) {
		t.Errorf("summary should list written files:\n%s", summary)
	}

	diagram, _ := os.ReadFile(filepath.Join(out, report.DiagramFile))
	if !strings.Contains(string(diagram), "flowchart LR") {
		t.Errorf("diagram missing flowchart header:\n%s", diagram)
	}
}

func TestRunStdout(t *testing.T) {
	t.Parallel()
	dir := createSampleProject(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--stdout", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	out := stdout.String()
	if !strings.HasPrefix(out, "project: ") {
		t.Errorf("expected TOON output, got:\n%s", out)
	}
	if !strings.Contains(out, "modules[3]") {
		t.Errorf("expected 3 modules, got:\n%s", out)
	}
	if !strings.Contains(out, "src/api/client.ts,client,API Layer,") {
		t.Errorf("client should be in the API layer:\n%s", out)
	}
	if !strings.Contains(out, "src/components/Header.tsx,src/api/client.ts,../api/client") {
		t.Errorf("missing resolved dependency:\n%s", out)
	}
	if !strings.Contains(out, "src/components/Header.tsx,react") {
		t.Errorf("missing external dependency:\n%s", out)
	}
}

func TestRunMaxFiles(t *testing.T) {
	t.Parallel()
	dir := createSampleProject(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--stdout", "-n", "2", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout.String(), "modules[2]") {
		t.Errorf("expected 2 modules, got:\n%s", stdout.String())
	}
}

func TestRunFocus(t *testing.T) {
	t.Parallel()
	dir := createSampleProject(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--stdout", "--focus", "Header", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	out := stdout.String()
	// Header plus the client it imports.
	if !strings.Contains(out, "modules[2]") {
		t.Errorf("expected 2 modules, got:\n%s", out)
	}
	if strings.Contains(out, "format.ts") {
		t.Errorf("format.ts is not a neighbour of Header:\n%s", out)
	}
}

func TestRunFocusNoMatch(t *testing.T) {
	t.Parallel()
	dir := createSampleProject(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{"--stdout", "--focus", "zzz", dir}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "no modules match") {
		t.Errorf("expected no-match error, got %v", err)
	}
}

func TestRunExclude(t *testing.T) {
	t.Parallel()
	dir := createSampleProject(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--stdout", "--exclude", "src/components/**", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, "modules[2]") || strings.Contains(out, "Header") {
		t.Errorf("components should be excluded:\n%s", out)
	}
}

func TestRunConfigFile(t *testing.T) {
	t.Parallel()
	dir := createSampleProject(t)
	out := filepath.Join(t.TempDir(), "from-config")
	writeTestFile(t, dir, config.FileName, "top_n: 1\nout_dir: "+out+"\n")

	var stdout, stderr bytes.Buffer
	if err := run([]string{dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	data, err := os.ReadFile(filepath.Join(out, report.ComplexityFile))
	if err != nil {
		t.Fatalf("config out_dir not used: %v", err)
	}
	if !strings.Contains(string(data), "## Top 1\n") {
		t.Errorf("config top_n not applied:\n%s", data)
	}
}

func TestRunFlagOverridesConfig(t *testing.T) {
	t.Parallel()
	dir := createSampleProject(t)
	out := filepath.Join(t.TempDir(), "out")
	writeTestFile(t, dir, config.FileName, "top_n: 1\n")

	var stdout, stderr bytes.Buffer
	if err := run([]string{dir, "--top", "2", "-o", out}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(out, report.ComplexityFile))
	if !strings.Contains(string(data), "## Top 2\n") {
		t.Errorf("--top should override config:\n%s", data)
	}
}

func TestRunBadConfig(t *testing.T) {
	t.Parallel()
	dir := createSampleProject(t)
	writeTestFile(t, dir, config.FileName, "top_n: -3\n")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--stdout", dir}, &stdout, &stderr); err == nil {
		t.Error("expected validation error")
	}
}

func TestRunVersion(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--version"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(stdout.String(), "archmap ") {
		t.Errorf("unexpected version output: %q", stdout.String())
	}
}

func TestRunNoFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "README.md", "# nothing here")

	var stdout, stderr bytes.Buffer
	err := run([]string{dir}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "no JavaScript or TypeScript files found") {
		t.Errorf("expected no-files error, got %v", err)
	}
}

func TestRunNotADirectory(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "file.ts", "export const x = 1;")

	var stdout, stderr bytes.Buffer
	err := run([]string{filepath.Join(dir, "file.ts")}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "not a directory") {
		t.Errorf("expected not-a-directory error, got %v", err)
	}
}

func TestRunMaxFileSize(t *testing.T) {
	t.Parallel()
	dir := createSampleProject(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--stdout", "--max-file-size", "70", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stderr.String(), "skipping oversized file") {
		t.Errorf("expected oversized warning, got stderr:\n%s", stderr.String())
	}
	// Oversized files still appear, just without analysis.
	if !strings.Contains(stdout.String(), "modules[3]") {
		t.Errorf("expected 3 modules, got:\n%s", stdout.String())
	}
}

func TestRunUnparsableFileContinues(t *testing.T) {
	t.Parallel()
	dir := createSampleProject(t)
	writeTestFile(t, dir, "src/broken.js", "function broken( { return \"unterminated\n")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--stdout", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stderr.String(), "unparsable file") {
		t.Errorf("expected unparsable warning, got stderr:\n%s", stderr.String())
	}
	if !strings.Contains(stdout.String(), "modules[4]") {
		t.Errorf("expected 4 modules, got:\n%s", stdout.String())
	}
}

func TestRunVerbose(t *testing.T) {
	t.Parallel()
	dir := createSampleProject(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--stdout", "-v", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stderr.String(), "level=DEBUG") {
		t.Errorf("expected debug records with -v, got:\n%s", stderr.String())
	}
}

func TestReorderArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"flags first", []string{"-n", "5", "."}, []string{"-n", "5", "."}},
		{"positional first", []string{".", "-n", "5"}, []string{"-n", "5", "."}},
		{"mixed", []string{"-o", "docs", ".", "--top", "5"}, []string{"-o", "docs", "--top", "5", "."}},
		{"exclude list", []string{"--exclude", "a/**,b/**", "."}, []string{"--exclude", "a/**,b/**", "."}},
		{"embed root", []string{"ARCH.md", "--root", "web"}, []string{"--root", "web", "ARCH.md"}},
		{"no flags", []string{"."}, []string{"."}},
		{"no args", nil, nil},
		{"bool flag", []string{"-V"}, []string{"-V"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := reorderArgs(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("len: got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("index %d: got %q, want %q (full: %v)", i, got[i], tt.want[i], got)
					break
				}
			}
		})
	}
}
