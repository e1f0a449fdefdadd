package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-report/internal/config"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "report.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunStringMode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := writeConfig(t, dir, `
name: "Stringy"
output:
  mode: string
blocks:
  - type: text
    content: "# Hello CLI"
`)

	var stdout, stderr bytes.Buffer
	err := run(&cliFlags{config: cfg}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	out := stdout.String()
	if !strings.Contains(out, "<title>Stringy</title>") {
		t.Error("stdout missing the report title")
	}
	if !strings.Contains(out, "Hello CLI") {
		t.Error("stdout missing rendered block content")
	}
}

func TestRunSaveMode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.html")
	cfg := writeConfig(t, dir, `
name: "Savey"
output:
  mode: save
blocks:
  - type: html
    content: "<p>fragment</p>"
`)

	var stdout, stderr bytes.Buffer
	err := run(&cliFlags{config: cfg, path: outPath}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	content, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading saved report: %v", err)
	}
	if !strings.Contains(string(content), "<p>fragment</p>") {
		t.Error("saved report missing the HTML fragment")
	}
	if !strings.Contains(stdout.String(), "Saved "+outPath) {
		t.Errorf("stdout = %q, want save confirmation", stdout.String())
	}
}

func TestRunBuildModeWithMedia(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	imgPath := filepath.Join(dir, "img.bin")
	if err := os.WriteFile(imgPath, bytes.Repeat([]byte{0xAB}, 64), 0o644); err != nil {
		t.Fatal(err)
	}
	dest := filepath.Join(dir, "dist")
	cfg := writeConfig(t, dir, `
name: "site"
output:
  mode: build
  dest: `+dest+`
blocks:
  - type: text
    content: "body"
  - type: media
    file: `+imgPath+`
    mime: application/octet-stream
`)

	var stdout, stderr bytes.Buffer
	err := run(&cliFlags{config: cfg, verbose: true}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	assets, err := os.ReadDir(filepath.Join(dest, "site", "assets"))
	if err != nil {
		t.Fatalf("reading assets dir: %v", err)
	}
	if len(assets) != 1 {
		t.Errorf("assets dir holds %d files, want 1", len(assets))
	}
	if !strings.Contains(stderr.String(), "mode build") {
		t.Error("verbose progress not written to stderr")
	}
}

func TestRunFlagOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := writeConfig(t, dir, `
name: "FromConfig"
output:
  mode: save
blocks:
  - type: text
    content: "content"
`)

	var stdout, stderr bytes.Buffer
	err := run(&cliFlags{config: cfg, name: "FromFlag", mode: "string"}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(stdout.String(), "<title>FromFlag</title>") {
		t.Error("flag override did not change the report name")
	}
}

func TestRunMissingConfig(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	err := run(&cliFlags{config: filepath.Join(t.TempDir(), "absent.yaml")}, &stdout, &stderr)
	if !errors.Is(err, config.ErrConfigNotFound) {
		t.Errorf("run() error = %v, want ErrConfigNotFound", err)
	}
}

func TestRunMissingBlockFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := writeConfig(t, dir, `
output:
  mode: string
blocks:
  - type: text
    file: `+filepath.Join(dir, "missing.md")+`
`)

	var stdout, stderr bytes.Buffer
	err := run(&cliFlags{config: cfg}, &stdout, &stderr)
	if !errors.Is(err, ErrReadBlockFile) {
		t.Errorf("run() error = %v, want ErrReadBlockFile", err)
	}
}

func TestSniffMIME(t *testing.T) {
	t.Parallel()

	pngHeader := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}
	if got := sniffMIME(pngHeader); got != "image/png" {
		t.Errorf("sniffMIME(png header) = %q, want image/png", got)
	}

	if got := sniffMIME([]byte("plain words")); got != "text/plain" {
		t.Errorf("sniffMIME(text) = %q, want text/plain", got)
	}
}
