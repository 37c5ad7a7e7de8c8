package walker

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTree creates files (relative path -> content) under a temp dir.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func relPaths(files []File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.RelPath
	}
	return out
}

func TestWalk_BasicTraversal(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/com/shop/OrderAction.java": "package com.shop;",
		"src/com/shop/Util.java":        "package com.shop;",
		"README.md":                     "# readme",
		"main.go":                       "package main",
	})

	files, err := Walk(context.Background(), Config{Root: root})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	got := strings.Join(relPaths(files), ",")
	want := "main.go,src/com/shop/OrderAction.java,src/com/shop/Util.java"
	if got != want {
		t.Errorf("Walk() = %s, want %s", got, want)
	}
	if files[1].Language != Java || files[0].Language != Go {
		t.Errorf("unexpected languages: %+v", files)
	}
}

func TestWalk_LanguageFilter(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a/A.java": "class A {}",
		"b/b.go":   "package b",
	})
	files, err := Walk(context.Background(), Config{Root: root, Languages: []Language{Java}})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	if len(files) != 1 || files[0].RelPath != "a/A.java" {
		t.Errorf("got %v", relPaths(files))
	}
}

func TestWalk_IncludeExclude(t *testing.T) {
	root := writeTree(t, map[string]string{
		"web/LoginAction.java":      "",
		"web/legacy/OldAction.java": "",
		"core/Service.java":         "",
	})
	files, err := Walk(context.Background(), Config{
		Root:    root,
		Include: []string{"web/**"},
		Exclude: []string{"**/legacy/**"},
	})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	if got := strings.Join(relPaths(files), ","); got != "web/LoginAction.java" {
		t.Errorf("got %s", got)
	}
}

func TestWalk_SkipsBinaryAndLarge(t *testing.T) {
	root := writeTree(t, map[string]string{
		"Bin.java":   "class\x00Bin",
		"Big.java":   strings.Repeat("x", 2048),
		"Small.java": "class Small {}",
	})
	files, err := Walk(context.Background(), Config{Root: root, MaxFileSize: 1024})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	if got := strings.Join(relPaths(files), ","); got != "Small.java" {
		t.Errorf("got %s", got)
	}
}

func TestWalk_DefaultExcludeDirs(t *testing.T) {
	root := writeTree(t, map[string]string{
		"target/classes/Gen.java": "",
		"node_modules/x/y.go":     "",
		"app/App.java":            "",
	})
	files, err := Walk(context.Background(), Config{Root: root})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	if got := strings.Join(relPaths(files), ","); got != "app/App.java" {
		t.Errorf("got %s", got)
	}
}

func TestWalk_Gitignore(t *testing.T) {
	root := writeTree(t, map[string]string{
		".gitignore":         "generated/\n# comment\nSecret*.java\n",
		"generated/Gen.java": "",
		"SecretKey.java":     "",
		"App.java":           "",
	})
	files, err := Walk(context.Background(), Config{Root: root})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	if got := strings.Join(relPaths(files), ","); got != "App.java" {
		t.Errorf("got %s", got)
	}
}

func TestWalk_SkipTests(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/main/java/App.java":     "",
		"src/test/java/AppTest.java": "",
		"pkg/x_test.go":              "",
	})
	files, err := Walk(context.Background(), Config{Root: root, SkipTests: true})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	if got := strings.Join(relPaths(files), ","); got != "src/main/java/App.java" {
		t.Errorf("got %s", got)
	}
}

func TestWalk_NotADirectory(t *testing.T) {
	root := writeTree(t, map[string]string{"App.java": ""})
	if _, err := Walk(context.Background(), Config{Root: filepath.Join(root, "App.java")}); err == nil {
		t.Error("expected error for file root")
	}
	if _, err := Walk(context.Background(), Config{Root: filepath.Join(root, "missing")}); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestWalk_Cancelled(t *testing.T) {
	root := writeTree(t, map[string]string{"App.java": ""})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Walk(ctx, Config{Root: root}); err == nil {
		t.Error("expected context error")
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := map[string]Language{
		"Foo.java":     Java,
		"dir/FOO.JAVA": Java,
		"main.go":      Go,
		"notes.txt":    Unknown,
		"Makefile":     Unknown,
	}
	for name, want := range tests {
		if got := DetectLanguage(name); got != want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestMatchesInclude(t *testing.T) {
	if !MatchesInclude("a/b.java", nil) {
		t.Error("empty include should match everything")
	}
	if !MatchesInclude("src/deep/x/Y.java", []string{"src/**/*.java"}) {
		t.Error("doublestar include should match")
	}
	if MatchesInclude("lib/Y.java", []string{"src/**"}) {
		t.Error("include should not match outside src")
	}
}

func TestMatchesExclude(t *testing.T) {
	if MatchesExclude("a/b.java", nil) {
		t.Error("empty exclude should match nothing")
	}
	if !MatchesExclude("a/GeneratedStub.java", []string{"Generated*.java"}) {
		t.Error("base name should match exclude pattern")
	}
}
