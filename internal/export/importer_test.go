package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeImportFiles(t *testing.T) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	files := []string{
		filepath.Join(dir, "a.json"),
		filepath.Join(dir, "b.json"),
		filepath.Join(dir, "c.yaml"),
		filepath.Join(dir, "d.txt"),
	}
	for _, f := range files {
		if err := os.WriteFile(f, []byte(`{"zabbix_export": {}}`), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir, files
}

func TestFilterImportable(t *testing.T) {
	_, files := writeImportFiles(t)

	valid := FilterImportable(files)
	if len(valid) != 3 {
		t.Fatalf("valid = %v, want 3 files (txt filtered)", valid)
	}
	for _, f := range valid {
		if filepath.Ext(f) == ".txt" {
			t.Errorf("txt file %s not filtered", f)
		}
	}

	// Missing files and directories are dropped too.
	dir := t.TempDir()
	valid = FilterImportable([]string{dir, filepath.Join(dir, "absent.json")})
	if len(valid) != 0 {
		t.Errorf("valid = %v, want empty", valid)
	}
}

func TestResolveFilesGlob(t *testing.T) {
	dir, _ := writeImportFiles(t)

	files, err := ResolveFiles(filepath.Join(dir, "*.json"))
	if err != nil {
		t.Fatalf("ResolveFiles: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("files = %v, want 2 json files", files)
	}
}

func TestResolveFilesDirectory(t *testing.T) {
	dir, _ := writeImportFiles(t)

	sub := filepath.Join(dir, "nested")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "e.xml"), []byte("<zabbix_export/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	files, err := ResolveFiles(dir)
	if err != nil {
		t.Fatalf("ResolveFiles: %v", err)
	}
	if len(files) != 5 {
		t.Errorf("files = %v, want all 5 files recursively", files)
	}
}

func TestImportDryRunMakesNoServerCalls(t *testing.T) {
	f := &fakeServer{version: "7.0.0"}
	_, importer, _ := newTestExporter(t, f)
	_, files := writeImportFiles(t)

	result, err := importer.Run(context.Background(), ImportOptions{
		Files:  files,
		DryRun: true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.DryRun {
		t.Error("result not flagged as dry run")
	}
	if len(result.Imported) != 3 {
		t.Errorf("candidates = %v, want 3 (txt filtered)", result.Imported)
	}
	if f.importCalls != 0 {
		t.Errorf("dry run made %d server calls", f.importCalls)
	}
}

func TestImportFailureIsolation(t *testing.T) {
	f := &fakeServer{version: "7.0.0"}
	_, importer, _ := newTestExporter(t, f)

	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(good, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}
	// A directory with a .json name is not a regular file.
	if err := os.MkdirAll(bad, 0o755); err != nil {
		t.Fatal(err)
	}
	unreadable := filepath.Join(dir, "unreadable.yaml")
	if err := os.WriteFile(unreadable, []byte(`x: 1`), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := importer.Run(context.Background(), ImportOptions{
		Files:         []string{good, bad, unreadable},
		CreateMissing: true,
		IgnoreErrors:  true,
	})
	if err != nil {
		t.Fatalf("Run with IgnoreErrors: %v", err)
	}
	// The directory is filtered out before import, so both real files
	// import fine.
	if len(result.Imported) != 2 || len(result.Failed) != 0 {
		t.Errorf("result = %+v", result)
	}
}

func TestImportAbortsWithoutIgnoreErrors(t *testing.T) {
	f := &fakeServer{version: "6.0.0"}
	// 6.0 server: the fake only answers configuration.import with
	// success, so force a failure through a payload file that passes
	// filtering but cannot be read.
	_, importer, _ := newTestExporter(t, f)

	dir := t.TempDir()
	first := filepath.Join(dir, "1.json")
	second := filepath.Join(dir, "2.json")
	for _, p := range []string{first, second} {
		if err := os.WriteFile(p, []byte(`{}`), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	// Remove read permission to force a read failure on the first file.
	if err := os.Chmod(first, 0o000); err != nil {
		t.Fatal(err)
	}
	if os.Geteuid() == 0 {
		t.Skip("running as root, cannot simulate unreadable file")
	}

	result, err := importer.Run(context.Background(), ImportOptions{
		Files:         []string{first, second},
		CreateMissing: true,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(result.Failed) != 1 {
		t.Errorf("failed = %v", result.Failed)
	}
	if len(result.Imported) != 0 {
		t.Errorf("imported = %v, want none after abort on first file", result.Imported)
	}
}
