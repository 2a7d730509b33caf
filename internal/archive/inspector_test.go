package archive

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/davehng/ScanForDllInstances/internal/peinfo"
	"github.com/davehng/ScanForDllInstances/pkg/models"
	"go.uber.org/zap"
)

// stubReader resolves version info by extracted file content, so entries can
// be told apart regardless of the temporary path they land in.
type stubReader struct {
	byContent map[string]peinfo.Info
	err       error
}

func (s *stubReader) ReadFile(path string) (peinfo.Info, error) {
	if s.err != nil {
		return peinfo.Info{}, s.err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return peinfo.Info{}, err
	}
	return s.byContent[string(data)], nil
}

func collectInspect(t *testing.T, in *Inspector, path string, targets []string) []models.VersionRecord {
	t.Helper()
	var records []models.VersionRecord
	if err := in.Inspect(path, targets, func(r models.VersionRecord) {
		records = append(records, r)
	}); err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	return records
}

func TestInspect_SuffixMatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "release.zip")
	buildZip(t, path, []zipEntry{
		{"lib/HDWA.AFS.Client.dll", []byte("payload-a")},
		{"readme.txt", []byte("notes")},
		{"other/XHDWA.AFS.Client.dll", []byte("payload-x")},
	})

	reader := &stubReader{byContent: map[string]peinfo.Info{
		"payload-a": {ProductVersion: "1.2.3", FileVersion: "1.2.3.400"},
		"payload-x": {ProductVersion: "9.9", FileVersion: "9.9.0.1"},
	}}
	in := NewInspector(reader, zap.NewNop())

	records := collectInspect(t, in, path, []string{"HDWA.AFS.Client.dll"})

	// The suffix rule matches both entries, including the one whose base
	// name merely ends with the target.
	if len(records) != 2 {
		t.Fatalf("Inspect() emitted %d records, want 2", len(records))
	}

	sep := string(os.PathSeparator)
	wantFirst := path + sep + "lib" + sep + "HDWA.AFS.Client.dll"
	if records[0].Path != wantFirst {
		t.Errorf("records[0].Path = %q, want %q", records[0].Path, wantFirst)
	}
	if records[0].ProductVersion != "1.2.3" || records[0].FileVersion != "1.2.3.400" {
		t.Errorf("records[0] versions = %q/%q, want 1.2.3/1.2.3.400",
			records[0].ProductVersion, records[0].FileVersion)
	}
	if records[1].ProductVersion != "9.9" {
		t.Errorf("records[1].ProductVersion = %q, want %q", records[1].ProductVersion, "9.9")
	}
}

func TestInspect_SkipsDirectoryEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dirs.zip")
	buildZip(t, path, []zipEntry{
		{"bin/", nil},
		{"bin/HDWA.AFS.Client.dll", []byte("payload")},
	})

	reader := &stubReader{byContent: map[string]peinfo.Info{
		"payload": {ProductVersion: "2.0", FileVersion: "2.0"},
	}}
	in := NewInspector(reader, zap.NewNop())

	records := collectInspect(t, in, path, []string{"HDWA.AFS.Client.dll"})
	if len(records) != 1 {
		t.Fatalf("Inspect() emitted %d records, want 1", len(records))
	}
	if !strings.HasSuffix(records[0].Path, "HDWA.AFS.Client.dll") {
		t.Errorf("records[0].Path = %q, want the file entry", records[0].Path)
	}
}

func TestInspect_SkipsTextFlaggedEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flagged.zip")
	buildZip(t, path, []zipEntry{
		{"a/HDWA.AFS.Client.dll", []byte("text-copy")},
		{"b/HDWA.AFS.Client.dll", []byte("binary-copy")},
	})
	setTextFlag(t, path, 0)

	reader := &stubReader{byContent: map[string]peinfo.Info{
		"binary-copy": {ProductVersion: "3.1", FileVersion: "3.1.0.0"},
	}}
	in := NewInspector(reader, zap.NewNop())

	records := collectInspect(t, in, path, []string{"HDWA.AFS.Client.dll"})
	if len(records) != 1 {
		t.Fatalf("Inspect() emitted %d records, want 1", len(records))
	}
	if !strings.Contains(records[0].Path, "b") {
		t.Errorf("records[0].Path = %q, want the unflagged entry under b/", records[0].Path)
	}
}

func TestInspect_NoMatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "none.zip")
	buildZip(t, path, []zipEntry{
		{"readme.txt", []byte("notes")},
	})

	in := NewInspector(&stubReader{}, zap.NewNop())
	records := collectInspect(t, in, path, []string{"HDWA.AFS.Client.dll"})
	if len(records) != 0 {
		t.Errorf("Inspect() emitted %d records, want 0", len(records))
	}
}

func TestInspect_ReaderErrorAborts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.zip")
	buildZip(t, path, []zipEntry{
		{"HDWA.AFS.Client.dll", []byte("payload")},
	})

	in := NewInspector(&stubReader{err: errors.New("parse failed")}, zap.NewNop())
	emitted := 0
	err := in.Inspect(path, []string{"HDWA.AFS.Client.dll"}, func(models.VersionRecord) {
		emitted++
	})

	if err == nil {
		t.Error("Inspect() error = nil, want reader error")
	}
	if emitted != 0 {
		t.Errorf("Inspect() emitted %d records before failing, want 0", emitted)
	}
}

func TestInspect_UnreadableArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.zip")
	if err := os.WriteFile(path, []byte("not a zip at all"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	in := NewInspector(&stubReader{}, zap.NewNop())
	err := in.Inspect(path, []string{"HDWA.AFS.Client.dll"}, func(models.VersionRecord) {})
	if err == nil {
		t.Error("Inspect() error = nil, want error for unreadable archive")
	}
}

func TestInspect_TempFilesCleanedUp(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("TMPDIR redirection is unix-only")
	}
	tmpHome := t.TempDir()
	t.Setenv("TMPDIR", tmpHome)

	path := filepath.Join(t.TempDir(), "clean.zip")
	buildZip(t, path, []zipEntry{
		{"HDWA.AFS.Client.dll", []byte("payload")},
	})

	t.Run("after success", func(t *testing.T) {
		reader := &stubReader{byContent: map[string]peinfo.Info{
			"payload": {ProductVersion: "1.0", FileVersion: "1.0"},
		}}
		in := NewInspector(reader, zap.NewNop())
		records := collectInspect(t, in, path, []string{"HDWA.AFS.Client.dll"})
		if len(records) != 1 {
			t.Fatalf("Inspect() emitted %d records, want 1", len(records))
		}
		assertEmptyDir(t, tmpHome)
	})

	t.Run("after reader failure", func(t *testing.T) {
		in := NewInspector(&stubReader{err: errors.New("parse failed")}, zap.NewNop())
		err := in.Inspect(path, []string{"HDWA.AFS.Client.dll"}, func(models.VersionRecord) {})
		if err == nil {
			t.Fatal("Inspect() error = nil, want reader error")
		}
		assertEmptyDir(t, tmpHome)
	})
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to list %s: %v", dir, err)
	}
	if len(entries) != 0 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("temp dir not empty after Inspect: %v", names)
	}
}

func TestDisplayPath(t *testing.T) {
	sep := string(os.PathSeparator)
	archive := filepath.Join("release", "bundle.zip")

	tests := []struct {
		name      string
		entryName string
		expected  string
	}{
		{"Plain entry", "HDWA.AFS.Client.dll", archive + sep + "HDWA.AFS.Client.dll"},
		{"Forward slashes", "lib/net48/HDWA.AFS.Client.dll", archive + sep + "lib" + sep + "net48" + sep + "HDWA.AFS.Client.dll"},
		{"Backslashes", `lib\net48\HDWA.AFS.Client.dll`, archive + sep + "lib" + sep + "net48" + sep + "HDWA.AFS.Client.dll"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayPath(archive, tt.entryName); got != tt.expected {
				t.Errorf("DisplayPath(%q, %q) = %q, want %q", archive, tt.entryName, got, tt.expected)
			}
		})
	}
}
