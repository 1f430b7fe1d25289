package uploads

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/user/jobbee-go/config"
)

func testStore(t *testing.T, maxSize int64) *Store {
	t.Helper()
	store, err := NewStore(&config.UploadConfig{Dir: t.TempDir(), MaxFileSize: maxSize})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func TestCheckFile(t *testing.T) {
	store := testStore(t, 100)

	tests := []struct {
		name     string
		filename string
		size     int64
		wantErr  bool
	}{
		{"pdf accepted", "resume.pdf", 50, false},
		{"docx accepted", "resume.docx", 50, false},
		{"uppercase extension accepted", "RESUME.PDF", 50, false},
		{"executable rejected", "resume.exe", 50, true},
		{"no extension rejected", "resume", 50, true},
		{"oversized rejected", "resume.pdf", 101, true},
		{"at the limit accepted", "resume.pdf", 100, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.CheckFile(tt.filename, tt.size)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckFile(%q, %d) error = %v, wantErr %v", tt.filename, tt.size, err, tt.wantErr)
			}
		})
	}
}

func TestSaveAndDelete(t *testing.T) {
	store := testStore(t, 100)

	path, err := store.Save("user_1_job_2.pdf", strings.NewReader("resume body"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if string(data) != "resume body" {
		t.Errorf("stored content = %q, want the uploaded bytes", data)
	}

	if err := store.Delete(path); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file still exists after Delete")
	}

	// Deleting again is not an error; the caller only cares that it is gone.
	if err := store.Delete(path); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestSave_RejectsOversizedStream(t *testing.T) {
	store := testStore(t, 10)

	// The declared size can lie; the stream itself is the authority.
	path, err := store.Save("resume.pdf", strings.NewReader(strings.Repeat("x", 11)))
	if err == nil {
		t.Fatal("expected an oversized stream to be rejected")
	}
	if path != "" {
		if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
			t.Error("rejected upload left a file behind")
		}
	}
}

func TestSave_StripsDirectoryTraversal(t *testing.T) {
	store := testStore(t, 100)

	path, err := store.Save("../../escape.pdf", strings.NewReader("body"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if filepath.Dir(path) != store.dir {
		t.Errorf("stored path %q escaped the store directory %q", path, store.dir)
	}
}
