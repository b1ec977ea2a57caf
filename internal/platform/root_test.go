package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindConfig(t *testing.T) {
	// /tmp/
	//   project/ (.mdwiki.yaml)
	//     notes/
	//       drafts/
	//   empty/
	//     .mdwiki.yaml/ (a directory, ignored)

	baseDir := t.TempDir()
	projectDir := filepath.Join(baseDir, "project")
	notesDir := filepath.Join(projectDir, "notes")
	draftsDir := filepath.Join(notesDir, "drafts")
	emptyDir := filepath.Join(baseDir, "empty")

	if err := os.MkdirAll(draftsDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(emptyDir, ConfigFileName), 0755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(projectDir, ConfigFileName)
	if err := os.WriteFile(want, []byte("url: http://localhost:8080\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		startPath string
		want      string
		wantErr   bool
	}{
		{name: "Start at Root", startPath: projectDir, want: want},
		{name: "Start in Subdir", startPath: notesDir, want: want},
		{name: "Start Nested Deeply", startPath: draftsDir, want: want},
		{name: "Directory Is Not a Config", startPath: emptyDir, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindConfig(tt.startPath)
			if (err != nil) != tt.wantErr {
				t.Errorf("FindConfig() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != "" && filepath.Clean(got) != filepath.Clean(tt.want) {
				t.Errorf("FindConfig() = %v, want %v", got, tt.want)
			}
		})
	}
}
