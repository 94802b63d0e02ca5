package assets

import (
	"errors"
	"testing"
)

func TestNewAssetResolver(t *testing.T) {
	t.Parallel()

	t.Run("empty path uses embedded only", func(t *testing.T) {
		t.Parallel()

		resolver, err := NewAssetResolver("")
		if err != nil {
			t.Fatalf("NewAssetResolver(\"\") error = %v", err)
		}
		if resolver.HasCustomLoader() {
			t.Error("expected no custom loader for empty path")
		}
	})

	t.Run("invalid custom path returns error", func(t *testing.T) {
		t.Parallel()

		_, err := NewAssetResolver("/nonexistent/path/abc123xyz")
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewAssetResolver() error = %v, want ErrInvalidBasePath", err)
		}
	})
}

func TestAssetResolver_LoadTemplate(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeTemplate(t, tmpDir, "default.html", "custom default")
	writeTemplate(t, tmpDir, "letter.html", "letter")

	resolver, err := NewAssetResolver(tmpDir)
	if err != nil {
		t.Fatalf("NewAssetResolver() error = %v", err)
	}

	tests := []struct {
		name    string
		id      string
		want    string
		wantErr error
	}{
		{name: "custom shadows built-in", id: "default", want: "custom default"},
		{name: "custom only", id: "letter", want: "letter"},
		{name: "falls back to built-in", id: "modern"},
		{name: "missing everywhere", id: "nope", wantErr: ErrTemplateNotFound},
		{name: "invalid name not retried", id: "a/b", wantErr: ErrInvalidAssetName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := resolver.LoadTemplate(tt.id)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("LoadTemplate(%q) error = %v, want %v", tt.id, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadTemplate(%q) error = %v", tt.id, err)
			}
			if tt.want != "" && got != tt.want {
				t.Errorf("LoadTemplate(%q) = %q, want %q", tt.id, got, tt.want)
			}
			if got == "" {
				t.Errorf("LoadTemplate(%q) returned empty content", tt.id)
			}
		})
	}
}

func TestAssetResolver_ListTemplates(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeTemplate(t, tmpDir, "modern.html", "override")
	writeTemplate(t, tmpDir, "letter.html", "letter")

	resolver, err := NewAssetResolver(tmpDir)
	if err != nil {
		t.Fatalf("NewAssetResolver() error = %v", err)
	}

	got, err := resolver.ListTemplates()
	if err != nil {
		t.Fatalf("ListTemplates() error = %v", err)
	}

	byID := map[string]TemplateInfo{}
	for _, info := range got {
		if _, dup := byID[info.ID]; dup {
			t.Errorf("duplicate template id %q", info.ID)
		}
		byID[info.ID] = info
	}
	if len(byID) != 5 {
		t.Errorf("ListTemplates() ids = %v, want 5 distinct", byID)
	}
	if got[0].ID != DefaultTemplateName {
		t.Errorf("first template = %q, want default", got[0].ID)
	}
	if m := byID["modern"]; m.BuiltIn || m.Path == "" || m.Description == "" {
		t.Errorf("modern = %+v, want custom override keeping description", m)
	}
	if l := byID["letter"]; l.BuiltIn {
		t.Errorf("letter = %+v, want custom", l)
	}
}
