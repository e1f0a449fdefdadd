package assets

import (
	"errors"
	"strings"
	"testing"
)

func TestLoadStyle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		styleName string
		wantErr   error
	}{
		{
			name:      "base style returns content",
			styleName: "report",
		},
		{
			name:      "nonexistent style",
			styleName: "nonexistent",
			wantErr:   ErrStyleNotFound,
		},
		{
			name:      "empty name",
			styleName: "",
			wantErr:   ErrInvalidAssetName,
		},
		{
			name:      "path traversal",
			styleName: "../secret",
			wantErr:   ErrInvalidAssetName,
		},
		{
			name:      "absolute path",
			styleName: "/etc/passwd",
			wantErr:   ErrInvalidAssetName,
		},
		{
			name:      "name with dot",
			styleName: "style.css",
			wantErr:   ErrInvalidAssetName,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			content, err := LoadStyle(tt.styleName)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("LoadStyle(%q) error = %v, want %v", tt.styleName, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadStyle(%q) error = %v", tt.styleName, err)
			}
			if !strings.Contains(content, "--report-accent-color") {
				t.Error("base style missing the accent variable")
			}
		})
	}
}

func TestLoadTemplate(t *testing.T) {
	t.Parallel()

	content, err := LoadTemplate("report")
	if err != nil {
		t.Fatalf("LoadTemplate(\"report\") error = %v", err)
	}
	for _, want := range []string{"{{.Title}}", "{{.Style}}", "{{.Body}}"} {
		if !strings.Contains(content, want) {
			t.Errorf("shell template missing %q", want)
		}
	}

	if _, err := LoadTemplate("missing"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("LoadTemplate(\"missing\") error = %v, want ErrTemplateNotFound", err)
	}
	if _, err := LoadTemplate("..\\evil"); !errors.Is(err, ErrInvalidAssetName) {
		t.Errorf("LoadTemplate with traversal error = %v, want ErrInvalidAssetName", err)
	}
}
