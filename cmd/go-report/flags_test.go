package main

import "testing"

func TestParseFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want func(*cliFlags) bool
	}{
		{
			name: "defaults",
			args: nil,
			want: func(f *cliFlags) bool {
				return f.config == "report.yaml" && f.mode == "" && !f.verbose
			},
		},
		{
			name: "short flags",
			args: []string{"-c", "custom.yaml", "-m", "string", "-v"},
			want: func(f *cliFlags) bool {
				return f.config == "custom.yaml" && f.mode == "string" && f.verbose
			},
		},
		{
			name: "long flags",
			args: []string{"--name", "Q3", "--dest", "dist", "--overwrite", "--open"},
			want: func(f *cliFlags) bool {
				return f.name == "Q3" && f.dest == "dist" && f.overwrite && f.open
			},
		},
		{
			name: "output path",
			args: []string{"-o", "out.html"},
			want: func(f *cliFlags) bool { return f.path == "out.html" },
		},
		{
			name: "version",
			args: []string{"--version"},
			want: func(f *cliFlags) bool { return f.version },
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, err := parseFlags(tt.args)
			if err != nil {
				t.Fatalf("parseFlags(%v) error = %v", tt.args, err)
			}
			if !tt.want(f) {
				t.Errorf("parseFlags(%v) = %+v", tt.args, f)
			}
		})
	}
}

func TestParseFlagsUnknownFlag(t *testing.T) {
	t.Parallel()

	if _, err := parseFlags([]string{"--bogus"}); err == nil {
		t.Error("parseFlags accepted an unknown flag")
	}
}
