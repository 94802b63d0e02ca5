package yamlutil_test

// Notes:
// - Encode's marshal error branch is not tested: goccy/go-yaml only fails on
//   channels and funcs, which no caller passes.

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/alnah/papyrus/internal/yamlutil"
)

type testConfig struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

// ---------------------------------------------------------------------------
// TestUnmarshalStrict
// ---------------------------------------------------------------------------

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		data      []byte
		dest      any
		wantErr   error
		errSubstr string
	}{
		{name: "valid", data: []byte("name: a\ncount: 2"), dest: &testConfig{}},
		{name: "nil data", data: nil, dest: &testConfig{}, wantErr: yamlutil.ErrNilData},
		{name: "nil destination", data: []byte("name: a"), dest: nil, wantErr: yamlutil.ErrNilDestination},
		{name: "unknown field", data: []byte("name: a\nextra: 1"), dest: &testConfig{}, errSubstr: "yamlutil:"},
		{name: "syntax error", data: []byte("name: [unclosed"), dest: &testConfig{}, errSubstr: "yamlutil:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.UnmarshalStrict(tt.data, tt.dest)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("UnmarshalStrict() error = %v, want %v", err, tt.wantErr)
				}
			case tt.errSubstr != "":
				if err == nil || !strings.Contains(err.Error(), tt.errSubstr) {
					t.Errorf("UnmarshalStrict() error = %v, want containing %q", err, tt.errSubstr)
				}
			default:
				if err != nil {
					t.Fatalf("UnmarshalStrict() error = %v", err)
				}
				cfg := tt.dest.(*testConfig)
				if cfg.Name != "a" || cfg.Count != 2 {
					t.Errorf("decoded %+v", cfg)
				}
			}
		})
	}
}

// TestDecodeStrict_TooLarge modifies MaxInputSize and must not run in parallel.
func TestDecodeStrict_TooLarge(t *testing.T) {
	orig := yamlutil.MaxInputSize
	yamlutil.MaxInputSize = 8
	t.Cleanup(func() { yamlutil.MaxInputSize = orig })

	err := yamlutil.DecodeStrict(strings.NewReader("name: something-long"), &testConfig{})
	if !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Errorf("DecodeStrict() error = %v, want ErrInputTooLarge", err)
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := yamlutil.Encode(&buf, testConfig{Name: "x", Count: 3}); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	var got testConfig
	if err := yamlutil.DecodeStrict(&buf, &got); err != nil {
		t.Fatalf("DecodeStrict() error = %v", err)
	}
	if got.Name != "x" || got.Count != 3 {
		t.Errorf("round trip = %+v", got)
	}
}
