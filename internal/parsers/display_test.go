package parsers_test

import (
	"testing"

	"codeberg.org/mutker/droidmon/internal/parsers"
	"github.com/stretchr/testify/assert"
)

func TestParseDisplaySize(t *testing.T) {
	assert.Equal(t, "1080x2400", parsers.ParseDisplaySize("Physical size: 1080x2400").Text)
	assert.Equal(t, "1080x2400", parsers.ParseDisplaySize("Physical size: 1080x2400\nOverride size: 720x1600").Text)
	assert.Equal(t, parsers.Unknown, parsers.ParseDisplaySize("error: no devices").Text)
}

func TestParseDensity(t *testing.T) {
	assert.Equal(t, "440", parsers.ParseDensity("Physical density: 440").Text)
	assert.Equal(t, parsers.Unknown, parsers.ParseDensity("Override density: 400").Text)
}

func TestParseFrameRate(t *testing.T) {
	const header = "uid  package  mode  fps\n"

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"first positive row", header + "10123 com.example.game 1 60\n10124 com.example.other 1 90\n", "60"},
		{"skips unset rows", header + "10123 com.example.a 1 -1\n10124 com.example.b 1 0\n10125 com.example.c 1 120\n", "120"},
		{"only unset", header + "10123 com.example.a 1 -1\n", parsers.Unavailable},
		{"header only", header, parsers.Unavailable},
		{"row on first line is a header", "10123 com.example.a 1 60\n", parsers.Unavailable},
		{"empty", "", parsers.Unavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parsers.ParseFrameRate(tt.raw)
			assert.Equal(t, "fps", got.Name)
			assert.Equal(t, tt.want, got.Text)
		})
	}
}

func TestParseActivity(t *testing.T) {
	raw := `TASK 10 id=12
  ACTIVITY com.android.launcher/.Launcher 5a1b2c pid=1234
TASK 11 id=13
  ACTIVITY com.example.app/.MainActivity 6b2c3d pid=2345
`
	assert.Equal(t, "com.example.app/.MainActivity", parsers.ParseActivity(raw).Text)
	assert.Equal(t, parsers.Unknown, parsers.ParseActivity("no tasks").Text)
}
