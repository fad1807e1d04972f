package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-s", "secret", "-a", ":8080"},
			allowedFlags: []string{"-s"},
			want:         []string{"-s", "secret"},
		},
		{
			name:         "equals form",
			args:         []string{"-w=12", "-a", ":8080"},
			allowedFlags: []string{"-w"},
			want:         []string{"-w=12"},
		},
		{
			name:         "order preserved",
			args:         []string{"-t=60", "-x", "1", "-s", "k"},
			allowedFlags: []string{"-s", "-t"},
			want:         []string{"-t=60", "-s", "k"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "flag without value at end",
			args:         []string{"-c"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "flag followed by another flag",
			args:         []string{"-c", "-s"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "equals value that looks like a flag",
			args:         []string{"-config=--odd.json"},
			allowedFlags: []string{"-config"},
			want:         []string{"-config=--odd.json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	assert.Equal(t, "a.json", ConfigFileFlag([]string{"-c", "a.json", "-s", "k"}))
	assert.Equal(t, "b.json", ConfigFileFlag([]string{"-a", ":1", "-config=b.json"}))
	assert.Equal(t, "", ConfigFileFlag([]string{"-a", ":1"}))
	assert.Equal(t, "", ConfigFileFlag(nil))
}
