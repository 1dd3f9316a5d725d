package nobo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateWeekProfile(t *testing.T) {
	var tests = []struct {
		name    string
		profile []string
		valid   bool
	}{
		{
			name:    "one entry per day",
			profile: []string{"00000", "00001", "00002", "00004", "00000", "00000", "00000"},
			valid:   true,
		},
		{
			name:    "several entries per day",
			profile: []string{"00000", "06301", "22000", "00000", "00000", "00000", "00000", "00000", "07002", "00000"},
			valid:   true,
		},
		{
			name:    "too few",
			profile: []string{"00000", "00000", "00000"},
		},
		{
			name:    "six days",
			profile: []string{"00000", "06000", "00000", "00000", "00000", "00000", "00000"},
		},
		{
			name:    "eight days",
			profile: []string{"00000", "00000", "00000", "00000", "00000", "00000", "00000", "00000"},
		},
		{
			name:    "invalid mode",
			profile: []string{"00003", "00000", "00000", "00000", "00000", "00000", "00000"},
		},
		{
			name:    "invalid hour",
			profile: []string{"00000", "24000", "00000", "00000", "00000", "00000", "00000", "00000"},
		},
		{
			name:    "short token",
			profile: []string{"0000", "00000", "00000", "00000", "00000", "00000", "00000"},
		},
		{
			name:    "not starting at midnight",
			profile: []string{"06000", "00000", "00000", "00000", "00000", "00000", "00000", "00000"},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWeekProfile(tt.profile)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestEncodeName(t *testing.T) {
	assert.Equal(t, "my\u00a0week\u00a0profile", encodeName("my week profile"))
	assert.Equal(t, "my week profile", DecodeName(encodeName("my week profile")))
}
