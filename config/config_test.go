package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_Accepts(t *testing.T) {
	def := Check{Command: "true"}
	assert.True(t, def.Accepts(0))
	assert.False(t, def.Accepts(1))

	custom := Check{Command: "grep -q x f", Accepted: []int{0, 1}}
	assert.True(t, custom.Accepts(1))
	assert.False(t, custom.Accepts(2))
}

func TestParseCheck(t *testing.T) {
	tests := []struct {
		in   string
		want Check
	}{
		{"/bin/true", Check{Command: "/bin/true"}},
		{"0,5:/bin/somecommand --flag", Check{Command: "/bin/somecommand --flag", Accepted: []int{0, 5}}},
		{"3: pgrep nginx", Check{Command: "pgrep nginx", Accepted: []int{3}}},
		{"echo a:b", Check{Command: "echo a:b"}},
		{"http://example/:x", Check{Command: "http://example/:x"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCheck(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCheck_Errors(t *testing.T) {
	_, err := ParseCheck("  ")
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = ParseCheck("0,1:")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestCheck_StringRoundTrip(t *testing.T) {
	c := Check{Command: "pgrep nginx", Accepted: []int{0, 1}}
	assert.Equal(t, "0,1:pgrep nginx", c.String())

	back, err := ParseCheck(c.String())
	require.NoError(t, err)
	assert.Equal(t, c, back)

	assert.Equal(t, "true", Check{Command: "true"}.String())
}

func TestValues_Clone(t *testing.T) {
	v := Values{KeyPort: 1}
	c := v.Clone()
	c[KeyPort] = 2
	assert.Equal(t, 1, v[KeyPort])
}

func TestIsKey(t *testing.T) {
	assert.True(t, IsKey(KeyChecks))
	assert.False(t, IsKey("check_list"))
}
