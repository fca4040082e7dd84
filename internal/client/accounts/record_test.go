package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecord_DisplayFields(t *testing.T) {
	tests := []struct {
		name     string
		rec      Record
		display  string
		handle   string
		initials string
	}{
		{"full", Record{Email: "jane@x.com", FullName: "Jane Roe", Username: "janer"}, "Jane Roe", "@janer", "JR"},
		{"no name", Record{Email: "bob@x.com"}, "User", "@bob", "?"},
		{"long name", Record{Email: "m@x.com", FullName: "mary ann smith"}, "mary ann smith", "@m", "MA"},
		{"multibyte initials", Record{Email: "e@x.com", FullName: "élodie ünal"}, "élodie ünal", "@e", "ÉÜ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.display, tt.rec.DisplayName())
			assert.Equal(t, tt.handle, tt.rec.Handle())
			assert.Equal(t, tt.initials, tt.rec.Initials())
		})
	}
}

func TestRecord_ApplyKeepsUsername(t *testing.T) {
	r := Record{Email: "jane@x.com", Username: "custom"}
	r.apply(Patch{FullName: Str("Jane")})
	assert.Equal(t, "custom", r.Username)

	r = Record{Email: "jane@x.com"}
	r.apply(Patch{})
	assert.Equal(t, "jane", r.Username)
}
