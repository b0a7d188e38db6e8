package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		in   string
		want VerseRef
	}{
		{"john 3:16", VerseRef{Book: "john", Chapter: 3, Verse: 16}},
		{"  John 3:16 ", VerseRef{Book: "john", Chapter: 3, Verse: 16}},
		{"1 samuel 3:10", VerseRef{Book: "1samuel", Chapter: 3, Verse: 10}},
		{"1john 4:8", VerseRef{Book: "1john", Chapter: 4, Verse: 8}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRef(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRefRejects(t *testing.T) {
	for _, in := range []string{"", "john", "john 3", "john 3:", "john x:1", "john 0:1", "john 3:-1", "enoch 1:1"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseRef(in)
			assert.ErrorIs(t, err, ErrInvalidRef)
		})
	}
}
