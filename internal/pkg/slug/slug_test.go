package slug

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMake(t *testing.T) {
	cases := map[string]string{
		"Le Petit Prince":       "le-petit-prince",
		"  Crime & Punishment ": "crime-punishment",
		"Cien años de soledad":  "cien-anos-de-soledad",
		"Sci-Fi/Fantasy":        "sci-fi-fantasy",
		"Война и мир":           "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Make(in), in)
	}
}

func TestMake_Truncates(t *testing.T) {
	s := Make(strings.Repeat("a", 400))
	assert.LessOrEqual(t, len(s), MaxLength-suffixLength-1)
}

func TestWithSuffix(t *testing.T) {
	s, err := WithSuffix("dune")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s, "dune-"))
	assert.Len(t, s, len("dune-")+suffixLength)
	assert.True(t, Valid(s))

	s, err = WithSuffix("")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s, "book-"))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("the_hobbit-1937"))
	assert.False(t, Valid("the hobbit"))
	assert.False(t, Valid(""))
	assert.False(t, Valid(strings.Repeat("a", MaxLength+1)))
}
