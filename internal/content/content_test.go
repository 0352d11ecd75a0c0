package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibrary_Picks(t *testing.T) {
	l := NewLibraryWithSeed(1)

	assert.Contains(t, l.Quote(), "Quote of the Day")
	assert.Contains(t, l.Tip(), "Trading Tip")
	assert.NotEmpty(t, l.Gif())
}

func TestNewsDigest_ThreeDistinctSnippets(t *testing.T) {
	l := NewLibraryWithSeed(7)

	digest := l.NewsDigest()
	lines := strings.Split(digest, "\n")

	require.GreaterOrEqual(t, len(lines), 5)
	assert.Equal(t, "📰 **Crypto News Digest**", lines[0])

	body := lines[2:]
	require.Len(t, body, 3)
	seen := map[string]bool{}
	for _, line := range body {
		assert.False(t, seen[line], "snippet repeated: %s", line)
		seen[line] = true
	}
}

func TestConvert(t *testing.T) {
	got, err := Convert(100, "usd", "inr")
	require.NoError(t, err)
	assert.InDelta(t, 8450, got, 0.01)

	_, err = Convert(1, "USD", "XYZ")
	var unsupported *ErrUnsupportedCurrency
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "XYZ", unsupported.Code)
}

func TestTranslateHindi(t *testing.T) {
	got, ok := TranslateHindi("  Hello ")
	require.True(t, ok)
	assert.Equal(t, "नमस्ते", got)

	_, ok = TranslateHindi("bonjour")
	assert.False(t, ok)
}

func TestModuleCatalog(t *testing.T) {
	mods := Modules()
	require.Equal(t, TotalModules(), len(mods))

	seen := map[string]bool{}
	for _, m := range mods {
		assert.NotEmpty(t, m.Title)
		assert.NotEmpty(t, m.Body)
		assert.False(t, seen[m.ID], "duplicate module id %s", m.ID)
		seen[m.ID] = true

		byID, ok := ModuleByID(m.ID)
		require.True(t, ok)
		assert.Equal(t, m.Title, byID.Title)
	}

	_, ok := ModuleByID("nope")
	assert.False(t, ok)
}

func TestQuestionBanks_AnswersInRange(t *testing.T) {
	l := NewLibraryWithSeed(3)
	for i := 0; i < 20; i++ {
		for _, q := range []Question{l.Quiz(), l.Trivia()} {
			require.NotEmpty(t, q.Options)
			assert.GreaterOrEqual(t, q.Answer, 0)
			assert.Less(t, q.Answer, len(q.Options))
		}
	}
}
