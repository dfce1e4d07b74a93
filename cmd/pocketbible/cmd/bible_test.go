package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bberrors "github.com/Aman-CERP/pocketbible/internal/errors"
)

func TestVerseCmd(t *testing.T) {
	isolate(t)
	root := buildAssets(t)

	// When: reading a verse with a book prefix
	out, _, err := run(t, root, "verse", "gen", "1:2")

	// Then: the reference and text are printed
	require.NoError(t, err)
	assert.Contains(t, out, "Genesis 1:2")
	assert.Contains(t, out, "And the earth was without form, and void.")
}

func TestVerseCmd_JSON(t *testing.T) {
	isolate(t)
	root := buildAssets(t)

	out, _, err := run(t, root, "--json", "verse", "John", "3:1")
	require.NoError(t, err)

	var v verseJSON
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, "John 3:1", v.Ref)
	assert.Contains(t, v.Text, "Nicodemus")
}

func TestVerseCmd_Errors(t *testing.T) {
	isolate(t)
	root := buildAssets(t)

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"unknown book", []string{"verse", "Hezekiah", "1:1"}, bberrors.ErrCodeInvalidReference},
		{"whole chapter", []string{"verse", "Genesis", "1"}, bberrors.ErrCodeInvalidReference},
		{"missing verse", []string{"verse", "Genesis", "1:9"}, bberrors.ErrCodeAssetNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, root, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, bberrors.GetCode(err))
		})
	}
}

func TestVerseCmd_NoAssets(t *testing.T) {
	isolate(t)

	// Given: an empty bundled root
	_, _, err := run(t, t.TempDir(), "verse", "Genesis", "1:1")

	// Then: the locator failure surfaces as not found
	require.Error(t, err)
	assert.Equal(t, bberrors.ErrCodeAssetNotFound, bberrors.GetCode(err))
}

func TestChapterCmd(t *testing.T) {
	isolate(t)
	root := buildAssets(t)

	// When: printing Genesis 1
	out, _, err := run(t, root, "--json", "chapter", "Genesis", "1")
	require.NoError(t, err)

	// Then: both verses are returned in order
	var c chapterJSON
	require.NoError(t, json.Unmarshal([]byte(out), &c))
	assert.Equal(t, "Genesis 1", c.Ref)
	require.Len(t, c.Verses, 2)
	assert.Equal(t, uint16(1), c.Verses[0].Verse)
	assert.Equal(t, uint16(2), c.Verses[1].Verse)
}

func TestChapterCmd_EmptyChapter(t *testing.T) {
	isolate(t)
	root := buildAssets(t)

	// Given: a valid chapter that the assets do not hold
	_, _, err := run(t, root, "chapter", "Exodus", "3")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no verses")
}

func TestBooksCmd(t *testing.T) {
	isolate(t)

	out, _, err := run(t, t.TempDir(), "--json", "books")
	require.NoError(t, err)

	var list []bookJSON
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 73)
	assert.Equal(t, "Genesis", list[0].Name)
	assert.Equal(t, uint16(50), list[0].Chapters)
}

func TestSearchCmd(t *testing.T) {
	isolate(t)
	root := buildAssets(t)

	// When: searching a prefix shared by three verses
	out, _, err := run(t, root, "--json", "search", "Earth")
	require.NoError(t, err)

	// Then: hits resolve back to references
	var res searchJSON
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "earth", res.Token)
	refs := make([]string, 0, len(res.Results))
	for _, h := range res.Results {
		refs = append(refs, h.Ref)
	}
	assert.ElementsMatch(t, []string{"Genesis 1:1", "Genesis 1:2", "Genesis 2:1"}, refs)
}

func TestSearchCmd_Limit(t *testing.T) {
	isolate(t)
	root := buildAssets(t)

	out, _, err := run(t, root, "--json", "search", "earth", "-n", "1")
	require.NoError(t, err)

	var res searchJSON
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Len(t, res.Results, 1)
}

func TestSearchCmd_NoMatches(t *testing.T) {
	isolate(t)
	root := buildAssets(t)

	out, _, err := run(t, root, "search", "zebra")
	require.NoError(t, err)
	assert.Contains(t, out, "No verses match")
}

func TestSearchCmd_ShortQuery(t *testing.T) {
	isolate(t)

	_, _, err := run(t, t.TempDir(), "search", "a")
	require.Error(t, err)
	assert.Equal(t, bberrors.ErrCodeInvalidQuery, bberrors.GetCode(err))
}
