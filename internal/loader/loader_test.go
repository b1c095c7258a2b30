package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = "# Swift tips\n" +
	"\n" +
	"A curated list. This preamble is not a tip.\n" +
	"\n" +
	"## #1 Auto closures\n" +
	"Tags: Closures, Syntax, closures\n" +
	"\n" +
	"Use `@autoclosure` to defer evaluation of an argument.\n" +
	"\n" +
	"[Reference](https://example.com/autoclosures)\n" +
	"\n" +
	"## #2 Guard statement\n" +
	"Tags: syntax, control-flow\n" +
	"\n" +
	"Exit early with guard instead of nesting conditionals.\n"

func writeSource(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func TestLoad(t *testing.T) {
	t.Run("parses tips in document order", func(t *testing.T) {
		dir := writeSource(t, map[string]string{"tips.md": sampleDoc})

		entries, err := Load(dir)
		require.NoError(t, err)
		require.Len(t, entries, 2)

		first := entries[0]
		assert.Equal(t, 1, first.ID)
		assert.Equal(t, "Auto closures", first.Title)
		assert.Equal(t, []string{"closures", "syntax"}, first.Tags, "tags are lowercased and deduped")
		assert.Equal(t, "https://example.com/autoclosures", first.Link)
		assert.Contains(t, first.Body, "@autoclosure")
		assert.NotContains(t, first.Body, "Tags:", "tag line is metadata, not body")

		second := entries[1]
		assert.Equal(t, 2, second.ID)
		assert.Equal(t, "Guard statement", second.Title)
		assert.Equal(t, []string{"syntax", "control-flow"}, second.Tags)
		assert.Empty(t, second.Link)
	})

	t.Run("accepts a single file as source", func(t *testing.T) {
		dir := writeSource(t, map[string]string{"tips.md": sampleDoc})

		entries, err := Load(filepath.Join(dir, "tips.md"))
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("files load in lexical order", func(t *testing.T) {
		dir := writeSource(t, map[string]string{
			"b.md": "## #20 Later\n\nbody\n",
			"a.md": "## #10 Earlier\n\nbody\n",
		})

		entries, err := Load(dir)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, 10, entries[0].ID)
		assert.Equal(t, 20, entries[1].ID)
	})

	t.Run("duplicate id across files is a ParseError", func(t *testing.T) {
		dir := writeSource(t, map[string]string{
			"a.md": "## #7 First\n\nbody\n",
			"b.md": "## #7 Again\n\nbody\n",
		})

		_, err := Load(dir)
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Contains(t, perr.Reason, "duplicate tip id 7")
		assert.Contains(t, perr.File, "b.md")
	})

	t.Run("duplicate id within one file is a ParseError", func(t *testing.T) {
		dir := writeSource(t, map[string]string{
			"a.md": "## #7 First\n\nbody\n\n## #7 Again\n\nbody\n",
		})

		_, err := Load(dir)
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, 5, perr.Line)
	})

	t.Run("non-numeric id is a ParseError", func(t *testing.T) {
		dir := writeSource(t, map[string]string{
			"a.md": "## #seven Lucky\n\nbody\n",
		})

		_, err := Load(dir)
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Contains(t, perr.Reason, "malformed tip heading")
	})

	t.Run("empty title is a ParseError", func(t *testing.T) {
		dir := writeSource(t, map[string]string{
			"a.md": "## #3  \n\nbody\n",
		})

		_, err := Load(dir)
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Contains(t, perr.Reason, "empty title")
	})

	t.Run("headings inside code fences are body text", func(t *testing.T) {
		doc := "## #5 Fenced example\n" +
			"\n" +
			"```md\n" +
			"## #99 Not a tip\n" +
			"```\n" +
			"\n" +
			"after the fence\n"
		dir := writeSource(t, map[string]string{"a.md": doc})

		entries, err := Load(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, 5, entries[0].ID)
		assert.Contains(t, entries[0].Body, "## #99 Not a tip")
	})

	t.Run("source with no tips fails", func(t *testing.T) {
		dir := writeSource(t, map[string]string{"a.md": "# Just a title\n\nprose\n"})

		_, err := Load(dir)
		assert.ErrorContains(t, err, "no tip entries")
	})

	t.Run("missing source fails", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})
}

func TestFingerprint(t *testing.T) {
	dir := writeSource(t, map[string]string{"tips.md": sampleDoc})

	fp1, err := Fingerprint(dir)
	require.NoError(t, err)
	require.NotEmpty(t, fp1)

	fp2, err := Fingerprint(dir)
	require.NoError(t, err)
	assert.Equal(t, fp1, fp2, "fingerprint is stable for an unchanged source")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tips.md"), []byte(sampleDoc+"\nmore\n"), 0644))
	fp3, err := Fingerprint(dir)
	require.NoError(t, err)
	assert.NotEqual(t, fp1, fp3, "fingerprint changes with content")
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"swift", "control-flow"}, splitTags(" Swift , control-flow , swift ,"))
	assert.Nil(t, splitTags("  "))
}
