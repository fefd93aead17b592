package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPromptStringUsesDefaultOnEmptyInput(t *testing.T) {
	p := newPrompter(strings.NewReader("\n"), &bytes.Buffer{})
	require.Equal(t, "java", p.String("Java binary", "java"))

	p = newPrompter(strings.NewReader("/usr/bin/java21\n"), &bytes.Buffer{})
	require.Equal(t, "/usr/bin/java21", p.String("Java binary", "java"))
}

func TestPromptIntRepromptsOnGarbage(t *testing.T) {
	out := &bytes.Buffer{}
	p := newPrompter(strings.NewReader("abc\n25570\n"), out)

	require.Equal(t, 25570, p.Int("Port", 25565))
	require.Contains(t, out.String(), "Please enter a number")
}

func TestPromptConfirm(t *testing.T) {
	p := newPrompter(strings.NewReader("y\n"), &bytes.Buffer{})
	require.True(t, p.Confirm("Accept?", false))

	p = newPrompter(strings.NewReader("no\n"), &bytes.Buffer{})
	require.False(t, p.Confirm("Accept?", true))

	// Empty answer keeps the default.
	p = newPrompter(strings.NewReader("\n"), &bytes.Buffer{})
	require.True(t, p.Confirm("Accept?", true))
}

func TestPromptSelect(t *testing.T) {
	out := &bytes.Buffer{}
	p := newPrompter(strings.NewReader("2\n"), out)

	idx, err := p.Select("Version", []string{"1.21.4", "1.21", "1.20.4"})
	require.NoError(t, err)
	require.Equal(t, 1, idx)
	require.Contains(t, out.String(), "1) 1.21.4")
}

func TestPromptSelectDefaultsToFirst(t *testing.T) {
	p := newPrompter(strings.NewReader("\n"), &bytes.Buffer{})

	idx, err := p.Select("Version", []string{"a", "b"})
	require.NoError(t, err)
	require.Equal(t, 0, idx)
}

func TestPromptSelectRepromptsOnOutOfRange(t *testing.T) {
	out := &bytes.Buffer{}
	p := newPrompter(strings.NewReader("9\n1\n"), out)

	idx, err := p.Select("Version", []string{"a", "b"})
	require.NoError(t, err)
	require.Equal(t, 0, idx)
	require.Contains(t, out.String(), "between 1 and 2")
}

func TestPromptMultiSelect(t *testing.T) {
	p := newPrompter(strings.NewReader("1, 3, 3\n"), &bytes.Buffer{})

	picks, err := p.MultiSelect("Plugins", []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Equal(t, []int{0, 2}, picks)
}

func TestPromptMultiSelectEmptySelectsNothing(t *testing.T) {
	p := newPrompter(strings.NewReader("\n"), &bytes.Buffer{})

	picks, err := p.MultiSelect("Plugins", []string{"a", "b"})
	require.NoError(t, err)
	require.Empty(t, picks)
}
