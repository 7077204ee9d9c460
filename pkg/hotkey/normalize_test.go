package hotkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_OrderAndCaseInsensitive(t *testing.T) {
	a, err := Normalize("<ctrl>+x", "+")
	require.NoError(t, err)
	b, err := Normalize("x+<CTRL>", "+")
	require.NoError(t, err)
	c, err := Normalize(" X + <Control> ", "+")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, a, c)
	assert.Equal(t, "<ctrl>+x", a.Canonical("+"))
}

func TestNormalize_MultipleModifiersSorted(t *testing.T) {
	chord, err := Normalize("<shift>+<alt>+<ctrl>+t", "+")
	require.NoError(t, err)
	assert.Equal(t, []string{"alt", "ctrl", "shift"}, chord.Mods)
	assert.Equal(t, "<alt>+<ctrl>+<shift>+t", chord.Canonical("+"))
}

func TestNormalize_DropsUnknownTokens(t *testing.T) {
	chord, err := Normalize("<ctrl>+<bogus>+hyperkey+x", "+")
	require.NoError(t, err)
	assert.Equal(t, []string{"ctrl"}, chord.Mods)
	assert.Equal(t, []string{"x"}, chord.Keys)
}

func TestNormalize_DuplicateTokensCollapse(t *testing.T) {
	chord, err := Normalize("<ctrl>+<control>+x+x", "+")
	require.NoError(t, err)
	assert.Equal(t, []string{"ctrl"}, chord.Mods)
	assert.Equal(t, []string{"x"}, chord.Keys)
}

func TestNormalize_NoKeyIsError(t *testing.T) {
	_, err := Normalize("<ctrl>+<shift>", "+")
	assert.Error(t, err)

	_, err = Normalize("", "+")
	assert.Error(t, err)
}

func TestNormalize_CustomSeparator(t *testing.T) {
	chord, err := Normalize("<ctrl>-t", "-")
	require.NoError(t, err)
	assert.Equal(t, "<ctrl>-t", chord.Canonical("-"))
}
