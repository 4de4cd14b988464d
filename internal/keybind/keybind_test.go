package keybind

import (
	"errors"
	"testing"

	"github.com/Versifine/stride/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDefaults(t *testing.T) {
	m, err := Build(config.Default())
	require.NoError(t, err)
	require.Equal(t, 5, m.Len())

	want := map[Action]KeyID{
		Forward:  KeyW,
		Backward: KeyS,
		Left:     KeyA,
		Right:    KeyD,
		Jump:     KeySpace,
	}
	for a, k := range want {
		got, ok := m.Key(a)
		require.True(t, ok, "action %s unbound", a)
		assert.True(t, m.Bound(a))
		assert.Equal(t, k, got, "action %s", a)
	}
}

func TestBuildRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Keybinds.Forward = "s"
	cfg.Keybinds.Backward = "w"
	cfg.Keybinds.Left = " "
	cfg.Keybinds.Jump = "a"

	m, err := Build(cfg)
	require.NoError(t, err)

	for _, a := range Actions() {
		k, ok := m.Key(a)
		require.True(t, ok)
		back, ok := m.Action(k)
		require.True(t, ok)
		assert.Equal(t, a, back)
	}
}

func TestBuildUnrecognizedKey(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.KeybindConfig)
		key    string
	}{
		{"forward", func(kb *config.KeybindConfig) { kb.Forward = "k" }, "k"},
		{"jump", func(kb *config.KeybindConfig) { kb.Jump = "space" }, "space"},
		{"uppercase", func(kb *config.KeybindConfig) { kb.Left = "A" }, "A"},
		{"empty", func(kb *config.KeybindConfig) { kb.Right = "" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg.Keybinds)

			m, err := Build(cfg)
			require.Error(t, err)
			assert.Nil(t, m)

			var unrec *UnrecognizedKeybindError
			require.True(t, errors.As(err, &unrec))
			assert.Equal(t, tt.key, unrec.Key)
		})
	}
}

func TestBuildRejectsSharedKey(t *testing.T) {
	cfg := config.Default()
	cfg.Keybinds.Jump = "w"

	m, err := Build(cfg)
	require.Error(t, err)
	assert.Nil(t, m)

	var dup *DuplicateKeyError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, KeyW, dup.Key)
	assert.Equal(t, Forward, dup.First)
	assert.Equal(t, Jump, dup.Second)
}

func TestEmptyMapResolvesNothing(t *testing.T) {
	m := Empty()
	assert.Equal(t, 0, m.Len())
	for _, k := range []KeyID{KeyW, KeyA, KeyS, KeyD, KeySpace} {
		_, ok := m.Action(k)
		assert.False(t, ok)
	}
	assert.False(t, m.Bound(Forward))

	var nilMap *Map
	assert.False(t, nilMap.Bound(Jump))
	_, ok := nilMap.Key(Forward)
	assert.False(t, ok)
	_, ok = nilMap.Action(KeyW)
	assert.False(t, ok)
}

func TestParseKey(t *testing.T) {
	k, err := ParseKey(" ")
	require.NoError(t, err)
	assert.Equal(t, KeySpace, k)
	assert.Equal(t, "Space", k.String())

	_, err = ParseKey("q")
	assert.EqualError(t, err, `unrecognized keybind found: "q"`)
}
