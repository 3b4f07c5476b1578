package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-motion/pkg/motion"
	"github.com/teslashibe/go-motion/pkg/motionjson"
)

func TestLoadBuiltIn(t *testing.T) {
	r := NewRegistry(WithStrict(true))
	require.NoError(t, r.LoadBuiltIn())

	assert.Equal(t, []string{"idle", "nod", "shake"}, r.List())
	assert.Equal(t, []string{"sad", "smile", "surprised"}, r.Expressions())

	for _, name := range r.List() {
		doc, err := r.Motion(name)
		require.NoError(t, err)
		_, err = motion.NewKeyframeMotion(doc)
		assert.NoError(t, err, name)
	}

	info, err := r.Info("nod")
	require.NoError(t, err)
	assert.Equal(t, 1.5, info.Duration)
	assert.Equal(t, 1, info.Events)
	assert.False(t, info.Loop)

	exp, err := r.ExpressionInfo("surprised")
	require.NoError(t, err)
	assert.Equal(t, 3, exp.Parameters)
	assert.Equal(t, motionjson.DefaultFadeTime, exp.FadeOutTime)
}

func TestNotFound(t *testing.T) {
	r := NewRegistry()
	_, err := r.Motion("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.Expression("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.Info("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("tap_01.motion3.json", `{"Meta": {"Duration": 1}, "Curves": [{"Target": "Parameter", "Id": "P", "Segments": [0, 0, 0, 1, 1]}]}`)
	write("tap_02.motion3.json", `{"Meta": {"Duration": 1}, "Curves": [{"Target": "Parameter", "Id": "P", "Segments": [0, 1, 0, 1, 0]}]}`)
	write("wink.exp3.json", `{"Parameters": [{"Id": "ParamEyeLOpen", "Value": 0, "Blend": "Overwrite"}]}`)
	write("notes.txt", "ignored")

	r := NewRegistry()
	require.NoError(t, r.LoadDir(dir))

	motions, expressions := r.Count()
	assert.Equal(t, 2, motions)
	assert.Equal(t, 1, expressions)
	assert.Equal(t, map[string][]string{"tap": {"tap_01", "tap_02"}}, r.Groups())
	assert.Equal(t, []string{"tap_02"}, r.Search("TAP_02"))

	r.Unregister("tap_01")
	assert.Equal(t, []string{"tap_02"}, r.List())
}

func TestLoadDirRejectsBadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.motion3.json"),
		[]byte(`{"Meta": {"Duration": 1}, "Curves": [{"Target": "Parameter", "Id": "P", "Segments": [0, 0, 9, 1, 1]}]}`), 0o644))

	err := NewRegistry().LoadDir(dir)
	assert.ErrorIs(t, err, motionjson.ErrInvalidSegmentType)
}

func TestLoadFileUnknownType(t *testing.T) {
	file := filepath.Join(t.TempDir(), "x.json")
	require.NoError(t, os.WriteFile(file, []byte(`{}`), 0o644))
	assert.ErrorIs(t, NewRegistry().LoadFile(file), ErrUnknownFileType)
}

func TestGroupOf(t *testing.T) {
	tests := map[string]string{
		"idle":        "idle",
		"idle_01":     "idle",
		"tap_body-02": "tap_body",
		"yes1":        "yes",
		"007":         "007",
	}
	for in, want := range tests {
		assert.Equal(t, want, groupOf(in), in)
	}
}
