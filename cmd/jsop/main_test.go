package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitAndExportRoundTripThroughJSONFile(t *testing.T) {
	originalFS := fs
	fs = afero.NewMemMapFs()
	defer func() { fs = originalFS }()

	dbPath := filepath.Join(t.TempDir(), "data.jsop")
	require.NoError(t, afero.WriteFile(fs, "/in.json", []byte(`{"a":1,"b":[1,2,3]}`), 0o644))

	init := initCmd()
	init.SetArgs(nil)
	require.NoError(t, init.RunE(init, []string{dbPath, "/in.json"}))

	export := exportCmd()
	require.NoError(t, export.RunE(export, []string{dbPath, "/out.json"}))

	data, err := afero.ReadFile(fs, "/out.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1,"b":[1,2,3]}`, string(data))
}

func TestInitWithoutJSONPathDefaultsToEmptyObject(t *testing.T) {
	originalFS := fs
	fs = afero.NewMemMapFs()
	defer func() { fs = originalFS }()

	dbPath := filepath.Join(t.TempDir(), "data.jsop")

	init := initCmd()
	require.NoError(t, init.RunE(init, []string{dbPath}))

	export := exportCmd()
	var buf bytes.Buffer
	export.SetOut(&buf)
	require.NoError(t, export.RunE(export, []string{dbPath}))

	assert.JSONEq(t, `{}`, buf.String())
}
