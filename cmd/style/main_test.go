package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "WARN", "json")
	logger.Info("hidden")
	logger.Warn("shown", "k", 1)

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, `"msg":"shown"`)

	buf.Reset()
	newLogger(&buf, "bogus", "text").Info("hello")
	require.Contains(t, buf.String(), "msg=hello")
}

func TestRunValidate_Text(t *testing.T) {
	var buf bytes.Buffer
	ok, err := runValidate(&buf, []byte(`{"version": 8, "sources": {}, "layers": [
		{"id": "a", "type": "fill", "source": "missing"}]}`), false)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, "layer 0 source: source \"missing\" not found\n", buf.String())
}

func TestRunValidate_MistypedField(t *testing.T) {
	var buf bytes.Buffer
	ok, err := runValidate(&buf, []byte(`{"version": 8, "sources": {}, "layers": [
		{"id": "a", "type": "background", "minzoom": "3"}]}`), false)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, "layer 0 minzoom: number expected, string found\n", buf.String())
}

func TestRunValidate_YAML(t *testing.T) {
	doc := strings.Join([]string{
		"version: 8",
		"sources: {}",
		"layers:",
		"  - id: bg",
		"    type: background",
		"    paint:",
		"      background-color: '#fff'",
	}, "\n")

	var buf bytes.Buffer
	ok, err := runValidate(&buf, []byte(doc), true)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "[]\n", buf.String())
}

func TestRunValidate_Malformed(t *testing.T) {
	_, err := runValidate(&bytes.Buffer{}, []byte("layers: [unclosed"), false)
	require.Error(t, err)
}
