//go:build cgo

package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPythonExtractor_RangesAndDocstrings(t *testing.T) {
	info := newPythonExtractor().Extract("app/main.py", []byte(pythonSample))
	require.Len(t, info.Symbols, 3)

	greeter := info.Symbols[0]
	assert.Equal(t, 16, greeter.EndLine)
	assert.Equal(t, "Says hello.", greeter.Docstring)
	require.Len(t, greeter.Children, 2)
	assert.Equal(t, 10, greeter.Children[0].EndLine)
	assert.Empty(t, greeter.Children[0].Docstring)
	assert.Equal(t, 16, greeter.Children[1].EndLine)

	inner := info.Symbols[1]
	assert.Equal(t, 15, inner.EndLine)

	main := info.Symbols[2]
	assert.Equal(t, 24, main.EndLine)
	assert.Equal(t, "Entry point.\n\nRuns the greeter.", main.Docstring)
}

func TestPythonExtractor_SyntaxError(t *testing.T) {
	info := newPythonExtractor().Extract("bad.py", []byte("import os\n\ndef broken(:\n    pass\n"))
	assert.Empty(t, info.Symbols)
	assert.Empty(t, info.Imports)
	assert.NotNil(t, info.Symbols)
}
