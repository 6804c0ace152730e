package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lspwiki/internal/model"
)

const pythonSample = `import os, sys as system
from .pkg import helper
from . import sibling


class Greeter:
    """Says hello."""

    def __init__(self, name):
        self.name = name

    @property
    def greeting(self):
        def inner():
            return "hi"
        return inner()


def main():
    """Entry point.

    Runs the greeter.
    """
    Greeter("x")
`

func TestPythonExtractor(t *testing.T) {
	info := newPythonExtractor().Extract("app/main.py", []byte(pythonSample))

	assert.Equal(t, "python", info.Language)
	assert.Equal(t, []string{"os", "sys", ".pkg", "."}, info.Imports)
	assert.Empty(t, info.Exports)

	assert.Equal(t, []symbolLine{
		{"Greeter", model.KindClass, 6},
		{"inner", model.KindFunction, 14},
		{"main", model.KindFunction, 19},
	}, flatten(info.Symbols))

	require.Len(t, info.Symbols, 3)
	assert.Equal(t, []symbolLine{
		{"__init__", model.KindMethod, 9},
		{"greeting", model.KindMethod, 13},
	}, flatten(info.Symbols[0].Children))

	for _, s := range info.Symbols {
		assert.Equal(t, "app/main.py", s.File)
		assert.GreaterOrEqual(t, s.EndLine, s.Line)
	}
}
