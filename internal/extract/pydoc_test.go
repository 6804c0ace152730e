package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringLiteral(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOk bool
	}{
		{`"""doc"""`, "doc", true},
		{`'''doc'''`, "doc", true},
		{`"doc"`, "doc", true},
		{`'doc'`, "doc", true},
		{`r"""raw\n"""`, `raw\n`, true},
		{`""`, "", true},
		{`b"bytes"`, "", false},
		{`f"{x}"`, "", false},
		{`"unterminated`, "", false},
	}
	for _, tt := range tests {
		got, ok := stringLiteral(tt.raw)
		assert.Equal(t, tt.wantOk, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestCleandoc(t *testing.T) {
	tests := map[string]struct {
		in   string
		want string
	}{
		"single line": {"  Says hello.  ", "Says hello.  "},
		"indented body": {
			in:   "Summary.\n\n    Details here.\n      Nested.\n    ",
			want: "Summary.\n\nDetails here.\n  Nested.",
		},
		"leading blank lines": {
			in:   "\n    First.\n    Second.\n",
			want: "First.\nSecond.",
		},
		"tabs": {
			in:   "Title.\n\tBody.",
			want: "Title.\nBody.",
		},
		"empty": {"", ""},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleandoc(tt.in))
		})
	}
}
