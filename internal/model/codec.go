package model

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a serialization format for ProjectAnalysis.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// Encode writes the analysis in the given format.
// JSON is indented with two spaces and ends with a newline. The caller's
// analysis is left untouched.
func Encode(w io.Writer, a *ProjectAnalysis, format Format) error {
	a = cloneForEncode(a)
	normalize(a)
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(a)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(a); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// Decode reads an analysis previously written by Encode.
func Decode(r io.Reader, format Format) (*ProjectAnalysis, error) {
	var a ProjectAnalysis
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&a); err != nil {
			return nil, fmt.Errorf("failed to decode analysis: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&a); err != nil {
			return nil, fmt.Errorf("failed to decode analysis: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	normalize(&a)
	return &a, nil
}

// cloneForEncode copies every struct normalize writes to. String lists and
// the call graph are only ever replaced, never modified, so they are shared.
func cloneForEncode(a *ProjectAnalysis) *ProjectAnalysis {
	cp := *a
	if a.Files != nil {
		cp.Files = make([]FileInfo, len(a.Files))
		for i, f := range a.Files {
			f.Symbols = cloneSymbols(f.Symbols)
			cp.Files[i] = f
		}
	}
	return &cp
}

func cloneSymbols(symbols []Symbol) []Symbol {
	if symbols == nil {
		return nil
	}
	out := make([]Symbol, len(symbols))
	for i, s := range symbols {
		s.Children = cloneSymbols(s.Children)
		out[i] = s
	}
	return out
}

// normalize replaces nil lists and maps with empty ones so both formats
// emit [] / {} and decoded values compare equal to freshly built ones.
func normalize(a *ProjectAnalysis) {
	if a.EntryPoints == nil {
		a.EntryPoints = []string{}
	}
	if a.Files == nil {
		a.Files = []FileInfo{}
	}
	if a.Dependencies.Runtime == nil {
		a.Dependencies.Runtime = []string{}
	}
	if a.Dependencies.Dev == nil {
		a.Dependencies.Dev = []string{}
	}
	if a.CallGraph == nil {
		a.CallGraph = map[string][]string{}
	}
	for i := range a.Files {
		f := &a.Files[i]
		if f.Symbols == nil {
			f.Symbols = []Symbol{}
		}
		if f.Imports == nil {
			f.Imports = []string{}
		}
		if f.Exports == nil {
			f.Exports = []string{}
		}
		for j := range f.Symbols {
			f.Symbols[j].Walk(func(s *Symbol, _ int) bool {
				if s.Children == nil {
					s.Children = []Symbol{}
				}
				if s.References == nil {
					s.References = []string{}
				}
				if s.Calls == nil {
					s.Calls = []string{}
				}
				if s.CalledBy == nil {
					s.CalledBy = []string{}
				}
				return true
			})
		}
	}
}
