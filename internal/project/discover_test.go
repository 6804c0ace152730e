package project

import (
	"reflect"
	"strings"
	"testing"
)

func sourcePaths(files []SourceFile) []string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return paths
}

func TestSourceFiles(t *testing.T) {
	dir := setupTestDir(t, []string{
		"main.py",
		"pkg/util.py",
		"pkg/__pycache__/util.cpython-311.py",
		"venv/lib/site.py",
		".venv/lib/site.py",
		"node_modules/x/index.py",
		"docs/readme.md",
	})

	files, err := SourceFiles(dir, LangPython, DiscoverOptions{})
	if err != nil {
		t.Fatalf("SourceFiles() error = %v", err)
	}
	want := []string{"main.py", "pkg/util.py"}
	if got := sourcePaths(files); !reflect.DeepEqual(got, want) {
		t.Errorf("SourceFiles() = %v, want %v", got, want)
	}
	for _, f := range files {
		if f.Language != LangPython {
			t.Errorf("%s language = %v, want python", f.Path, f.Language)
		}
		if !strings.HasSuffix(f.AbsPath, f.Path) {
			t.Errorf("AbsPath %q does not end with %q", f.AbsPath, f.Path)
		}
	}
}

func TestSourceFiles_TypeScriptIncludesJavaScript(t *testing.T) {
	dir := setupTestDir(t, []string{"src/a.ts", "src/b.tsx", "src/c.js", "dist/bundle.js", ".next/x.js"})

	files, err := SourceFiles(dir, LangTypeScript, DiscoverOptions{})
	if err != nil {
		t.Fatalf("SourceFiles() error = %v", err)
	}
	want := []string{"src/a.ts", "src/b.tsx", "src/c.js"}
	if got := sourcePaths(files); !reflect.DeepEqual(got, want) {
		t.Errorf("SourceFiles() = %v, want %v", got, want)
	}
	if files[2].Language != LangJavaScript {
		t.Errorf("c.js language = %v, want javascript", files[2].Language)
	}
}

func TestSourceFiles_Options(t *testing.T) {
	dir := setupTestTree(t, map[string]string{
		".gitignore":        "generated/\n*_gen.go\n",
		"main.go":           "package main",
		"api_gen.go":        "package main",
		"generated/x.go":    "package generated",
		"third_party/y.go":  "package y",
		"big/huge.go":       strings.Repeat("/", 2048),
		"internal/small.go": "package internal",
	})

	tests := []struct {
		name string
		opts DiscoverOptions
		want []string
	}{
		{
			name: "defaults",
			opts: DiscoverOptions{},
			want: []string{"api_gen.go", "big/huge.go", "generated/x.go", "internal/small.go", "main.go", "third_party/y.go"},
		},
		{
			name: "gitignore",
			opts: DiscoverOptions{RespectGitignore: true},
			want: []string{"big/huge.go", "internal/small.go", "main.go", "third_party/y.go"},
		},
		{
			name: "extra excludes",
			opts: DiscoverOptions{Exclude: []string{"third_party"}},
			want: []string{"api_gen.go", "big/huge.go", "generated/x.go", "internal/small.go", "main.go"},
		},
		{
			name: "size limit",
			opts: DiscoverOptions{MaxFileSizeBytes: 1024},
			want: []string{"api_gen.go", "generated/x.go", "internal/small.go", "main.go", "third_party/y.go"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := SourceFiles(dir, LangGo, tt.opts)
			if err != nil {
				t.Fatalf("SourceFiles() error = %v", err)
			}
			if got := sourcePaths(files); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SourceFiles() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSourceFiles_UnknownLanguage(t *testing.T) {
	dir := setupTestDir(t, []string{"a.txt"})
	files, err := SourceFiles(dir, LangUnknown, DiscoverOptions{})
	if err != nil {
		t.Fatalf("SourceFiles() error = %v", err)
	}
	if files == nil || len(files) != 0 {
		t.Errorf("SourceFiles() = %#v, want empty non-nil", files)
	}
}

func TestEntryPoints(t *testing.T) {
	tests := []struct {
		name  string
		lang  Language
		files []string
		want  []string
	}{
		{
			name:  "Python",
			lang:  LangPython,
			files: []string{"app.py", "main.py", "pkg/__main__.py", "pkg/app.py", "venv/main.py", "lib.py"},
			want:  []string{"main.py", "app.py", "pkg/app.py", "pkg/__main__.py"},
		},
		{
			name:  "Go cmd layout",
			lang:  LangGo,
			files: []string{"cmd/server/main.go", "cmd/cli/main.go", "internal/x.go"},
			want:  []string{"cmd/cli/main.go", "cmd/server/main.go"},
		},
		{
			name:  "TypeScript",
			lang:  LangTypeScript,
			files: []string{"src/index.ts", "src/App.tsx", "node_modules/a/index.ts"},
			want:  []string{"src/index.ts", "src/App.tsx"},
		},
		{
			name:  "Rust",
			lang:  LangRust,
			files: []string{"src/lib.rs", "src/main.rs", "target/debug/main.rs"},
			want:  []string{"src/main.rs", "src/lib.rs"},
		},
		{
			name:  "None",
			lang:  LangJava,
			files: []string{"src/Foo.java"},
			want:  []string{},
		},
		{
			name:  "Unknown language",
			lang:  LangUnknown,
			files: []string{"main.py"},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := setupTestDir(t, tt.files)
			got := EntryPoints(dir, tt.lang, DiscoverOptions{})
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("EntryPoints() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRootExists(t *testing.T) {
	dir := setupTestDir(t, []string{"file.txt"})
	if !RootExists(dir) {
		t.Error("RootExists(dir) = false")
	}
	if RootExists(dir + "/file.txt") {
		t.Error("RootExists(file) = true")
	}
	if RootExists(dir + "/missing") {
		t.Error("RootExists(missing) = true")
	}
}
