package project

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// Helper to create a temp directory with empty files
func setupTestDir(t *testing.T, files []string) string {
	t.Helper()
	contents := make(map[string]string, len(files))
	for _, f := range files {
		contents[f] = ""
	}
	return setupTestTree(t, contents)
}

// Helper to create a temp directory with file contents
func setupTestTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for f, content := range files {
		path := filepath.Join(dir, f)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", f, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to create file %s: %v", f, err)
		}
	}
	return dir
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name         string
		files        []string
		wantLang     Language
		wantManifest string
		wantOk       bool
	}{
		{
			name:         "Go project",
			files:        []string{"go.mod", "main.go"},
			wantLang:     LangGo,
			wantManifest: "go.mod",
			wantOk:       true,
		},
		{
			name:         "TypeScript project",
			files:        []string{"package.json", "tsconfig.json", "src/index.ts"},
			wantLang:     LangTypeScript,
			wantManifest: "package.json",
			wantOk:       true,
		},
		{
			name:         "JavaScript project (no tsconfig)",
			files:        []string{"package.json", "src/index.js"},
			wantLang:     LangJavaScript,
			wantManifest: "package.json",
			wantOk:       true,
		},
		{
			name:         "Python project with pyproject.toml",
			files:        []string{"pyproject.toml", "src/main.py"},
			wantLang:     LangPython,
			wantManifest: "pyproject.toml",
			wantOk:       true,
		},
		{
			name:         "Python project with requirements.txt",
			files:        []string{"requirements.txt", "app.py"},
			wantLang:     LangPython,
			wantManifest: "requirements.txt",
			wantOk:       true,
		},
		{
			name:         "Rust project",
			files:        []string{"Cargo.toml", "src/main.rs"},
			wantLang:     LangRust,
			wantManifest: "Cargo.toml",
			wantOk:       true,
		},
		{
			name:         "Java Maven project",
			files:        []string{"pom.xml", "src/main/java/App.java"},
			wantLang:     LangJava,
			wantManifest: "pom.xml",
			wantOk:       true,
		},
		{
			name:         "Java Gradle project",
			files:        []string{"build.gradle", "src/main/java/App.java"},
			wantLang:     LangJava,
			wantManifest: "build.gradle",
			wantOk:       true,
		},
		{
			name:         "C++ project with CMake",
			files:        []string{"CMakeLists.txt", "src/main.cpp"},
			wantLang:     LangCpp,
			wantManifest: "CMakeLists.txt",
			wantOk:       true,
		},
		{
			name:         "package.json wins over go.mod",
			files:        []string{"go.mod", "package.json"},
			wantLang:     LangJavaScript,
			wantManifest: "package.json",
			wantOk:       true,
		},
		{
			name:     "Unknown project",
			files:    []string{"README.md", "random.txt"},
			wantLang: LangUnknown,
			wantOk:   false,
		},
		{
			name:     "Empty directory",
			files:    []string{},
			wantLang: LangUnknown,
			wantOk:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := setupTestDir(t, tt.files)
			lang, manifest, ok := DetectLanguage(dir)
			if lang != tt.wantLang {
				t.Errorf("DetectLanguage() lang = %v, want %v", lang, tt.wantLang)
			}
			if manifest != tt.wantManifest {
				t.Errorf("DetectLanguage() manifest = %q, want %q", manifest, tt.wantManifest)
			}
			if ok != tt.wantOk {
				t.Errorf("DetectLanguage() ok = %v, want %v", ok, tt.wantOk)
			}
		})
	}
}

func TestDetectLanguage_ManifestsInSubdirsIgnored(t *testing.T) {
	files := []string{
		"node_modules/some-pkg/package.json",
		"vendor/somelib/go.mod",
		"README.md",
	}
	dir := setupTestDir(t, files)

	lang, _, ok := DetectLanguage(dir)
	if ok {
		t.Errorf("DetectLanguage() should only look at root manifests, got %v", lang)
	}
}

func TestDetectLanguage_TypeScriptDependency(t *testing.T) {
	dir := setupTestTree(t, map[string]string{
		"package.json": `{"devDependencies": {"typescript": "^5.0.0"}}`,
	})
	lang, _, _ := DetectLanguage(dir)
	if lang != LangTypeScript {
		t.Errorf("DetectLanguage() = %v, want %v", lang, LangTypeScript)
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name          string
		files         map[string]string
		wantLang      Language
		wantServer    string
		wantFramework string
	}{
		{
			name: "Flask app",
			files: map[string]string{
				"requirements.txt": "flask==2.0\n",
				"app.py":           "from flask import Flask\napp = Flask(__name__)\n",
			},
			wantLang:      LangPython,
			wantServer:    ServerPython,
			wantFramework: "Flask",
		},
		{
			name: "FastAPI beats Flask in the same file",
			files: map[string]string{
				"pyproject.toml": "[project]\nname = \"svc\"\n",
				"main.py":        "import flask\nfrom fastapi import FastAPI\n",
			},
			wantLang:      LangPython,
			wantServer:    ServerPython,
			wantFramework: "FastAPI",
		},
		{
			name: "React without tsconfig",
			files: map[string]string{
				"package.json": `{"dependencies": {"react": "^18.0.0", "react-dom": "^18.0.0"}}`,
			},
			wantLang:      LangJavaScript,
			wantServer:    ServerTypeScript,
			wantFramework: "React",
		},
		{
			name: "Next.js preferred over React",
			files: map[string]string{
				"package.json":  `{"dependencies": {"react": "18", "next": "14"}}`,
				"tsconfig.json": "{}",
			},
			wantLang:      LangTypeScript,
			wantServer:    ServerTypeScript,
			wantFramework: "Next.js",
		},
		{
			name: "Go with gin",
			files: map[string]string{
				"go.mod": "module example.com/svc\n\ngo 1.22\n\nrequire github.com/gin-gonic/gin v1.9.1\n",
			},
			wantLang:      LangGo,
			wantServer:    ServerGo,
			wantFramework: "Gin",
		},
		{
			name: "Rust with axum",
			files: map[string]string{
				"Cargo.toml": "[package]\nname = \"svc\"\n\n[dependencies]\naxum = \"0.7\"\ntokio = { version = \"1\", features = [\"full\"] }\n",
			},
			wantLang:      LangRust,
			wantServer:    ServerRust,
			wantFramework: "Axum",
		},
		{
			name: "Plain Java",
			files: map[string]string{
				"pom.xml": "<project></project>",
			},
			wantLang:   LangJava,
			wantServer: ServerJava,
		},
		{
			name: "Unknown project",
			files: map[string]string{
				"notes.txt": "hello",
			},
			wantLang: LangUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := setupTestTree(t, tt.files)
			got := Detect(dir, DiscoverOptions{}, nil)
			if got.Language != tt.wantLang {
				t.Errorf("Detect() language = %v, want %v", got.Language, tt.wantLang)
			}
			if got.Server != tt.wantServer {
				t.Errorf("Detect() server = %q, want %q", got.Server, tt.wantServer)
			}
			if got.Framework != tt.wantFramework {
				t.Errorf("Detect() framework = %q, want %q", got.Framework, tt.wantFramework)
			}
		})
	}
}

func TestDetect_MalformedPackageJSON(t *testing.T) {
	dir := setupTestTree(t, map[string]string{
		"package.json": "{not json",
	})
	got := Detect(dir, DiscoverOptions{}, nil)
	if got.Language != LangJavaScript {
		t.Errorf("Detect() language = %v, want %v", got.Language, LangJavaScript)
	}
	if got.Framework != "" {
		t.Errorf("Detect() framework = %q, want empty", got.Framework)
	}
}

func TestExtensions(t *testing.T) {
	ts := Extensions(LangTypeScript)
	want := []string{".ts", ".tsx", ".js", ".jsx", ".mjs"}
	if !reflect.DeepEqual(ts, want) {
		t.Errorf("Extensions(typescript) = %v, want %v", ts, want)
	}
	if got := Extensions(LangUnknown); len(got) != 0 {
		t.Errorf("Extensions(unknown) = %v, want empty", got)
	}

	// The shared table must not be mutated by callers.
	ts[0] = ".changed"
	if Extensions(LangTypeScript)[0] != ".ts" {
		t.Error("Extensions() returned a shared slice")
	}
}

func TestLanguageForPath(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"main.go", LangGo},
		{"src/App.tsx", LangTypeScript},
		{"lib/util.mjs", LangJavaScript},
		{"pkg/mod.py", LangPython},
		{"src/lib.rs", LangRust},
		{"Main.java", LangJava},
		{"include/api.hpp", LangCpp},
		{"README.md", LangUnknown},
	}
	for _, tt := range tests {
		if got := LanguageForPath(tt.path); got != tt.want {
			t.Errorf("LanguageForPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestLanguageID(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a.ts", "typescript"},
		{"a.tsx", "typescriptreact"},
		{"a.jsx", "javascriptreact"},
		{"a.js", "javascript"},
		{"a.c", "c"},
		{"a.cc", "cpp"},
		{"a.py", "python"},
	}
	for _, tt := range tests {
		if got := LanguageID(tt.path); got != tt.want {
			t.Errorf("LanguageID(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestServerForLanguage(t *testing.T) {
	tests := []struct {
		lang Language
		want string
	}{
		{LangTypeScript, ServerTypeScript},
		{LangJavaScript, ServerTypeScript},
		{LangPython, ServerPython},
		{LangGo, ServerGo},
		{LangRust, ServerRust},
		{LangJava, ServerJava},
		{LangCpp, ServerCpp},
		{LangUnknown, ""},
	}
	for _, tt := range tests {
		if got := ServerForLanguage(tt.lang); got != tt.want {
			t.Errorf("ServerForLanguage(%v) = %q, want %q", tt.lang, got, tt.want)
		}
	}
}

func TestLanguageDisplayName(t *testing.T) {
	if got := LanguageDisplayName(LangCpp); got != "C/C++" {
		t.Errorf("LanguageDisplayName(cpp) = %q", got)
	}
	if got := LanguageDisplayName(Language("cobol")); got != "Unknown" {
		t.Errorf("LanguageDisplayName(cobol) = %q", got)
	}
}
