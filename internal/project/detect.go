// Package project provides language, framework, dependency and entry-point
// detection for a source tree.
package project

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Language represents a programming language.
type Language string

const (
	LangGo         Language = "go"
	LangTypeScript Language = "typescript"
	LangJavaScript Language = "javascript"
	LangPython     Language = "python"
	LangRust       Language = "rust"
	LangJava       Language = "java"
	LangCpp        Language = "cpp"
	LangUnknown    Language = "unknown"
)

// Language server identifiers, keys into config.LspConfig.Servers.
const (
	ServerTypeScript = "typescript-language-server"
	ServerPython     = "pylsp"
	ServerGo         = "gopls"
	ServerRust       = "rust-analyzer"
	ServerJava       = "jdtls"
	ServerCpp        = "clangd"
)

// Detection is the outcome of project detection.
type Detection struct {
	Language  Language
	Server    string // language server identifier, "" if none
	Framework string // "" if none detected
	Manifest  string // manifest file that decided the language, "" if none
}

// manifestRule maps a manifest file to a language and server.
// Rules are checked in order; the first existing manifest wins.
type manifestRule struct {
	files  []string
	lang   Language
	server string
}

// Ecosystem manifest, then language toolchain manifests, then build-file fallback.
var manifestRules = []manifestRule{
	{[]string{"package.json"}, LangJavaScript, ServerTypeScript},
	{[]string{"pyproject.toml", "setup.py", "requirements.txt", "Pipfile", "setup.cfg"}, LangPython, ServerPython},
	{[]string{"go.mod"}, LangGo, ServerGo},
	{[]string{"Cargo.toml"}, LangRust, ServerRust},
	{[]string{"pom.xml", "build.gradle", "build.gradle.kts"}, LangJava, ServerJava},
	{[]string{"CMakeLists.txt", "Makefile"}, LangCpp, ServerCpp},
}

// DetectLanguage detects the primary language of a project from manifest files.
// Returns the language, manifest path, and whether detection succeeded.
func DetectLanguage(root string) (Language, string, bool) {
	for _, rule := range manifestRules {
		for _, name := range rule.files {
			if !fileExists(filepath.Join(root, name)) {
				continue
			}
			lang := rule.lang
			if name == "package.json" {
				lang = detectJSorTS(root)
			}
			return lang, name, true
		}
	}
	return LangUnknown, "", false
}

// Detect returns the (language, server, framework) triple for root.
// An unrecognized project yields LangUnknown with no server; it is never an error.
func Detect(root string, opts DiscoverOptions, logger *slog.Logger) Detection {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	lang, manifest, ok := DetectLanguage(root)
	if !ok {
		return Detection{Language: LangUnknown}
	}

	d := Detection{
		Language: lang,
		Server:   ServerForLanguage(lang),
		Manifest: manifest,
	}
	d.Framework = DetectFramework(root, lang, opts, logger)

	logger.Debug("Detected project",
		"language", d.Language,
		"server", d.Server,
		"framework", d.Framework,
		"manifest", d.Manifest,
	)
	return d
}

// ServerForLanguage returns the language server identifier for lang.
func ServerForLanguage(lang Language) string {
	for _, rule := range manifestRules {
		if rule.lang == lang {
			return rule.server
		}
	}
	if lang == LangTypeScript {
		return ServerTypeScript
	}
	return ""
}

// detectJSorTS checks if a package.json project is TypeScript or JavaScript.
// A tsconfig.json or a typescript (dev)dependency means TypeScript.
func detectJSorTS(root string) Language {
	if fileExists(filepath.Join(root, "tsconfig.json")) {
		return LangTypeScript
	}
	pkg, err := readPackageJSON(root)
	if err != nil {
		return LangJavaScript
	}
	if _, ok := pkg.Dependencies["typescript"]; ok {
		return LangTypeScript
	}
	if _, ok := pkg.DevDependencies["typescript"]; ok {
		return LangTypeScript
	}
	return LangJavaScript
}

// packageJSON is the subset of package.json lspwiki reads.
type packageJSON struct {
	Name            string            `json:"name"`
	Main            string            `json:"main"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

func readPackageJSON(root string) (*packageJSON, error) {
	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		return nil, err
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// extensions lists source extensions per language.
var extensions = map[Language][]string{
	LangPython:     {".py"},
	LangTypeScript: {".ts", ".tsx"},
	LangJavaScript: {".js", ".jsx", ".mjs"},
	LangGo:         {".go"},
	LangRust:       {".rs"},
	LangJava:       {".java"},
	LangCpp:        {".cpp", ".hpp", ".c", ".h", ".cc", ".cxx"},
}

// Extensions returns the source extensions analyzed for a project language.
// TypeScript projects also include JavaScript sources.
func Extensions(lang Language) []string {
	exts := append([]string(nil), extensions[lang]...)
	if lang == LangTypeScript {
		exts = append(exts, extensions[LangJavaScript]...)
	}
	return exts
}

// LanguageForPath returns the language of a single file by extension.
func LanguageForPath(path string) Language {
	ext := strings.ToLower(filepath.Ext(path))
	for lang, exts := range extensions {
		for _, e := range exts {
			if e == ext {
				return lang
			}
		}
	}
	return LangUnknown
}

// LanguageID returns the LSP languageId for a file, which is finer grained
// than Language for React dialects and C headers.
func LanguageID(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsx":
		return "typescriptreact"
	case ".jsx":
		return "javascriptreact"
	case ".c", ".h":
		return "c"
	}
	return string(LanguageForPath(path))
}

// LanguageDisplayName returns a human-readable name for the language.
func LanguageDisplayName(lang Language) string {
	switch lang {
	case LangGo:
		return "Go"
	case LangTypeScript:
		return "TypeScript"
	case LangJavaScript:
		return "JavaScript"
	case LangPython:
		return "Python"
	case LangRust:
		return "Rust"
	case LangJava:
		return "Java"
	case LangCpp:
		return "C/C++"
	default:
		return "Unknown"
	}
}
