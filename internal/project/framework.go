package project

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
)

// frameworkRule names a framework recognized by a dependency name.
type frameworkRule struct {
	dep  string
	name string
}

// Checked in order; the first dependency present wins.
var jsFrameworks = []frameworkRule{
	{"next", "Next.js"},
	{"react", "React"},
	{"vue", "Vue"},
	{"express", "Express"},
	{"fastify", "Fastify"},
	{"@angular/core", "Angular"},
	{"svelte", "Svelte"},
	{"@nestjs/core", "NestJS"},
}

var goFrameworks = []frameworkRule{
	{"github.com/gin-gonic/gin", "Gin"},
	{"github.com/labstack/echo/v4", "Echo"},
	{"github.com/gofiber/fiber/v2", "Fiber"},
	{"github.com/go-chi/chi/v5", "Chi"},
}

var rustFrameworks = []frameworkRule{
	{"actix-web", "Actix"},
	{"axum", "Axum"},
	{"rocket", "Rocket"},
}

// pythonFrameworks are matched by import statements in source files.
var pythonFrameworks = []struct {
	module string
	name   string
}{
	{"fastapi", "FastAPI"},
	{"django", "Django"},
	{"flask", "Flask"},
}

// DetectFramework infers a framework hint for a detected language.
// Manifest-driven languages check dependency names; Python scans sources for
// framework imports and stops at the first file that has one.
func DetectFramework(root string, lang Language, opts DiscoverOptions, logger *slog.Logger) string {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	switch lang {
	case LangTypeScript, LangJavaScript:
		pkg, err := readPackageJSON(root)
		if err != nil {
			logger.Debug("Unreadable package.json, no framework", "error", err)
			return ""
		}
		names := make(map[string]struct{}, len(pkg.Dependencies)+len(pkg.DevDependencies))
		for n := range pkg.Dependencies {
			names[n] = struct{}{}
		}
		for n := range pkg.DevDependencies {
			names[n] = struct{}{}
		}
		return matchFramework(jsFrameworks, names)

	case LangGo:
		data, err := os.ReadFile(filepath.Join(root, "go.mod"))
		if err != nil {
			return ""
		}
		f, err := modfile.ParseLax("go.mod", data, nil)
		if err != nil {
			logger.Debug("Unparseable go.mod, no framework", "error", err)
			return ""
		}
		names := make(map[string]struct{}, len(f.Require))
		for _, r := range f.Require {
			names[r.Mod.Path] = struct{}{}
		}
		return matchFramework(goFrameworks, names)

	case LangRust:
		deps := cargoDependencies(root, logger)
		names := make(map[string]struct{}, len(deps.Runtime))
		for _, n := range deps.Runtime {
			names[n] = struct{}{}
		}
		return matchFramework(rustFrameworks, names)

	case LangPython:
		return detectPythonFramework(root, opts, logger)
	}
	return ""
}

func matchFramework(rules []frameworkRule, names map[string]struct{}) string {
	for _, r := range rules {
		if _, ok := names[r.dep]; ok {
			return r.name
		}
	}
	return ""
}

func detectPythonFramework(root string, opts DiscoverOptions, logger *slog.Logger) string {
	files, err := SourceFiles(root, LangPython, opts)
	if err != nil {
		logger.Debug("Python framework scan failed", "error", err)
		return ""
	}
	for _, f := range files {
		data, err := os.ReadFile(f.AbsPath)
		if err != nil {
			continue
		}
		if name := pythonFrameworkImport(string(data)); name != "" {
			return name
		}
	}
	return ""
}

// pythonFrameworkImport returns the first framework imported by content.
func pythonFrameworkImport(content string) string {
	for _, fw := range pythonFrameworks {
		if strings.Contains(content, "from "+fw.module) || strings.Contains(content, "import "+fw.module) {
			return fw.name
		}
	}
	return ""
}
