package project

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	cargotoml "github.com/BurntSushi/toml"
	toml "github.com/pelletier/go-toml/v2"
	"golang.org/x/mod/modfile"

	"lspwiki/internal/errors"
	"lspwiki/internal/model"
)

// Dependencies extracts declared dependencies for the detected language.
// Missing or malformed manifests degrade to empty lists; this never fails.
func Dependencies(root string, lang Language, logger *slog.Logger) model.Dependencies {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var deps model.Dependencies
	switch lang {
	case LangTypeScript, LangJavaScript:
		deps = packageJSONDependencies(root, logger)
	case LangPython:
		deps = pythonDependencies(root, logger)
	case LangGo:
		deps = goModDependencies(root, logger)
	case LangRust:
		deps = cargoDependencies(root, logger)
	case LangJava:
		deps = mavenDependencies(root, logger)
		gradle := gradleDependencies(root)
		deps.Runtime = append(deps.Runtime, gradle.Runtime...)
		deps.Dev = append(deps.Dev, gradle.Dev...)
	default:
		deps = model.NewDependencies()
	}
	deps.Runtime = dedupe(deps.Runtime)
	deps.Dev = dedupe(deps.Dev)
	return deps
}

func logManifestError(logger *slog.Logger, manifest string, err error) {
	logger.Debug("Ignoring manifest",
		"manifest", manifest,
		"error", errors.New(errors.MalformedManifest, "cannot parse "+manifest, err),
	)
}

func packageJSONDependencies(root string, logger *slog.Logger) model.Dependencies {
	deps := model.NewDependencies()
	pkg, err := readPackageJSON(root)
	if err != nil {
		if !os.IsNotExist(err) {
			logManifestError(logger, "package.json", err)
		}
		return deps
	}
	deps.Runtime = sortedKeys(pkg.Dependencies)
	deps.Dev = sortedKeys(pkg.DevDependencies)
	return deps
}

// pythonDependencies merges requirements.txt, pyproject.toml and Pipfile.
func pythonDependencies(root string, logger *slog.Logger) model.Dependencies {
	deps := model.NewDependencies()

	if data, err := os.ReadFile(filepath.Join(root, "requirements.txt")); err == nil {
		deps.Runtime = append(deps.Runtime, parseRequirements(data)...)
	}
	if data, err := os.ReadFile(filepath.Join(root, "requirements-dev.txt")); err == nil {
		deps.Dev = append(deps.Dev, parseRequirements(data)...)
	}

	if data, err := os.ReadFile(filepath.Join(root, "pyproject.toml")); err == nil {
		runtime, dev, err := parsePyproject(data)
		if err != nil {
			logManifestError(logger, "pyproject.toml", err)
		} else {
			deps.Runtime = append(deps.Runtime, runtime...)
			deps.Dev = append(deps.Dev, dev...)
		}
	}

	if data, err := os.ReadFile(filepath.Join(root, "Pipfile")); err == nil {
		var pipfile struct {
			Packages    map[string]interface{} `toml:"packages"`
			DevPackages map[string]interface{} `toml:"dev-packages"`
		}
		if err := toml.Unmarshal(data, &pipfile); err != nil {
			logManifestError(logger, "Pipfile", err)
		} else {
			deps.Runtime = append(deps.Runtime, sortedKeys(pipfile.Packages)...)
			deps.Dev = append(deps.Dev, sortedKeys(pipfile.DevPackages)...)
		}
	}
	return deps
}

// parseRequirements reads a pip requirements file: one requirement per line,
// comments, blank lines and pip options skipped, version specifiers stripped.
func parseRequirements(data []byte) []string {
	var out []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if i := strings.Index(line, " #"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		if name := requirementName(line); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// requirementName strips version specifiers, extras and markers from a PEP 508 string.
func requirementName(spec string) string {
	end := strings.IndexAny(spec, "<>=!~;[@ (")
	if end >= 0 {
		spec = spec[:end]
	}
	return strings.TrimSpace(spec)
}

func parsePyproject(data []byte) (runtime, dev []string, err error) {
	var doc struct {
		Project struct {
			Dependencies         []string            `toml:"dependencies"`
			OptionalDependencies map[string][]string `toml:"optional-dependencies"`
		} `toml:"project"`
		DependencyGroups map[string][]interface{} `toml:"dependency-groups"`
		Tool             struct {
			Poetry struct {
				Dependencies    map[string]interface{} `toml:"dependencies"`
				DevDependencies map[string]interface{} `toml:"dev-dependencies"`
				Group           map[string]struct {
					Dependencies map[string]interface{} `toml:"dependencies"`
				} `toml:"group"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, nil, err
	}

	for _, spec := range doc.Project.Dependencies {
		runtime = append(runtime, requirementName(spec))
	}
	for _, group := range sortedKeys(doc.Project.OptionalDependencies) {
		for _, spec := range doc.Project.OptionalDependencies[group] {
			dev = append(dev, requirementName(spec))
		}
	}
	for _, group := range sortedKeys(doc.DependencyGroups) {
		for _, item := range doc.DependencyGroups[group] {
			// include-group tables are skipped
			if spec, ok := item.(string); ok {
				dev = append(dev, requirementName(spec))
			}
		}
	}

	poetry := doc.Tool.Poetry
	for _, name := range sortedKeys(poetry.Dependencies) {
		if name != "python" {
			runtime = append(runtime, name)
		}
	}
	dev = append(dev, sortedKeys(poetry.DevDependencies)...)
	for _, group := range sortedKeys(poetry.Group) {
		dev = append(dev, sortedKeys(poetry.Group[group].Dependencies)...)
	}
	return runtime, dev, nil
}

// goModDependencies lists direct requirements. Indirect requirements are
// omitted since they are not declared by the project itself.
func goModDependencies(root string, logger *slog.Logger) model.Dependencies {
	deps := model.NewDependencies()
	data, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return deps
	}
	f, err := modfile.ParseLax("go.mod", data, nil)
	if err != nil {
		logManifestError(logger, "go.mod", err)
		return deps
	}
	for _, r := range f.Require {
		if !r.Indirect {
			deps.Runtime = append(deps.Runtime, r.Mod.Path)
		}
	}
	return deps
}

func cargoDependencies(root string, logger *slog.Logger) model.Dependencies {
	deps := model.NewDependencies()
	data, err := os.ReadFile(filepath.Join(root, "Cargo.toml"))
	if err != nil {
		return deps
	}
	var manifest struct {
		Dependencies      map[string]interface{} `toml:"dependencies"`
		DevDependencies   map[string]interface{} `toml:"dev-dependencies"`
		BuildDependencies map[string]interface{} `toml:"build-dependencies"`
	}
	if _, err := cargotoml.Decode(string(data), &manifest); err != nil {
		logManifestError(logger, "Cargo.toml", err)
		return deps
	}
	deps.Runtime = sortedKeys(manifest.Dependencies)
	deps.Dev = append(sortedKeys(manifest.DevDependencies), sortedKeys(manifest.BuildDependencies)...)
	return deps
}

// mavenDependencies reads <dependencies> from pom.xml; test scope is dev.
func mavenDependencies(root string, logger *slog.Logger) model.Dependencies {
	deps := model.NewDependencies()
	data, err := os.ReadFile(filepath.Join(root, "pom.xml"))
	if err != nil {
		return deps
	}
	var pom struct {
		Dependencies []struct {
			GroupID    string `xml:"groupId"`
			ArtifactID string `xml:"artifactId"`
			Scope      string `xml:"scope"`
		} `xml:"dependencies>dependency"`
	}
	if err := xml.Unmarshal(data, &pom); err != nil {
		logManifestError(logger, "pom.xml", err)
		return deps
	}
	for _, d := range pom.Dependencies {
		name := d.ArtifactID
		if d.GroupID != "" {
			name = d.GroupID + ":" + d.ArtifactID
		}
		if d.Scope == "test" {
			deps.Dev = append(deps.Dev, name)
		} else {
			deps.Runtime = append(deps.Runtime, name)
		}
	}
	return deps
}

var (
	// implementation 'g:a:1.0', testImplementation("g:a:1.0")
	gradleCoordinate = regexp.MustCompile(`^\s*(\w+)\s*\(?\s*["']([^"':\s]+):([^"':\s]+)(?::[^"']*)?["']`)
	// implementation group: 'g', name: 'a', version: '1.0'
	gradleMap = regexp.MustCompile(`^\s*(\w+)\s*\(?\s*group\s*[:=]\s*["']([^"']+)["']\s*,\s*name\s*[:=]\s*["']([^"']+)["']`)
)

// gradleDependencies scans build.gradle or build.gradle.kts for external
// module declarations. Configurations starting with "test" or "androidTest"
// are dev; project(...) and platform(...) entries are skipped.
func gradleDependencies(root string) model.Dependencies {
	deps := model.NewDependencies()
	var data []byte
	for _, name := range []string{"build.gradle", "build.gradle.kts"} {
		if b, err := os.ReadFile(filepath.Join(root, name)); err == nil {
			data = b
			break
		}
	}
	if data == nil {
		return deps
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		m := gradleCoordinate.FindStringSubmatch(line)
		if m == nil {
			m = gradleMap.FindStringSubmatch(line)
		}
		if m == nil || !isGradleConfiguration(m[1]) {
			continue
		}
		name := m[2] + ":" + m[3]
		if strings.HasPrefix(m[1], "test") || strings.HasPrefix(m[1], "androidTest") {
			deps.Dev = append(deps.Dev, name)
		} else {
			deps.Runtime = append(deps.Runtime, name)
		}
	}
	return deps
}

func isGradleConfiguration(name string) bool {
	name = strings.TrimPrefix(strings.TrimPrefix(name, "androidTest"), "test")
	switch strings.ToLower(name) {
	case "implementation", "api", "compile", "compileonly", "runtime", "runtimeonly",
		"annotationprocessor", "kapt", "ksp":
		return true
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// dedupe removes repeated names, keeping the first occurrence.
func dedupe(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
