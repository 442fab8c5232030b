package definition

import (
	"errors"

	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/jsps/internal/debug"
	jspserrors "github.com/standardbeagle/jsps/internal/errors"
)

// Required exports, in the order they are validated and invoked
const (
	ExportGetSettings  = "getSettings"
	ExportSearchByFile = "searchByFile"
	ExportSearchByLine = "searchByLine"
)

// RequiredExports lists the module ABI
var RequiredExports = []string{ExportGetSettings, ExportSearchByFile, ExportSearchByLine}

// maxSuggestionDistance bounds the edit distance for "did you mean" hints
const maxSuggestionDistance = 3

// Loader turns definition source text into a SearchDefinition
type Loader struct {
	compiler Compiler
	host     Host
}

// NewLoader creates a loader over the given compiler and host
func NewLoader(compiler Compiler, host Host) *Loader {
	return &Loader{compiler: compiler, host: host}
}

// Load compiles, links and validates a definition. Every failure is a
// *errors.LoadError; nothing is returned for a partially valid module.
func (l *Loader) Load(name, source string) (*SearchDefinition, error) {
	code, err := l.compiler.Compile(name, source)
	if err != nil {
		debug.LogLoad("compile failed for %s: %v", name, err)
		return nil, jspserrors.NewLoadError(jspserrors.CompileFailed, "", err)
	}

	module, err := l.host.Link(name, code)
	if err != nil {
		debug.LogLoad("link failed for %s: %v", name, err)
		return nil, jspserrors.NewLoadError(jspserrors.LinkFailed, "", err)
	}

	return Validate(module)
}

// Validate checks the module's exports and assembles the definition.
func Validate(module Module) (*SearchDefinition, error) {
	for _, name := range RequiredExports {
		if !module.HasFunction(name) {
			loadErr := jspserrors.NewLoadError(jspserrors.MissingExport, name, nil)
			if suggestion := closestExport(name, module.Exports()); suggestion != "" {
				loadErr.WithSuggestion(suggestion)
			}
			return nil, loadErr
		}
	}

	settingsObj, err := callExport(module, ExportGetSettings)
	if err != nil {
		return nil, err
	}
	settings := decodeSettings(settingsObj)

	fileObj, err := callExport(module, ExportSearchByFile)
	if err != nil {
		return nil, err
	}

	lineObj, err := callExport(module, ExportSearchByLine)
	if err != nil {
		return nil, err
	}

	def := &SearchDefinition{Settings: settings}
	if method, ok := fileObj.Method(FileMatcherMethod); ok {
		def.FileMatcher = scriptFileMatcher{method: method}
	}
	if method, ok := lineObj.Method(LineMatcherMethod); ok {
		def.LineMatcher = scriptLineMatcher{method: method}
	}

	debug.LogLoad("definition loaded: file matcher=%t line matcher=%t", def.FileMatcher != nil, def.LineMatcher != nil)
	return def, nil
}

func callExport(module Module, name string) (Object, error) {
	obj, err := module.Call(name)
	switch {
	case errors.Is(err, ErrNotObject):
		return nil, jspserrors.NewLoadError(jspserrors.InvalidReturn, name, nil)
	case err != nil:
		return nil, jspserrors.NewLoadError(jspserrors.ExportThrew, name, err)
	}
	return obj, nil
}

// closestExport finds the export name most likely meant by a missing one
func closestExport(want string, exports []string) string {
	best := ""
	bestDistance := maxSuggestionDistance + 1
	for _, name := range exports {
		if name == want {
			continue
		}
		distance := edlib.LevenshteinDistance(want, name)
		if distance < bestDistance {
			bestDistance = distance
			best = name
		}
	}
	return best
}
