package definition

import (
	"github.com/standardbeagle/jsps/internal/types"
)

// decodeSettings reads the known getSettings fields the way a script would
// see them. Numbers are taken only when they are script numbers, booleans by
// truthiness, and pattern lists keep their string elements. Anything else
// falls back to the default for that field.
func decodeSettings(obj Object) types.Settings {
	var s types.Settings

	if v := obj.Property("includeFilePatterns"); v != nil {
		s.IncludeFilePatterns, _ = v.Strings()
	}
	if v := obj.Property("excludeFilePatterns"); v != nil {
		s.ExcludeFilePatterns, _ = v.Strings()
	}
	s.IncludeNodeModules = truthy(obj.Property("includeNodeModules"))
	s.OnlyTestLinesInMatchingFiles = truthy(obj.Property("onlyTestLinesInMatchingFiles"))
	s.MaxFileSizeInKB = number(obj.Property("maxFileSizeInKB"))
	s.MatchTestingTimeoutInSeconds = number(obj.Property("matchTestingTimeoutInSeconds"))

	return s
}

func truthy(v Value) bool {
	return v != nil && v.Truthy()
}

func number(v Value) *float64 {
	if v == nil {
		return nil
	}
	if f, ok := v.Number(); ok {
		return types.Float(f)
	}
	return nil
}
