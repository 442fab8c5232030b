package definition

import (
	_ "embed"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

//go:embed template.ts
var template string

// ScaffoldPattern names scaffolded definitions; the star becomes a sequence number
const ScaffoldPattern = "_SearchDefinition*.jsps.ts"

// Template returns the starter definition source
func Template() string {
	return template
}

// NextScaffoldName picks the first unused scaffold file name in fsys,
// numbering after the highest existing one.
func NextScaffoldName(fsys fs.FS) (string, error) {
	existing, err := doublestar.Glob(fsys, ScaffoldPattern)
	if err != nil {
		return "", fmt.Errorf("failed to list existing definitions: %w", err)
	}

	prefix, suffix, _ := strings.Cut(ScaffoldPattern, "*")
	highest := 0
	for _, name := range existing {
		num, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, prefix), suffix))
		if err != nil {
			continue
		}
		if num > highest {
			highest = num
		}
	}
	return prefix + strconv.Itoa(highest+1) + suffix, nil
}
