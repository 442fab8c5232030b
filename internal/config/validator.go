package config

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"

	jspserrors "github.com/standardbeagle/jsps/internal/errors"
)

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies smart defaults
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if cfg.Project.Root == "" {
		return jspserrors.NewConfigError("project.root", "", errors.New("project root cannot be empty"))
	}

	if err := v.validateRunConfig(&cfg.Run); err != nil {
		return err
	}

	if cfg.Watch.DebounceMs < 0 {
		return jspserrors.NewConfigError("watch.debounce_ms", strconv.Itoa(cfg.Watch.DebounceMs),
			errors.New("cannot be negative"))
	}

	for _, pattern := range append(append([]string{}, cfg.Include...), cfg.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return jspserrors.NewConfigError("pattern", pattern, errors.New("invalid glob pattern"))
		}
	}

	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validateRunConfig(run *Run) error {
	if run.ConfirmThreshold < 0 {
		return jspserrors.NewConfigError("run.confirm_threshold", strconv.Itoa(run.ConfirmThreshold),
			errors.New("cannot be negative"))
	}
	// Workers: 0 means auto-detect (set by smart defaults)
	if run.Workers < 0 {
		return jspserrors.NewConfigError("run.workers", strconv.Itoa(run.Workers),
			fmt.Errorf("cannot be negative, got %d", run.Workers))
	}
	if run.ProbeMessageLimit < 0 {
		return jspserrors.NewConfigError("run.probe_message_limit", strconv.Itoa(run.ProbeMessageLimit),
			errors.New("cannot be negative"))
	}
	return nil
}

// setSmartDefaults applies defaults based on system capabilities
func (v *Validator) setSmartDefaults(cfg *Config) {
	// cores-1 leaves headroom for the system, minimum of 1
	if cfg.Run.Workers == 0 {
		cfg.Run.Workers = max(1, runtime.NumCPU()-1)
	}

	if cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = 300
	}
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	return NewValidator().ValidateAndSetDefaults(cfg)
}
