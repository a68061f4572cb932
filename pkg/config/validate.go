package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/marmos91/nfscall/internal/telemetry"
)

var validate = validator.New()

// Validate checks struct tags and the cross-field rules tags cannot express.
// Every failure is reported, one per line.
func Validate(cfg *Config) error {
	var problems []string

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			msg := fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag())
			if fe.Param() != "" {
				msg += fmt.Sprintf(" (%s)", fe.Param())
			}
			problems = append(problems, msg)
		}
	}

	if cfg.Telemetry.Profiling.Enabled {
		known := telemetry.ProfileTypeNames()
		for _, pt := range cfg.Telemetry.Profiling.ProfileTypes {
			if !contains(known, pt) {
				problems = append(problems, fmt.Sprintf(
					"Config.Telemetry.Profiling.ProfileTypes: unknown profile type %q (valid: %s)",
					pt, strings.Join(known, ", ")))
			}
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "\n"))
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
