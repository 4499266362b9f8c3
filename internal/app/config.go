package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/specialistvlad/patchgrid/internal/node"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	PatchPaths []string `validate:"min=1,dive,required"` // .twg files or directories of them
	OutputDir string // empty writes each WAV next to its patch

	SampleRate int           `validate:"gt=0,lte=384000"`
	BlockSize  int           `validate:"gt=0"`
	Duration   time.Duration `validate:"gte=0"`
	BitDepth   int           `validate:"oneof=16 24 32"`
	LFOShape   string        `validate:"lfoshape"`

	Play  bool
	Watch bool

	LogFormat       string `validate:"oneof=text json"`
	LogLevel        string `validate:"oneof=debug info warn error"`
	HealthcheckPort int    `validate:"gte=0,lte=65535"`
	WorkerCount     int    `validate:"gt=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("lfoshape", func(fl validator.FieldLevel) bool {
		_, err := node.LookupShape(fl.Field().String())
		return err == nil
	})
	return v
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, describeValidation(err)
	}
	if !cfg.Play && cfg.Duration == 0 {
		return nil, errors.New("duration must be positive when rendering to files")
	}
	return &cfg, nil
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "lfoshape":
			msgs = append(msgs, fmt.Sprintf("invalid LFOShape %q: expected one of %s", fe.Value(), strings.Join(node.ShapeNames(), ", ")))
		case "min", "required":
			if strings.HasPrefix(fe.Field(), "PatchPaths") {
				msgs = append(msgs, "at least one patch path is required and paths cannot be empty")
				continue
			}
			msgs = append(msgs, fmt.Sprintf("invalid %s %v: must satisfy %s=%s", fe.Field(), fe.Value(), fe.Tag(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("invalid %s %v: must satisfy %s=%s", fe.Field(), fe.Value(), fe.Tag(), fe.Param()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
