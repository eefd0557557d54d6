package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/typegen/internal/cli/config"
	"github.com/conduit-lang/typegen/internal/cli/ui"
	"github.com/conduit-lang/typegen/internal/logging"
	"github.com/conduit-lang/typegen/internal/typegen/generator"
	"github.com/conduit-lang/typegen/internal/typegen/mapper"
	"github.com/conduit-lang/typegen/internal/typegen/schema"
	"github.com/conduit-lang/typegen/internal/typegen/verify"
)

// reportedError marks an error whose explanation was already printed
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// session is the loaded state shared by the commands that run the generator
type session struct {
	cfg     *config.Config
	logger  *zap.Logger
	noColor bool
	errOut  io.Writer
}

func stringFlag(cmd *cobra.Command, name string) string {
	if f := cmd.Flag(name); f != nil {
		return f.Value.String()
	}
	return ""
}

func boolFlag(cmd *cobra.Command, name string) bool {
	return stringFlag(cmd, name) == "true"
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if path := stringFlag(cmd, "config"); path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func newSession(cmd *cobra.Command) (*session, error) {
	s := &session{
		noColor: boolFlag(cmd, "no-color"),
		errOut:  cmd.ErrOrStderr(),
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		fmt.Fprint(s.errOut, ui.ConfigError(err.Error(), s.noColor))
		return nil, &reportedError{err: err}
	}
	s.cfg = cfg

	level := cfg.Log.Level
	if flag := stringFlag(cmd, "log-level"); flag != "" {
		level = flag
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Development: cfg.Log.Development || boolFlag(cmd, "dev-log"),
	})
	if err != nil {
		return nil, err
	}
	s.logger = logger
	return s, nil
}

func (s *session) loadRegistry() (*schema.Registry, error) {
	path := s.cfg.MetadataPath()
	reg, err := schema.LoadFile(path)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("metadata loaded", zap.String("path", path), zap.Int("resources", reg.Len()))
	return reg, nil
}

func (s *session) generator(reg *schema.Registry) (*generator.Generator, error) {
	cfg, err := s.cfg.GeneratorConfig()
	if err != nil {
		return nil, err
	}
	return generator.New(reg, cfg, generator.WithLogger(s.logger)), nil
}

// report prints a formatted explanation for the errors a pass can produce and
// marks them as reported. Other errors are returned unchanged.
func (s *session) report(err error, reg *schema.Registry) error {
	var (
		unknown    *schema.UnknownResourceError
		violations verify.ValidationError
		msg        string
	)

	switch {
	case errors.As(err, &unknown) && unknown.From == "" && reg != nil:
		suggestions := ui.FindSimilar(unknown.Name, reg.Sorted(), &ui.FuzzyMatchOptions{Key: shortName})
		msg = ui.ResourceNotFoundError(unknown.Name, suggestions, s.noColor)
	case errors.Is(err, mapper.ErrUnsupportedType):
		msg = ui.UnsupportedTypeError(err.Error(), s.noColor)
	case errors.As(err, &violations):
		lines := make([]string, len(violations))
		for i, v := range violations {
			lines[i] = v.String()
		}
		msg = ui.VerificationError(lines, s.noColor)
	default:
		return err
	}

	fmt.Fprint(s.errOut, msg)
	return &reportedError{err: err}
}

func (s *session) warn(w generator.Warning) {
	var details []string
	for _, p := range w.Paths {
		details = append(details, "via "+p.String())
	}
	fmt.Fprint(s.errOut, ui.Warning(w.Message, details, s.noColor))
}

func shortName(name string) string {
	return name[strings.LastIndex(name, ".")+1:]
}
