package opts

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/walteh/rewriterc/pkg/config"
	"github.com/walteh/rewriterc/pkg/log"
	"github.com/walteh/rewriterc/pkg/text"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	ConfigFile string
	Debug      bool
	Config     *config.Config
	RuleSet    *text.RuleSet
}

// NewLogger creates the console logger for a command. Structured events go to
// the context logger, quieter unless debugging.
func (o *RootOpts) NewLogger(ctx context.Context, console io.Writer, opts ...log.Option) *log.Logger {
	level := zerolog.WarnLevel
	if o.Debug {
		level = zerolog.DebugLevel
	}
	opts = append([]log.Option{log.WithZerolog(zerolog.Ctx(ctx).Level(level))}, opts...)
	return log.New(console, level, opts...)
}
