package logx

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LoggerOpts configures the global logger.
type LoggerOpts struct {
	Production bool
}

var DefaultLoggerOpts = &LoggerOpts{}

func safe(opts ...LoggerOpts) *LoggerOpts {
	if len(opts) == 0 {
		return DefaultLoggerOpts
	}
	return &opts[0]
}

// Init configures the global zerolog logger: plain JSON at info level in
// production, a console writer with caller info otherwise.
func Init(opts ...LoggerOpts) {
	if safe(opts...).Production {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
		return
	}
	log.Logger = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Caller().Logger()
	log.Logger = log.Logger.Level(zerolog.DebugLevel)
}

func Debug() *zerolog.Event {
	return log.Debug()
}

func Info() *zerolog.Event {
	return log.Info()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Error() *zerolog.Event {
	return log.Error()
}

func Fatal() *zerolog.Event {
	return log.Fatal()
}
