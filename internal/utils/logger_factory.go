// Package utils hosts shared infrastructure for the taskrun CLI: logger
// construction, configuration loading, command context plumbing, and writer
// helpers.
package utils

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	unsupportedLogLevelTemplateConstant  = "unsupported log level %q"
	unsupportedLogFormatTemplateConstant = "unsupported log format %q"
)

// LogLevel identifies a supported logging verbosity.
type LogLevel string

// Supported log levels.
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat identifies a supported log output format.
type LogFormat string

// Supported log formats.
const (
	LogFormatStructured LogFormat = "structured"
	LogFormatConsole    LogFormat = "console"
)

// LoggerOutputs bundles the diagnostic logger with a console logger used for
// human-facing messages. Under the structured format the console logger is a
// no-op so machine-readable output stays clean.
type LoggerOutputs struct {
	DiagnosticLogger *zap.Logger
	ConsoleLogger    *zap.Logger
}

// LoggerFactory constructs zap loggers from configured level and format.
type LoggerFactory struct{}

// NewLoggerFactory constructs a LoggerFactory instance.
func NewLoggerFactory() LoggerFactory {
	return LoggerFactory{}
}

// CreateLoggerOutputs builds diagnostic and console loggers for the requested
// level and format, writing to standard error.
func (factory LoggerFactory) CreateLoggerOutputs(requestedLevel LogLevel, requestedFormat LogFormat) (LoggerOutputs, error) {
	zapLevel, levelError := resolveLogLevel(requestedLevel)
	if levelError != nil {
		return LoggerOutputs{}, levelError
	}

	writeSyncer := zapcore.Lock(os.Stderr)

	switch requestedFormat {
	case LogFormatStructured:
		structuredCore := zapcore.NewCore(zapcore.NewJSONEncoder(structuredEncoderConfiguration()), writeSyncer, zapLevel)
		return LoggerOutputs{
			DiagnosticLogger: zap.New(structuredCore),
			ConsoleLogger:    zap.NewNop(),
		}, nil
	case LogFormatConsole:
		consoleCore := zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfiguration()), writeSyncer, zapLevel)
		consoleLogger := zap.New(consoleCore)
		return LoggerOutputs{
			DiagnosticLogger: consoleLogger,
			ConsoleLogger:    consoleLogger,
		}, nil
	default:
		return LoggerOutputs{}, fmt.Errorf(unsupportedLogFormatTemplateConstant, string(requestedFormat))
	}
}

func resolveLogLevel(requestedLevel LogLevel) (zapcore.Level, error) {
	switch requestedLevel {
	case LogLevelDebug:
		return zapcore.DebugLevel, nil
	case LogLevelInfo:
		return zapcore.InfoLevel, nil
	case LogLevelWarn:
		return zapcore.WarnLevel, nil
	case LogLevelError:
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InvalidLevel, fmt.Errorf(unsupportedLogLevelTemplateConstant, string(requestedLevel))
	}
}

func structuredEncoderConfiguration() zapcore.EncoderConfig {
	encoderConfiguration := zap.NewProductionEncoderConfig()
	encoderConfiguration.EncodeTime = zapcore.ISO8601TimeEncoder
	return encoderConfiguration
}

func consoleEncoderConfiguration() zapcore.EncoderConfig {
	encoderConfiguration := zap.NewDevelopmentEncoderConfig()
	encoderConfiguration.EncodeLevel = zapcore.CapitalLevelEncoder
	return encoderConfiguration
}
