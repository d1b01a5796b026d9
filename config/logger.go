package config

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func parseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	return zapcore.ParseLevel(s)
}

// Logger builds the configured logger: a console core on stderr and, when
// a file is configured, a JSON file core, teed together. The returned
// function closes the log file.
func (c *Config) Logger() (*zap.Logger, func(), error) {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return nil, nil, err
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	var consoleEnc zapcore.Encoder
	if c.Log.JSON {
		consoleEnc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		consoleEnc = zapcore.NewConsoleEncoder(encCfg)
	}
	cores := []zapcore.Core{
		zapcore.NewCore(consoleEnc, zapcore.Lock(os.Stderr), level),
	}

	closeFn := func() {}
	if c.Log.File != "" {
		fileLevel, err := parseLevel(c.Log.FileLevel)
		if err != nil {
			return nil, nil, err
		}
		sink, closeFile, err := zap.Open(c.Log.File)
		if err != nil {
			return nil, nil, &LoadError{File: c.Log.File, Message: "failed to open log file", Cause: err}
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), sink, fileLevel))
		closeFn = closeFile
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), closeFn, nil
}
