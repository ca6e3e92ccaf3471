package cmd

import (
	"io"
	"log"
	"os"

	"github.com/warpdl/slumber/pkg/logger"
)

// stderr is where console logs go.
var stderr io.Writer = os.Stderr

// newLogger returns the console logger, broadcasting to path as well when
// it is not empty.
func newLogger(path string, debug bool) (logger.Logger, error) {
	console := logger.NewStandardLogger(log.New(stderr, "", log.LstdFlags), debug)
	if path == "" {
		return console, nil
	}
	file, err := logger.NewFileLogger(path, debug)
	if err != nil {
		return nil, err
	}
	return logger.NewMultiLogger(console, file), nil
}
