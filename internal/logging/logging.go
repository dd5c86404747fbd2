// Package logging builds the hclog logger shared by every command.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mattn/go-isatty"
)

type Options struct {
	Name   string
	Level  string
	Format string // console or json
	Output io.Writer
}

func New(opts Options) (hclog.Logger, error) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	level := hclog.LevelFromString(opts.Level)
	if level == hclog.NoLevel {
		if strings.TrimSpace(opts.Level) != "" {
			return nil, fmt.Errorf("unknown log level %q", opts.Level)
		}
		level = hclog.Info
	}
	name := opts.Name
	if name == "" {
		name = "mediashop"
	}

	lo := &hclog.LoggerOptions{
		Name:   name,
		Level:  level,
		Output: out,
	}
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "console":
		if shouldColorize(out) {
			lo.Color = hclog.AutoColor
		} else {
			lo.Color = hclog.ColorOff
		}
	case "json":
		lo.JSONFormat = true
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}
	return hclog.New(lo), nil
}

func shouldColorize(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
