package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/theory/odatauri/internal/fixture"
	"github.com/theory/odatauri/uri"
	"github.com/theory/odatauri/uri/edm"
	"github.com/theory/odatauri/uri/parser"
	"gopkg.in/yaml.v3"
)

var errFormat = errors.New("unknown output format")

type rootFlags struct {
	model   string
	format  string
	aliases map[string]string
	verbose bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "odataparse [flags] URL...",
		Short: "Parse OData request URLs",
		Long: `Parse OData request URLs relative to the service root and print their
canonical form.

Each URL is parsed against the model named by --model, a YAML schema
description, or against the built-in demo model. Parsing stops at the
first URL that fails.

Examples:
  odataparse 'People?$filter=Name eq ''Foo''&$top=5'
  odataparse --alias n=5 'People?$filter=Age gt @n'
  odataparse --format yaml '$crossjoin(People,Orders)'`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.model, "model", "m", "", "YAML model file (default: built-in demo model)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "text", "output format: text, yaml")
	cmd.Flags().StringToStringVarP(&flags.aliases, "alias", "a", nil, "parameter alias value, name=value")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "log parser tracing to stderr")
	return cmd
}

func run(cmd *cobra.Command, flags *rootFlags, args []string) error {
	if flags.format != "text" && flags.format != "yaml" {
		return fmt.Errorf("%w %q", errFormat, flags.format)
	}

	log := logrus.New()
	log.SetOutput(cmd.ErrOrStderr())
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if flags.verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	model, err := loadModel(flags.model)
	if err != nil {
		return err
	}
	log.WithField("model", modelName(flags.model)).Debug("loaded model")

	opts := []parser.Option{parser.WithLogger(log)}
	if len(flags.aliases) > 0 {
		opts = append(opts, parser.WithAliases(flags.aliases))
	}

	out := cmd.OutOrStdout()
	for _, raw := range args {
		req, err := uri.Parse(model, raw, opts...)
		if err != nil {
			log.WithError(err).WithField("url", raw).Debug("parse failed")
			return err
		}
		if err := write(out, flags.format, req); err != nil {
			return err
		}
	}
	return nil
}

// loadModel reads the YAML model in path, or returns the demo model when
// path is empty.
func loadModel(path string) (edm.Model, error) {
	if path == "" {
		return fixture.Demo(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model: %w", err)
	}
	defer f.Close()
	schema, err := edm.LoadYAML(f)
	if err != nil {
		return nil, fmt.Errorf("load %v: %w", path, err)
	}
	return schema, nil
}

func modelName(path string) string {
	if path == "" {
		return "demo"
	}
	return path
}

func write(w io.Writer, format string, req *uri.Request) error {
	if format == "text" {
		_, err := fmt.Fprintln(w, req)
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newSummary(req)); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return enc.Close()
}
