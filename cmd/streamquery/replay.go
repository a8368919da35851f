package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/streamquery"
	"github.com/fwojciec/streamquery/fs"
	sqjson "github.com/fwojciec/streamquery/json"
	"github.com/fwojciec/streamquery/vectara"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// errServerReported is returned when a replayed stream carried error messages.
var errServerReported = errors.New("server reported errors")

type replayOptions struct {
	chunkSize int
	format    string
	render    bool
	width     int
	save      string
}

// applyConfig fills every option whose flag was not set from cfg.
func (o *replayOptions) applyConfig(flags *pflag.FlagSet, cfg *Config) {
	if !flags.Changed("chunk-size") {
		o.chunkSize = cfg.ChunkSize
	}
	if !flags.Changed("format") {
		o.format = cfg.Format
	}
	if !flags.Changed("render") {
		o.render = cfg.Render
	}
	if !flags.Changed("width") {
		o.width = cfg.Width
	}
}

func (o *replayOptions) validate() error {
	if o.chunkSize <= 0 {
		return fmt.Errorf("--chunk-size must be positive, got %d", o.chunkSize)
	}
	if o.width <= 0 {
		return fmt.Errorf("--width must be positive, got %d", o.width)
	}
	return validateFormat(o.format)
}

func (a *app) replayCmd() *cobra.Command {
	var opts replayOptions
	cmd := &cobra.Command{
		Use:   "replay [flags] <capture|glob|->...",
		Short: "Decode recorded answer streams",
		Long: `Replay decodes captured query answer streams and prints the answer.

Inputs are file paths, doublestar globs such as captures/**/*.sse, or - for
standard input (the default). Each input is fed to the decoder in chunks of
--chunk-size bytes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.applyConfig(cmd.Flags(), a.cfg)
			if err := opts.validate(); err != nil {
				return err
			}
			if len(args) == 0 {
				args = []string{fs.Stdin}
			}
			inputs, err := fs.Expand(args)
			if err != nil {
				return err
			}
			if opts.save != "" && len(inputs) > 1 {
				return fmt.Errorf("--save needs a single input, got %d", len(inputs))
			}
			for _, in := range inputs {
				if err := a.replay(cmd.Context(), in, opts); err != nil {
					return fmt.Errorf("replay %s: %w", in, err)
				}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.chunkSize, "chunk-size", 4096, "Bytes fed to the decoder per chunk")
	flags.StringVar(&opts.format, "format", formatText, "Output format: text or json (one event per line)")
	flags.BoolVar(&opts.render, "render", false, "Render the answer as markdown once the stream ends")
	flags.IntVar(&opts.width, "width", 80, "Wrap width for rendered output")
	flags.StringVar(&opts.save, "save", "", "Write the folded answer as JSON to this path")
	return cmd
}

func (a *app) replay(ctx context.Context, name string, opts replayOptions) error {
	body, err := fs.Open(name, a.stdin)
	if err != nil {
		return err
	}
	s := vectara.NewStream(ctx, body,
		vectara.WithChunkSize(opts.chunkSize),
		vectara.WithLogger(a.logger.With(zap.String("input", name))),
	)
	defer s.Close()
	return a.print(s, opts)
}

// print writes the events of s as they arrive and then the folded answer.
func (a *app) print(s streamquery.Stream, opts replayOptions) error {
	p := a.newPrinter(opts)
	for {
		evt, err := s.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := p.Print(evt); err != nil {
			return err
		}
	}

	answer := s.Answer()
	if err := p.Finish(answer); err != nil {
		return err
	}
	if opts.save != "" {
		if err := sqjson.Save(opts.save, answer); err != nil {
			return fmt.Errorf("save answer: %w", err)
		}
		a.logger.Debug("answer saved", zap.String("path", opts.save))
	}
	if answer.Failed() {
		return fmt.Errorf("%w: %s", errServerReported, strings.Join(answer.Errors, "; "))
	}
	return nil
}

func (a *app) newPrinter(opts replayOptions) printer {
	if opts.format == formatJSON {
		return &jsonPrinter{w: a.stdout}
	}
	return newTextPrinter(a.stdout, a.stderr, a.theme, opts.render, opts.width)
}

// sourceLabel names the document a search result came from.
func sourceLabel(r streamquery.SearchResult) string {
	if title, ok := r.DocumentMetadata["title"].(string); ok && title != "" {
		return title
	}
	if r.DocumentID != "" {
		return r.DocumentID
	}
	return streamquery.DefaultTitle
}
