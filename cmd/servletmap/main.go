// Package main is the servletmap command: it inspects and serves deployment
// descriptors.
//
//	servletmap routes  -f servlets.yaml
//	servletmap resolve -f servlets.yaml -o json /dummy/foo.test /dummy/mapping
//	servletmap serve   -f servlets.yaml -addr :8080
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"gopkg.in/yaml.v3"

	"github.com/vitalvas/servlet/container"
	"github.com/vitalvas/servlet/descriptor"
	"github.com/vitalvas/servlet/mapping"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const usage = `servletmap - URL pattern mapping for servlet deployment descriptors

Usage:
  servletmap <command> [options] [arguments]

Commands:
  routes    List the patterns of every context
  resolve   Resolve request paths to servlets
  serve     Serve the descriptor over HTTP/1.1 and cleartext HTTP/2
  version   Show version information

Run "servletmap <command> -h" for the options of a command.
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	var err error
	switch cmd, rest := args[0], args[1:]; cmd {
	case "routes":
		err = runRoutes(rest, stdout, stderr)
	case "resolve":
		err = runResolve(rest, stdout, stderr)
	case "serve":
		err = runServe(rest, stderr)
	case "version", "-version", "--version", "-v":
		fmt.Fprintf(stdout, "servletmap %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return 0
	case "help", "-help", "--help", "-h":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		return 2
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}

// errUsage is returned after a command has already reported bad arguments.
var errUsage = errors.New("usage")

// commonFlags are shared by every command that reads a descriptor.
type commonFlags struct {
	file      string
	logLevel  string
	logFormat string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.file, "file", "servlets.yaml", "Path to the deployment descriptor")
	fs.StringVar(&c.file, "f", "servlets.yaml", "Path to the deployment descriptor (shorthand)")
	fs.StringVar(&c.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	fs.StringVar(&c.logFormat, "log-format", "text", "Log format (text, json)")
}

func (c *commonFlags) logger(w io.Writer) (*slog.Logger, error) {
	return newLogger(w, c.logLevel, c.logFormat)
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q (must be text or json)", format)
	}
}

func newFlagSet(name string, stderr io.Writer, synopsis string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: servletmap %s\n\nOptions:\n", synopsis)
		fs.PrintDefaults()
	}
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	return nil
}

// placeholderServlet stands in for servlets when only the mapping is used.
func placeholderServlet(string, descriptor.Servlet) (http.Handler, error) {
	return http.NotFoundHandler(), nil
}

func runRoutes(args []string, stdout, stderr io.Writer) error {
	var common commonFlags
	fs := newFlagSet("routes", stderr, "routes [options]")
	common.register(fs)
	if err := parse(fs, args); err != nil {
		return err
	}

	d, err := descriptor.LoadFile(common.file)
	if err != nil {
		return err
	}
	return writeRoutes(stdout, d)
}

func writeRoutes(w io.Writer, d *descriptor.Descriptor) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CONTEXT\tPATTERN\tTYPE\tSERVLET")

	for _, c := range d.Contexts {
		for _, reg := range c.Registrations() {
			p, err := mapping.ParsePattern(reg.Pattern, reg.Handler)
			if err != nil {
				return err
			}
			fmt.Fprintf(tw, "%s\t%q\t%s\t%s\n", displayContext(c.Path), p.String(), p.Kind(), p.Handler())
		}
	}
	return tw.Flush()
}

func displayContext(path string) string {
	if path == "" {
		return "(root)"
	}
	return path
}

// resolution is one result of the resolve command.
type resolution struct {
	Path    string           `json:"path" yaml:"path"`
	Context string           `json:"context" yaml:"context"`
	Mapping *mapping.Mapping `json:"mapping,omitempty" yaml:"mapping,omitempty"`
	Error   string           `json:"error,omitempty" yaml:"error,omitempty"`
}

func runResolve(args []string, stdout, stderr io.Writer) error {
	var common commonFlags
	var output string
	fs := newFlagSet("resolve", stderr, "resolve [options] path...")
	common.register(fs)
	fs.StringVar(&output, "output", "text", "Output format (text, json, yaml)")
	fs.StringVar(&output, "o", "text", "Output format (shorthand)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	logger, err := common.logger(stderr)
	if err != nil {
		return err
	}
	d, err := descriptor.LoadFile(common.file)
	if err != nil {
		return err
	}
	host, err := d.Build(placeholderServlet, descriptor.BuildConfig{Logger: logger})
	if err != nil {
		return err
	}

	results, unresolved := resolvePaths(host, fs.Args())
	if err := writeResolutions(stdout, output, results); err != nil {
		return err
	}
	if unresolved > 0 {
		return fmt.Errorf("%d of %d paths did not resolve", unresolved, len(results))
	}
	return nil
}

func resolvePaths(host *container.Host, paths []string) ([]resolution, int) {
	results := make([]resolution, 0, len(paths))
	unresolved := 0

	for _, p := range paths {
		res := resolution{Path: p}
		c, m, err := host.Resolve(p)
		if c != nil {
			res.Context = c.Path()
		}
		if err != nil {
			res.Error = err.Error()
			unresolved++
		} else {
			res.Mapping = &m
		}
		results = append(results, res)
	}
	return results, unresolved
}

func writeResolutions(w io.Writer, format string, results []resolution) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)

	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			return err
		}
		return enc.Close()

	case "text":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "PATH\tCONTEXT\tTYPE\tPATTERN\tVALUE\tSERVLET")
		for _, res := range results {
			if res.Mapping == nil {
				fmt.Fprintf(tw, "%s\t%s\t-\t-\t-\t%s\n", res.Path, displayContext(res.Context), res.Error)
				continue
			}
			m := res.Mapping
			fmt.Fprintf(tw, "%s\t%s\t%s\t%q\t%q\t%s\n", res.Path, displayContext(res.Context), m.MatchType, m.Pattern, m.MatchValue, m.HandlerName)
		}
		return tw.Flush()

	default:
		return fmt.Errorf("invalid output format %q (must be text, json, or yaml)", format)
	}
}

func runServe(args []string, stderr io.Writer) error {
	var common commonFlags
	var addr string
	var shutdownTimeout time.Duration
	fs := newFlagSet("serve", stderr, "serve [options]")
	common.register(fs)
	fs.StringVar(&addr, "addr", ":8080", "Listen address")
	fs.DurationVar(&shutdownTimeout, "shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")
	if err := parse(fs, args); err != nil {
		return err
	}

	logger, err := common.logger(stderr)
	if err != nil {
		return err
	}
	d, err := descriptor.LoadFile(common.file)
	if err != nil {
		return err
	}
	host, err := d.Build(newServlet, descriptor.BuildConfig{Logger: logger})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           h2c.NewHandler(host, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr, "contexts", len(host.Contexts()), "version", version)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
