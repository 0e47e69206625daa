package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/d07RiV/d4data/gen"
	"github.com/d07RiV/d4data/internal/config"
	"github.com/d07RiV/d4data/interp"
	"github.com/d07RiV/d4data/schema"
	"github.com/d07RiV/d4data/sno"
)

const usage = `Usage: d4data [-config file] [-v] <command> [flags]

Commands:
  generate   compile definitions and write Go decoders
  graph      print the compiled type graph as JSON
  dump       decode the files of a resource kind as JSON
  browse     browse resource files interactively
`

func main() {
	var (
		configFile = flag.String("config", config.FileName, "Project file")
		verbose    = flag.Bool("v", false, "Verbose logging")
	)
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(log, *configFile, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func run(log *zap.Logger, configFile, command string, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	sno.SetLogger(log.Named("sno"))
	schema.SetLogger(log.Named("schema"))
	gen.SetLogger(log.Named("gen"))
	interp.SetLogger(log.Named("interp"))

	app := &app{cfg: cfg, log: log}
	switch command {
	case "generate":
		return app.generate(args)
	case "graph":
		return app.graph(args)
	case "dump":
		return app.dump(args)
	case "browse":
		return app.browse(args)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// app carries the configuration shared by every command.
type app struct {
	cfg *config.Config
	log *zap.Logger
}

func (a *app) library(decoders map[string]sno.DecodeFunc) *sno.Library {
	return sno.NewLibrary(a.cfg.Meta, decoders,
		sno.WithLogger(a.log.Named("library")),
		sno.WithIgnore(a.cfg.Ignore...))
}

// kinds returns the comma separated list, or every kind directory under the
// meta root when list is empty.
func (a *app) kinds(list string) ([]string, error) {
	if list != "" {
		return strings.Split(list, ","), nil
	}
	return a.library(nil).Kinds()
}

func (a *app) compile(kinds []string) (*schema.Graph, error) {
	c := schema.NewCompiler(
		schema.WithKindDefinitions(a.cfg.KindDefinitions),
		schema.WithPolymorphicBase(a.cfg.PolymorphicBase),
		schema.WithLogger(a.log.Named("schema")),
	)
	g, err := c.Compile(os.DirFS(a.cfg.Definitions), kinds)
	if err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// decoders compiles the graph of kinds and returns interpreted decoders.
func (a *app) decoders(kinds []string) (*schema.Graph, map[string]sno.DecodeFunc, error) {
	g, err := a.compile(kinds)
	if err != nil {
		return nil, nil, err
	}
	in, err := interp.New(g, interp.WithLogger(a.log.Named("interp")))
	if err != nil {
		return nil, nil, err
	}
	return g, in.Decoders(), nil
}
