package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/d07RiV/d4data/gen"
	"github.com/d07RiV/d4data/interp"
	"github.com/d07RiV/d4data/schema"
	"github.com/d07RiV/d4data/sno"
)

func (a *app) generate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	var (
		kindList = fs.String("kinds", "", "Resource kinds (comma-separated, default: every kind under the meta root)")
		output   = fs.String("o", a.cfg.Output, "Output directory")
		pkg      = fs.String("package", a.cfg.Package, "Generated package name")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	kinds, err := a.kinds(*kindList)
	if err != nil {
		return err
	}
	g, err := a.compile(kinds)
	if err != nil {
		return err
	}

	if err := gen.New(g, gen.WithPackage(*pkg), gen.WithLogger(a.log.Named("gen"))).Write(*output); err != nil {
		return err
	}

	r := newReport(os.Stdout)
	planReport(r, "Generated "+*output, g)
	return r.flush()
}

// planReport adds one row per emitted module of g and a summary line.
func planReport(r *report, title string, g *schema.Graph) {
	r.title(title)
	for _, m := range g.Plan() {
		if len(m.Classes) == 0 {
			continue
		}
		r.row(m.Name,
			fmt.Sprintf("%d classes", len(m.Classes)),
			fmt.Sprintf("%d shared", len(m.Imports)),
			fmt.Sprintf("%d refs", len(m.Refs)),
			fmt.Sprintf("%d helpers", len(m.Helpers)))
	}
	r.summary(fmt.Sprintf("%d kinds, %d classes, %d polymorphic", len(g.Kinds), len(g.Classes), len(g.Polymorphic)))
}

func (a *app) graph(args []string) error {
	fs := flag.NewFlagSet("graph", flag.ExitOnError)
	var (
		kindList = fs.String("kinds", "", "Resource kinds (comma-separated, default: every kind under the meta root)")
		output   = fs.String("o", "", "Output file (default: stdout)")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	kinds, err := a.kinds(*kindList)
	if err != nil {
		return err
	}
	g, err := a.compile(kinds)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if *output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(*output, data, 0o644)
}

func (a *app) dump(args []string) error {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	var (
		kind   = fs.String("kind", "", "Resource kind to decode")
		output = fs.String("o", "", "Output directory, one JSON file per record (default: stdout)")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *kind == "" {
		fs.Usage()
		return fmt.Errorf("dump: -kind is required")
	}

	_, decoders, err := a.decoders([]string{*kind})
	if err != nil {
		return err
	}
	files, err := a.library(decoders).Files(*kind)
	if err != nil {
		return err
	}

	dir := ""
	if *output != "" {
		dir = filepath.Join(*output, *kind)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	for _, f := range sortedFiles(files) {
		rec, err := sno.Payload[*interp.Record](f)
		if err != nil {
			return fmt.Errorf("decode %s/%s: %w", *kind, f.Name, err)
		}
		rec.Set("uid", f.UID)

		if dir == "" {
			data, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", data)
			continue
		}
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, f.Name+".json"), data, 0o644); err != nil {
			return err
		}
	}
	a.log.Info("dumped resource kind", zap.String("kind", *kind), zap.Int("files", len(files)))
	return nil
}

func sortedFiles(files map[int32]*sno.File) []*sno.File {
	out := make([]*sno.File, 0, len(files))
	for _, f := range files {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
