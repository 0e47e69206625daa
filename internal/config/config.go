// Package config loads the d4data.hcl project file.
//
// Every attribute is optional; the defaults describe the usual layout of an
// extracted game data tree:
//
//	definitions      = "definitions"
//	meta             = "data/Base/meta"
//	output           = "types"
//	package          = "types"
//	polymorphic_base = "PolymorphicBase"
//	ignore           = [".gitkeep"]
//
//	kind "Anim2D" {
//	  definition = "Animation2DDefinition"
//	}
//
// Expressions can read the environment through env, as in
// meta = "${env.D4_DATA}/Base/meta".
package config

import (
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/d07RiV/d4data/errors"
	"github.com/d07RiV/d4data/gen"
	"github.com/d07RiV/d4data/schema"
	"github.com/d07RiV/d4data/sno"
)

// FileName is the project file looked up by default.
const FileName = "d4data.hcl"

// Config is the resolved project configuration.
type Config struct {
	Definitions     string
	Meta            string
	Output          string
	Package         string
	PolymorphicBase string
	Ignore          []string
	// KindDefinitions maps resource kinds to definition names that do not
	// follow the "<Kind>Definition" convention.
	KindDefinitions map[string]string
}

type hclKind struct {
	Name       string `hcl:"name,label"`
	Definition string `hcl:"definition"`
}

type hclFile struct {
	Definitions     string     `hcl:"definitions,optional"`
	Meta            string     `hcl:"meta,optional"`
	Output          string     `hcl:"output,optional"`
	Package         string     `hcl:"package,optional"`
	PolymorphicBase string     `hcl:"polymorphic_base,optional"`
	Ignore          []string   `hcl:"ignore,optional"`
	Kinds           []*hclKind `hcl:"kind,block"`
}

// Default returns the configuration used when no project file exists.
func Default() *Config {
	kinds := make(map[string]string, len(schema.DefaultKindDefinitions))
	for k, v := range schema.DefaultKindDefinitions {
		kinds[k] = v
	}
	return &Config{
		Definitions:     "definitions",
		Meta:            sno.DefaultRoot,
		Output:          "types",
		Package:         gen.DefaultPackage,
		PolymorphicBase: schema.DefaultPolymorphicBase,
		Ignore:          []string{".gitkeep"},
		KindDefinitions: kinds,
	}
}

// Load reads the project file at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	src, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err, "read "+path)
	}
	return Parse(src, path, environ())
}

// Parse decodes a project file. env is exposed to expressions as env.
func Parse(src []byte, filename string, env map[string]string) (*Config, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diagError(filename, "parse", diags)
	}

	var raw hclFile
	if diags := gohcl.DecodeBody(file.Body, evalContext(env), &raw); diags.HasErrors() {
		return nil, diagError(filename, "decode", diags)
	}

	cfg := Default()
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Definitions, raw.Definitions)
	set(&cfg.Meta, raw.Meta)
	set(&cfg.Output, raw.Output)
	set(&cfg.Package, raw.Package)
	set(&cfg.PolymorphicBase, raw.PolymorphicBase)
	if raw.Ignore != nil {
		cfg.Ignore = raw.Ignore
	}

	seen := make(map[string]bool, len(raw.Kinds))
	for _, k := range raw.Kinds {
		if seen[k.Name] {
			return nil, errors.New(errors.PhaseConfig, errors.KindFormat).
				File(filename).
				Path("kind", k.Name).
				Detail("duplicate kind block").
				Build()
		}
		seen[k.Name] = true
		cfg.KindDefinitions[k.Name] = k.Definition
	}
	return cfg, nil
}

func diagError(filename, op string, diags hcl.Diagnostics) error {
	return errors.New(errors.PhaseConfig, errors.KindFormat).
		File(filename).
		Cause(diags).
		Detail("%s failed", op).
		Build()
}

func evalContext(env map[string]string) *hcl.EvalContext {
	vars := make(map[string]cty.Value, len(env))
	for k, v := range env {
		vars[k] = cty.StringVal(v)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
	}
}

func environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			env[k] = v
		}
	}
	return env
}
