package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/d07RiV/d4data/errors"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, "data/Base/meta", cfg.Meta)
	require.Equal(t, "UIDialogDefinition", cfg.KindDefinitions["UI"])
}

func TestParse(t *testing.T) {
	src := `
definitions      = "defs"
meta             = "${env.D4_DATA}/Base/meta"
package          = "d4types"
polymorphic_base = "PolyBase"
ignore           = [".gitkeep", "README"]

kind "Power" {
  definition = "PowerDef"
}

kind "UI" {
  definition = "UIDefinition"
}
`
	cfg, err := Parse([]byte(src), FileName, map[string]string{"D4_DATA": "/games/d4"})
	require.NoError(t, err)

	require.Equal(t, "defs", cfg.Definitions)
	require.Equal(t, "/games/d4/Base/meta", cfg.Meta)
	require.Equal(t, "types", cfg.Output)
	require.Equal(t, "d4types", cfg.Package)
	require.Equal(t, "PolyBase", cfg.PolymorphicBase)
	require.Equal(t, []string{".gitkeep", "README"}, cfg.Ignore)
	require.Equal(t, map[string]string{
		"Power":  "PowerDef",
		"UI":     "UIDefinition",
		"Anim":   "AnimationDefinition",
		"Anim2D": "Animation2DDefinition",
	}, cfg.KindDefinitions)
}

func TestParseDoesNotShareDefaults(t *testing.T) {
	_, err := Parse([]byte(`kind "UI" { definition = "Other" }`), FileName, nil)
	require.NoError(t, err)
	require.Equal(t, "UIDialogDefinition", Default().KindDefinitions["UI"])
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `meta = `},
		{"unknown attribute", `colour = "blue"`},
		{"wrong type", `ignore = "x"`},
		{"missing definition", `kind "Power" {}`},
		{"unknown variable", `meta = var.x`},
		{"duplicate kind", "kind \"A\" { definition = \"X\" }\nkind \"A\" { definition = \"Y\" }"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), FileName, nil)
			require.Error(t, err)
			require.True(t, errors.IsFormat(err), err)
			require.Contains(t, err.Error(), FileName)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`output = "gen/types"`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "gen/types", cfg.Output)
	require.Equal(t, "definitions", cfg.Definitions)
}
