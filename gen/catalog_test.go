package gen

import (
	"testing"

	"github.com/d07RiV/d4data/schema"
)

func TestGoCatalogCoversSchemaCatalog(t *testing.T) {
	for _, name := range schema.Primitives() {
		if name == schema.DTNull {
			continue
		}
		gt, ok := GoCatalog[name]
		if !ok {
			t.Errorf("no Go rendering for %s", name)
			continue
		}
		if gt.Type == nil || gt.Read == nil {
			t.Errorf("%s: incomplete rendering", name)
		}
	}
	for name := range GoCatalog {
		if _, ok := schema.Lookup(name); !ok {
			t.Errorf("%s is not a catalog type", name)
		}
	}
}

func TestGoCatalogFunctionValues(t *testing.T) {
	tests := []struct {
		name string
		fn   string
	}{
		{schema.DTInt, "(*binary.Reader).ReadInt32"},
		{schema.DTWord, "(*binary.Reader).ReadInt16"},
		{schema.DTFloat, "sno.ReadFloat"},
		{schema.DTCString, "sno.ReadCString"},
		{schema.DTVector3D, "sno.ReadVector3D"},
		{schema.DTSNO, ""},
		{schema.DTCharArray, ""},
		{schema.DTVariableArray, ""},
	}
	for _, tt := range tests {
		if got := GoCatalog[tt.name].Func; got != tt.fn {
			t.Errorf("%s: Func = %q, want %q", tt.name, got, tt.fn)
		}
	}
}
