// Package gen emits Go decoders for a compiled schema graph.
//
// The output is a single Go package. Every class becomes a struct that
// embeds its parent, an unexported read method that follows the class's
// layout, and a Read<Name> constructor:
//
//	type Power struct {
//		Header   *SNOHeader          `json:"tHeader"`
//		Formulas []sno.StringFormula `json:"arFormulas"`
//	}
//
//	func ReadPower(r *binary.Reader) (*Power, error)
//
// Files are split the way Graph.Plan partitions the graph: common.go holds
// classes used by several resource kinds, polymorphic.go holds the classes
// only reachable through polymorphic arrays together with the tag switch,
// and each kind gets its own file. decoders.go maps every kind to its
// decode function, ready to be passed to sno.NewLibrary.
package gen
