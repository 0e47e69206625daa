// Package schema compiles textual record layout definitions into a resolved
// type graph.
//
// Each definition file describes one record type, one field per line:
//
//	# Inherits: PolymorphicBase (1f2e3d4c)
//	0x00: dwType # DT_UINT
//	0x08: arEntries # DT_VARIABLEARRAY => unknown 0x4dbdf9b5
//	0x18: snoPower # DT_SNO {group 0x1d "Power"}
//	0x1c: szName # DT_CHARARRAY [64 array size]
//	0x5c: null or eof # DT_NULL
//
// The file name carries the type id and an optional display name:
// "!Name.<hexid>.yml" or "<hexid>.yml".
//
// Compile resolves names, single inheritance and inherited-field
// deduplication, binds resource kinds to their definitions, records in which
// kinds every class is used and collects the polymorphic classes. The result,
// a Graph, is independent of any output language: Plan partitions it into
// modules and Layout turns a class into a decode plan that both the source
// emitter and the interpreter execute.
package schema
