// Package core provides the table definition model and the table service.
//
// This package is independent of any file format or transport. The flat
// properties codec, the HTTP contract and the CLI all build on it.
//
// # Table Definitions
//
// A [TableDefinition] describes a table for the editing UI: ordered
// [Column] values, a grid of [Filter] values, the key fields of the
// writable target, and the opaque queries backing the table.
//
//	def, err := core.NewTableDefinition(
//	    []core.Column{
//	        {Name: "id", DataType: core.DataNumber, EditType: core.EditNone},
//	        {Name: "name", DisplayName: "Name", DataType: core.DataText, EditType: core.EditText},
//	    },
//	    []core.Filter{{ColumnName: "name", Type: core.FilterText}},
//	)
//
// Construction enforces the model invariants: column names are non-empty
// and unique, at most one filter exists per column, and grid cells are
// non-negative and unshared.
//
// Enumerations ([DataType], [EditType], [FilterType]) are closed sets with
// explicit Parse functions. Decoders decide the fallback for unknown values.
//
// # Registry
//
// Definitions are registered under a service name with [Register] and
// looked up with [Get] or [Lookup]. The registry is safe for concurrent use;
// a registered definition must not be mutated afterwards.
//
// # Service
//
// [Service] serves definitions, runs their data query through a [Store]
// and applies validated update batches to the table's update target.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - DB001-DB007: Database errors (duplicates, constraints, connections)
//   - VAL001-VAL009: Validation errors (formats, missing keys, read-only, filters)
//   - REQ001-REQ003: Cancelled, timed out or unreadable requests
//   - DEF001-DEF006: Definition errors (missing keys, bad types, duplicates, layout, names)
//   - TBL001-TBL003: Table lookup errors and stale rows
package core
