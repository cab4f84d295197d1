// Package jsop is a DBM-based persistence layer for JSON-shaped data:
// it stores large nested documents on disk as a flat collection of
// address-keyed records, so that reading or mutating one value deep in
// the document never requires loading, parsing, or rewriting the whole
// thing.
//
// To create a new database:
//
//	err := jsop.Init("/path/to/db", jsop.Object{{Key: "name", Value: "ed"}})
//
// To open an existing one:
//
//	s, err := jsop.Open("/path/to/db", false)
//	if err != nil {
//		// handle err
//	}
//	defer s.Close()
//
//	root, err := s.Root()
//	name, err := root.Map.Get("name")
//
// The on-disk layout, invariants, and error taxonomy are documented in
// SPEC_FULL.md alongside this module's source.
package jsop
