// Package kvlite provides a mapping-like key/value store backed by a
// single two-column table in an embedded SQLite database.
//
// A Store exposes dictionary semantics (point lookup, assignment,
// deletion, ordered iteration, pop-with-default) and translates every
// operation into parameterized SQL against a (key TEXT PRIMARY KEY,
// value BLOB) table. Access is expressed through the Expr type: either
// a literal Key, which addresses exactly one row and makes absence an
// error, or a predicate over the key column (In, Cmp, Prefix, And, Or,
// Not), which addresses zero or more rows and makes absence an empty
// result. The two forms must never be conflated; see Store.Get.
//
// Values are serialized through a pluggable Codec (msgpack by default)
// and stored as opaque blobs. Compound operations such as Pop run their
// read and delete inside one transaction, so concurrent writers never
// observe a partial effect.
//
// Multiple Stores may share one DB handle, and multiple DB handles may
// bind the same database file. The handle is explicit: there is no
// package-level connection.
package kvlite
