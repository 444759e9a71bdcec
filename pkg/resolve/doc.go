// Package resolve computes the minimal version each dependent package must be
// upgraded to so that its transitive closure carries a required version of a
// target dependency.
//
// # Session
//
// All registry metadata lives in a [Session]: per-package version lists,
// per-(package, version) dependency lists, and the set of packages the
// registry does not know. Entries are filled once and never change, so one
// Session can be shared by any number of concurrent resolutions. Concurrent
// lookups of the same uncached package share a single registry fetch.
//
//	s := resolve.NewSession(npmClient, resolve.Options{})
//	out, err := s.MinNecessaryUpdate(ctx, "express", "4.16.0", "qs", "6.7.3", false)
//	fmt.Println(out) // "4.17.0" or "no favourable outcome because of express"
//
// # Closures
//
// [Session.Closure] walks the dependency graph breadth-first from a pinned
// root. Each frontier is expanded concurrently; a (name, specifier) pair is
// expanded once, which also makes the walk safe on cyclic graphs.
//
// Range-expansion mode is a conservative (worst-case) mode: every package
// reached under a range also pulls in every published version of itself that
// the range admits, so the closure covers any version an installer could pick.
//
// # Search
//
// [Session.MinNecessaryUpdate] scans the root's sorted version history from
// the newest version downward with halving steps and returns the lowest
// version, at or above the caller's floor, whose closure satisfies the
// requirement. The result is only correct when the effective dependency
// version never decreases as the root version increases.
//
// # Batches
//
// [Session.ListUpdate] resolves many roots in parallel and returns results in
// input order. A registry failure fails the whole batch.
package resolve
