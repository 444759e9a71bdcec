// Package lockfile reads yarn.lock (v1) files and package.json manifests to
// find which top-level dependencies of a project pull in a given package.
//
// A yarn.lock v1 file is a list of entries. Each entry header lists the
// patterns ("name@range") it satisfies and its body records the locked
// version and the entry's own dependencies:
//
//	"@babel/core@^7.0.0", "@babel/core@^7.12.3":
//	  version "7.12.10"
//	  dependencies:
//	    "@babel/generator" "^7.12.10"
//
// [Lockfile.Dependents] walks these entries from the project's roots and
// reports every root whose locked closure contains the target; the result
// feeds the batch update scheduler.
package lockfile
