package lockfile_test

import (
	"fmt"

	"github.com/matzehuels/minbump/pkg/lockfile"
)

func Example() {
	lf, err := lockfile.ReadFile("../../examples/yarn/yarn.lock")
	if err != nil {
		panic(err)
	}
	roots, err := lockfile.ReadManifestRoots("../../examples/yarn/package.json")
	if err != nil {
		panic(err)
	}

	for _, ref := range lf.Dependents("minimist", roots) {
		fmt.Println(ref)
	}
	// Output:
	// mkdirp@0.5.1
	// optimist@0.6.1
}

func ExampleParseRef() {
	name, version, _ := lockfile.ParseRef("@babel/core@7.12.3")
	fmt.Println(name, version)
	// Output: @babel/core 7.12.3
}
