// Command tabledb inspects and maintains table database project directories.
package main

import "github.com/mesh-intelligence/tabledb/internal/cli"

func main() {
	cli.Execute()
}
