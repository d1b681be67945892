// Command satchel manages records whose typed fields are packed into
// string/string carrier columns.
package main

import "github.com/mesh-intelligence/satchel/internal/cli"

func main() {
	cli.Execute()
}
