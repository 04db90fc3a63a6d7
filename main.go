// The main package for the sitebind executable.
package main

import (
	"github.com/sitebind/sitebind/cmd"
)

func main() {
	cmd.Execute()
}
