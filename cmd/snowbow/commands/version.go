package commands

import (
	"fmt"
	"runtime"

	"git.home.luguber.info/inful/snowbow/internal/version"
)

// VersionCmd implements the 'version' command.
type VersionCmd struct{}

func (VersionCmd) Run(_ *Global, _ *CLI) error {
	fmt.Printf("snowbow %s %s\n", version.String(), runtime.Version())
	return nil
}
