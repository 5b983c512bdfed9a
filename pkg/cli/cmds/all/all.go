// Package all registers all shell commands.
package all

import (
	_ "github.com/robotalks/coldplate.go/pkg/cli/cmds/device"
	_ "github.com/robotalks/coldplate.go/pkg/cli/cmds/selftest"
	_ "github.com/robotalks/coldplate.go/pkg/cli/cmds/temp"
)
