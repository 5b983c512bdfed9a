package main

import (
	"github.com/robotalks/coldplate.go/pkg/cli/sh"
	"github.com/robotalks/coldplate.go/pkg/env"

	_ "github.com/robotalks/coldplate.go/pkg/cli/cmds/all"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
