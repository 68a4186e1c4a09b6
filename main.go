// Package main is the entry point for tvloop.
package main

import (
	"github.com/samber/lo"
	"github.com/tvloop/tvloop/cmd"
	"github.com/tvloop/tvloop/config"
	"github.com/tvloop/tvloop/log"
	"github.com/tvloop/tvloop/player"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	go player.CollectStaleSockets()

	cmd.Execute()
}
