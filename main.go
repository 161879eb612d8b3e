package main

import (
	"github.com/sharelot/sharelot/cmd"
	"github.com/sharelot/sharelot/log"
)

func main() {
	log.MaybeLoadTraceSetting()
	cmd.Execute()
}
