package main

import (
	"github.com/hearthos/fixlog/cmd/fixlog/cmd"
)

func main() {
	cmd.Execute()
}
