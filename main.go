package main

import (
	_ "time/tzdata"

	"github.com/naka-gawa/team-metrics/cmd"
)

func main() {
	cmd.Execute()
}
