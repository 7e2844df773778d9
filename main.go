package main

import (
	"github.com/solo-io/graphql-console/cmd"
)

func main() {
	cmd.Execute()
}
