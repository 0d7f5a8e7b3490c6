package main

import (
	"github.com/notuslabs/notus-aa/command/root"
)

func main() {
	root.NewRootCommand().Execute()
}
