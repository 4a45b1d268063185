// Package main is the entry point for the impall CLI.
package main

import "impall.dev/pkg/impall/cmd"

func main() {
	cmd.Execute()
}
