// Package main is the entry point for the salespipe application
package main

import (
	"github.com/dataops-sre/salespipe/cmd"
)

func main() {
	cmd.Execute()
}
