package main

import (
	"fmt"
	"os"

	"github.com/JonMunkholm/ticketsheet/internal/cli"
)

func main() {
	if err := cli.RootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.Describe(err))
		os.Exit(1)
	}
}
