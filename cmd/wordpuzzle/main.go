package main

import (
	"fmt"
	"os"

	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/cmd/wordpuzzle/app"
)

func main() {
	if err := app.New().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
