// cmd/matching-server/main.go
package main

import (
	"os"

	"talent-matching/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
