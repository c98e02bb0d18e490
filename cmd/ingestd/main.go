package main

import "github.com/mumo-labs/ingest/internal/cmd"

func main() {
	cmd.Execute()
}
