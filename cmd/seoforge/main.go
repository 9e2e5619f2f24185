package main

import (
	"seoforge/cmd/cmd"
	"seoforge/internal/logger"
)

func main() {
	logger.Init() // Initialize the logger
	cmd.Execute()
}
