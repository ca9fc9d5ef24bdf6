package main

import (
	"os"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		if logger != nil {
			logger.Debug("Command failed", "error", err)
		}
		printError(os.Stderr, err)
	}
	closeLog()
	if err != nil {
		os.Exit(1)
	}
}
