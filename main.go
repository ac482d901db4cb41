package main

import (
	"os"

	"github.com/Gopalakrishnan-va/job-search-agent-langgraph/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
