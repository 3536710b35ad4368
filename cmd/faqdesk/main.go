// Package main provides the entry point for the faqdesk CLI.
package main

import (
	"os"

	"github.com/faqdesk/faqdesk/cmd/faqdesk/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
