package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	os.Exit(run())
}

func run() int {
	root := &cobra.Command{
		Use:     "organizer",
		Short:   "Deduplicate files and organize them into Year/Month folders",
		Version: version + " (" + commit + ")",
	}

	root.AddCommand(newOrganizeCmd())
	root.AddCommand(newDeleteDuplicatesCmd())
	root.AddCommand(newPruneEmptyCmd())

	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}
