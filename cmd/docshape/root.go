package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "docshape",
	Short:        "Validate hierarchical documents against document schemas",
	Long:         "docshape validates YAML or JSON documents against schemas that are themselves documents, reporting every mismatch with a path into the data.",
	SilenceUsage: true,
}
