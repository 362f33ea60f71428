package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/fieldview/internal/connector"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List registered connector providers",
	RunE: func(cmd *cobra.Command, args []string) error {
		names := connector.Providers()
		sort.Strings(names)
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}
