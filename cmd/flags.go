package cmd

import (
	"fmt"
	"os"
	"strconv"

	gncat "github.com/gnames/gncat/pkg"
	"github.com/spf13/cobra"
)

func versionFlag(cmd *cobra.Command) {
	hasVersionFlag, _ := cmd.Flags().GetBool("version")
	if hasVersionFlag {
		fmt.Printf("\nversion: %s\nbuild: %s\n\n", gncat.Version, gncat.Build)
		os.Exit(0)
	}
}

// keyArgs converts positional arguments to integer keys.
func keyArgs(args []string) ([]int, error) {
	res := make([]int, len(args))
	for i, v := range args {
		key, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid key '%s': must be a number", v)
		}
		res[i] = key
	}
	return res, nil
}
