package cmd

import "github.com/spf13/cobra"

// redisCmd groups utilities for the redis key store backend.
var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Redis key store utilities",
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
