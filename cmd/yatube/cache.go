package main

import (
	"github.com/spf13/cobra"

	"github.com/d60-Lab/yatube/internal/app"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Page cache maintenance",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached page",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := bootstrap()
		if err != nil {
			return err
		}
		pc, err := app.NewPageCache(cfg)
		if err != nil {
			return err
		}
		if err := pc.Clear(cmd.Context()); err != nil {
			return err
		}
		cmd.Printf("page cache cleared (%s)\n", cfg.Cache.Backend)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
}
