package main

import (
	"github.com/spf13/cobra"

	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/repository"
)

var createGroupCmd = &cobra.Command{
	Use:   "creategroup <slug> <title>",
	Short: "Create a post group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bootstrap()
		if err != nil {
			return err
		}
		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		desc, _ := cmd.Flags().GetString("description")
		g := &model.Group{Slug: args[0], Title: args[1], Description: desc}
		if err := repository.NewGroupRepository(db).Create(cmd.Context(), g); err != nil {
			return err
		}
		cmd.Printf("created group %s (id=%d)\n", g.Slug, g.ID)
		return nil
	},
}

func init() {
	createGroupCmd.Flags().String("description", "", "group description")
}
