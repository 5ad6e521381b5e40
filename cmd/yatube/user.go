package main

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/spf13/cobra"

	"github.com/d60-Lab/yatube/config"
	"github.com/d60-Lab/yatube/internal/form"
	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/internal/service"
)

var createUserCmd = &cobra.Command{
	Use:   "createuser <username> <password>",
	Short: "Create a user account",
	Args:  cobra.ExactArgs(2),
	RunE:  runCreateUser,
}

func init() {
	createUserCmd.Flags().String("email", "", "email address")
	createUserCmd.Flags().String("first-name", "", "first name")
	createUserCmd.Flags().String("last-name", "", "last name")
}

func runCreateUser(cmd *cobra.Command, args []string) error {
	cfg, err := bootstrap()
	if err != nil {
		return err
	}
	f := &form.SignupForm{Username: args[0], Password: args[1], Password2: args[1]}
	f.Email, _ = cmd.Flags().GetString("email")
	f.FirstName, _ = cmd.Flags().GetString("first-name")
	f.LastName, _ = cmd.Flags().GetString("last-name")
	if err := binding.Validator.ValidateStruct(f); err != nil {
		return fmt.Errorf("invalid user: %w", err)
	}
	return createUser(cmd, cfg, f)
}

func createUser(cmd *cobra.Command, cfg *config.Config, f *form.SignupForm) error {
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	auth := service.NewAuthService(repository.NewUserRepository(db), cfg.Auth.Secret, cfg.Auth.SessionTTL)
	u, err := auth.Register(cmd.Context(), f)
	if err != nil {
		return err
	}
	cmd.Printf("created user %s (id=%d)\n", u.Username, u.ID)
	return nil
}
