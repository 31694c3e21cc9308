/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/schoolroster/roster/config"
	"github.com/schoolroster/roster/internal/auth"
	"github.com/schoolroster/roster/internal/db"
	"github.com/schoolroster/roster/internal/services"
	"github.com/schoolroster/roster/internal/store"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the bootstrap administrator and first class",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		logger := newLogger()

		dbConn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		hasher, err := auth.NewHasher(cfg.Auth.PasswordHasher)
		if err != nil {
			return err
		}
		users := services.NewUserService(
			store.NewUserRepository(dbConn),
			hasher,
			auth.NewTokenIssuer(cfg.Auth.TokenSecret),
			services.UserOptions{},
		)

		admin, err := services.Seed(cmd.Context(), users, store.NewClassRepository(dbConn), services.SeedInput{
			AdminEmail:    cfg.Seed.AdminEmail,
			AdminPassword: cfg.Seed.AdminPassword,
			ClassGrade:    cfg.Seed.ClassGrade,
		})
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		logger.Info("seeded administrator", "id", admin.ID, "email", admin.Email)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
