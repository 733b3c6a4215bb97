/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/taskcourse/apiserver/config"
	"github.com/taskcourse/apiserver/internal/auth"
	"github.com/taskcourse/apiserver/internal/db"
	"github.com/taskcourse/apiserver/internal/store"
	"github.com/taskcourse/apiserver/types"
)

const (
	seedAdminName  = "Admin"
	seedAdminEmail = "admin@example.com"
)

// seedCmd creates the bootstrap admin account if it does not exist.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the bootstrap admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		password, err := cmd.Flags().GetString("password")
		if err != nil {
			return err
		}
		if password == "" {
			return errors.New("--password is required")
		}

		dbConn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("open database failed: %w", err)
		}
		defer func() {
			_ = dbConn.Close()
		}()

		users := store.NewUserRepository(dbConn)

		if _, err := users.GetByEmail(cmd.Context(), seedAdminEmail); err == nil {
			log.Println("Admin user already exists")
			return nil
		} else if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("check admin failed: %w", err)
		}

		creds := auth.NewCredentials(cfg.JWTSecret, 24*time.Hour)
		hashed, err := creds.HashPassword(password)
		if err != nil {
			return fmt.Errorf("hash password failed: %w", err)
		}

		admin, err := users.Create(cmd.Context(), types.User{
			Name:         seedAdminName,
			Email:        seedAdminEmail,
			Role:         types.RoleAdmin,
			PasswordHash: hashed,
		})
		if err != nil {
			return fmt.Errorf("create admin failed: %w", err)
		}

		log.Println("Admin user created successfully")
		log.Printf("Email: %s", admin.Email)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().String("password", "", "password for the admin account")
}
