package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"syscall"

	"github.com/MPfria02/Library-Management-System-sub001/db"
	"github.com/MPfria02/Library-Management-System-sub001/models"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

// readPassword reads a password from the terminal with echo off.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

var adminDisplayName string

var createAdminCmd = &cobra.Command{
	Use:   "create-admin <email>",
	Short: "Create an admin account with a password (or promote an existing user)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := strings.ToLower(strings.TrimSpace(args[0]))

		pw, err := readPassword("Password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		if len(pw) < 8 {
			return errors.New("password must be at least 8 characters")
		}
		again, err := readPassword("Confirm:  ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		if pw != again {
			return errors.New("passwords do not match")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}

		ctx := cmd.Context()
		u, err := ensureAdmin(ctx, email)
		if err != nil {
			return err
		}
		if err := store.SetUserPassword(ctx, u.ID, string(hash)); err != nil {
			return fmt.Errorf("set password: %w", err)
		}

		fmt.Printf("admin ready: %s (%s)\n", u.Email, u.ID)
		return nil
	},
}

// ensureAdmin creates the user as ADMIN, or promotes an existing one.
func ensureAdmin(ctx context.Context, email string) (*models.User, error) {
	name := adminDisplayName
	if name == "" {
		name = email
	}
	u := &models.User{
		ID:          uuid.NewString(),
		Email:       email,
		DisplayName: name,
		Role:        models.RoleAdmin,
	}
	err := store.CreateUser(ctx, u)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, db.ErrDuplicateEmail) {
		return nil, fmt.Errorf("create user: %w", err)
	}

	existing, err := store.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing.IsAdmin() {
		return existing, nil
	}
	promoted, err := store.SetUserRole(ctx, existing.ID, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("promote user: %w", err)
	}
	fmt.Printf("promoted existing user %s to ADMIN\n", email)
	return promoted, nil
}

func init() {
	createAdminCmd.Flags().StringVar(&adminDisplayName, "name", "", "display name (defaults to the email)")
	rootCmd.AddCommand(createAdminCmd)
}
