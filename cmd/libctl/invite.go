package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/MPfria02/Library-Management-System-sub001/models"

	"github.com/spf13/cobra"
)

var (
	inviteRole string
	inviteDays int
)

var inviteCmd = &cobra.Command{
	Use:   "invite <email>",
	Short: "Mint a registration invite and print the signup link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := strings.ToLower(strings.TrimSpace(args[0]))
		role := models.Role(strings.ToUpper(inviteRole))
		if role != models.RoleMember && role != models.RoleAdmin {
			return fmt.Errorf("role must be MEMBER or ADMIN, got %q", inviteRole)
		}
		if inviteDays <= 0 {
			inviteDays = 1
		}

		buf := make([]byte, 16)
		_, _ = rand.Read(buf)
		token := hex.EncodeToString(buf)

		inv := &models.Invite{
			Email:     email,
			Token:     token,
			Role:      role,
			ExpiresAt: time.Now().Add(time.Duration(inviteDays) * 24 * time.Hour),
			CreatedBy: "libctl",
		}
		if err := store.CreateInvite(cmd.Context(), inv); err != nil {
			return fmt.Errorf("create invite: %w", err)
		}

		origin := os.Getenv("WEB_ORIGIN")
		if origin == "" {
			origin = "http://localhost:5173"
		}
		fmt.Printf("invite for %s (role %s, expires %s)\n", email, role, inv.ExpiresAt.Format(time.RFC3339))
		fmt.Printf("token: %s\n", token)
		fmt.Printf("link:  %s/login?inviteToken=%s\n", strings.TrimRight(origin, "/"), token)
		return nil
	},
}

func init() {
	inviteCmd.Flags().StringVar(&inviteRole, "role", string(models.RoleMember), "role granted on signup (MEMBER or ADMIN)")
	inviteCmd.Flags().IntVar(&inviteDays, "expires-days", 1, "days until the invite expires")
	rootCmd.AddCommand(inviteCmd)
}
