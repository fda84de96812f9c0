package main

import (
	"errors"
	"fmt"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"stix-ui/app/server/constants"
	"stix-ui/app/server/inits"
	"stix-ui/app/server/jwt"
	"stix-ui/app/server/models"
	"time"
)

var mintTokenOpts struct {
	username string
	ttl      time.Duration
}

var mintTokenCmd = &cobra.Command{
	Use:   "mint-token",
	Short: "Print an API token for the export API",
	Long: `Print an API token for the export API.

The token acts as the given user and is what the mirror worker expects in API_TOKEN.

Example:
  stix-ui mint-token --username mirror --ttl 8760h`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, l := bootstrap()
		defer l.Sync()

		db, err := inits.DB(cfg.System.DBConnectionString)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}

		j, err := jwt.New(cfg.Security.SignatureSecretKey)
		if err != nil {
			return fmt.Errorf("init jwt: %w", err)
		}

		token, err := mintToken(db, j, mintTokenOpts.username, mintTokenOpts.ttl, time.Now())
		if err != nil {
			return err
		}

		fmt.Println(token)
		return nil
	},
}

func init() {
	mintTokenCmd.Flags().StringVar(&mintTokenOpts.username, "username", "", "user the token acts as (required)")
	mintTokenCmd.Flags().DurationVar(&mintTokenOpts.ttl, "ttl", constants.APITokenDuration, "token lifetime")
	_ = mintTokenCmd.MarkFlagRequired("username")

	rootCmd.AddCommand(mintTokenCmd)
}

func mintToken(db *gorm.DB, j *jwt.JWT, username string, ttl time.Duration, now time.Time) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("ttl must be positive")
	}

	var user models.User
	if err := db.First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("no user named %q", username)
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	token, err := j.SignToken(&jwt.User{
		ID:      user.ID,
		Expires: now.Add(ttl).Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}
