package main

import (
	"errors"
	"fmt"
	"github.com/alexedwards/argon2id"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"stix-ui/app/server/inits"
	"stix-ui/app/server/models"
)

var useraddOpts struct {
	username string
	email    string
	name     string
	password string
	admin    bool
	role     string
}

var useraddCmd = &cobra.Command{
	Use:   "useradd",
	Short: "Create a panel user",
	Long: `Create a panel user.

Example:
  stix-ui useradd --username alice --email alice@example.com --name "Alice" --password s3cret --admin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, l := bootstrap()
		defer l.Sync()

		db, err := inits.DB(cfg.System.DBConnectionString)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}

		user, err := createUser(db, useraddOpts.username, useraddOpts.email, useraddOpts.name, useraddOpts.password, useraddOpts.admin, useraddOpts.role)
		if err != nil {
			return err
		}

		fmt.Printf("Created user %s (id %d)\n", user.Username, user.ID)
		return nil
	},
}

func init() {
	useraddCmd.Flags().StringVar(&useraddOpts.username, "username", "", "login name (required)")
	useraddCmd.Flags().StringVar(&useraddOpts.email, "email", "", "email address (required)")
	useraddCmd.Flags().StringVar(&useraddOpts.name, "name", "", "display name, defaults to the username")
	useraddCmd.Flags().StringVar(&useraddOpts.password, "password", "", "password (required)")
	useraddCmd.Flags().BoolVar(&useraddOpts.admin, "admin", false, "grant administrator rights")
	useraddCmd.Flags().StringVar(&useraddOpts.role, "role", "", "name of an existing role")
	_ = useraddCmd.MarkFlagRequired("username")
	_ = useraddCmd.MarkFlagRequired("email")
	_ = useraddCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(useraddCmd)
}

func createUser(db *gorm.DB, username, email, name, password string, admin bool, roleName string) (*models.User, error) {
	if name == "" {
		name = username
	}

	user := models.User{
		Email:    email,
		Username: username,
		Name:     name,
		IsAdmin:  admin,
	}

	if roleName != "" {
		var role models.Role
		if err := db.First(&role, "name = ?", roleName).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("no role named %q", roleName)
			}
			return nil, fmt.Errorf("find role: %w", err)
		}
		user.RoleID = &role.ID
	}

	passwordHash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.Password = passwordHash

	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("username or email already in use")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return &user, nil
}
