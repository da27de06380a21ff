package cli

import (
	"github.com/spf13/cobra"

	"helpdesk/internal/auth"
	"helpdesk/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the default categories, priorities and statuses",
	Long: `Seed inserts the default categories, priorities and statuses that are
missing, and the admin account configured under seed.admin_* when its email is
not taken yet. Existing rows are left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := stdoutLogger()
		if err != nil {
			return err
		}
		store, err := openStore(logger)
		if err != nil {
			return err
		}
		defer store.Close()

		doc, err := seed.Default()
		if err != nil {
			return err
		}
		_, err = seed.Run(cmd.Context(), store, auth.NewPasswordHasher(cfg.Auth.BcryptCost), doc, configuredAdmin(), logger)
		return err
	},
}

// configuredAdmin returns the admin account from the seed section, if any.
func configuredAdmin() *seed.Admin {
	if cfg.Seed.AdminEmail == "" {
		return nil
	}
	return &seed.Admin{
		Name:     cfg.Seed.AdminName,
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
	}
}
