package main

import (
	"fmt"

	"github.com/hushlane/central/internal/license/model"
	"github.com/spf13/cobra"
)

var revokeCmd = &cobra.Command{
	Use:   "revoke <customer-id>",
	Short: "Revoke a customer's license",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		customerID := args[0]

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		res, err := db.Exec(`UPDATE licenses SET status = $1 WHERE customer_id = $2`,
			model.StatusRevoked, customerID)
		if err != nil {
			return fmt.Errorf("failed to revoke license: %w", err)
		}
		affected, _ := res.RowsAffected()
		if affected == 0 {
			return fmt.Errorf("no license found for customer %q", customerID)
		}

		fmt.Printf("license for %s revoked\n", customerID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(revokeCmd)
}
