package main

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hushlane/central/internal/license/keygen"
	"github.com/hushlane/central/internal/license/model"
	"github.com/spf13/cobra"
)

var (
	createPlan   string
	createMonths int
)

var createCmd = &cobra.Command{
	Use:   "create <customer-id> <customer-name>",
	Short: "Create a new license for a customer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		customerID, customerName := args[0], args[1]

		switch createPlan {
		case model.PlanStandard, model.PlanPro, model.PlanEnterprise:
		default:
			return fmt.Errorf("unknown plan %q (want standard, pro, or enterprise)", createPlan)
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		var existing string
		err = db.QueryRow(`SELECT license_key FROM licenses WHERE customer_id = $1`, customerID).Scan(&existing)
		if err == nil {
			return fmt.Errorf("customer %q already has a license: %s (revoke it first)", customerID, existing)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check existing license: %w", err)
		}

		key, err := keygen.GenerateKey()
		if err != nil {
			return err
		}

		// months == 0 means a lifetime license
		var expiresAt *time.Time
		if createMonths > 0 {
			t := time.Now().AddDate(0, 0, createMonths*30)
			expiresAt = &t
		}

		_, err = db.Exec(`
			INSERT INTO licenses (license_key, customer_id, customer_name, plan, status, expires_at)
			VALUES ($1, $2, $3, $4, 'active', $5)`,
			key, customerID, customerName, createPlan, expiresAt)
		if err != nil {
			return fmt.Errorf("failed to insert license: %w", err)
		}

		fmt.Printf("License created\n\n")
		fmt.Printf("  Customer ID:   %s\n", customerID)
		fmt.Printf("  Customer Name: %s\n", customerName)
		fmt.Printf("  Plan:          %s\n", createPlan)
		if expiresAt != nil {
			fmt.Printf("  Expires:       %s (%d months)\n", expiresAt.Format("2006-01-02"), createMonths)
		} else {
			fmt.Printf("  Expires:       never (lifetime)\n")
		}
		fmt.Printf("\n  LICENSE_KEY=%s\n  CUSTOMER_ID=%s\n", key, customerID)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createPlan, "plan", model.PlanStandard, "license plan (standard|pro|enterprise)")
	createCmd.Flags().IntVar(&createMonths, "months", 12, "license duration in months (0 for lifetime)")
	rootCmd.AddCommand(createCmd)
}
