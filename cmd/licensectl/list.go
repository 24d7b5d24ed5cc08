package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all licenses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		rows, err := db.Query(`
			SELECT license_key, customer_id, customer_name, plan, status, expires_at
			FROM licenses
			ORDER BY created_at DESC`)
		if err != nil {
			return fmt.Errorf("failed to query licenses: %w", err)
		}
		defer rows.Close()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CUSTOMER ID\tCUSTOMER NAME\tPLAN\tSTATUS\tEXPIRES\tLICENSE KEY")

		count := 0
		for rows.Next() {
			var key, customerID, customerName, plan, status string
			var expiresAt *time.Time
			if err := rows.Scan(&key, &customerID, &customerName, &plan, &status, &expiresAt); err != nil {
				return fmt.Errorf("failed to scan license: %w", err)
			}

			expires := "never"
			if expiresAt != nil {
				if expiresAt.Before(time.Now()) {
					expires = fmt.Sprintf("EXPIRED %s", expiresAt.Format("2006-01-02"))
				} else {
					days := int(time.Until(*expiresAt).Hours() / 24)
					expires = fmt.Sprintf("%s (%dd)", expiresAt.Format("2006-01-02"), days)
				}
			}

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", customerID, customerName, plan, status, expires, key)
			count++
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating licenses: %w", err)
		}
		w.Flush()

		if count == 0 {
			fmt.Println("no licenses found")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
