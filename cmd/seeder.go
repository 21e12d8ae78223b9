package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		if clearData {
			if _, err := db.Exec("TRUNCATE users, departments, organizations RESTART IDENTITY CASCADE"); err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			fmt.Println("Cleared existing data")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte("password"), cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash seed password: %v", err)
		}

		var orgID int64
		err = db.QueryRow("SELECT id FROM organizations WHERE name = $1", "Acme Corp").Scan(&orgID)
		if err != nil {
			err = db.QueryRow(
				"INSERT INTO organizations (name, description, active, created_at, updated_at) VALUES ($1, $2, true, now(), now()) RETURNING id",
				"Acme Corp", "Sample organization").Scan(&orgID)
			if err != nil {
				log.Fatalf("failed to seed organization: %v", err)
			}
			fmt.Println("Seeded organization: Acme Corp")
		}

		var deptID int64
		err = db.QueryRow("SELECT id FROM departments WHERE name = $1 AND organization_id = $2", "Engineering", orgID).Scan(&deptID)
		if err != nil {
			err = db.QueryRow(
				"INSERT INTO departments (name, description, organization_id, active, created_at, updated_at) VALUES ($1, $2, $3, true, now(), now()) RETURNING id",
				"Engineering", "Sample department", orgID).Scan(&deptID)
			if err != nil {
				log.Fatalf("failed to seed department: %v", err)
			}
			fmt.Println("Seeded department: Engineering")
		}

		seedUser := func(username, email, firstName, lastName, role string) {
			var exists int
			if err := db.QueryRow("SELECT 1 FROM users WHERE username = $1", username).Scan(&exists); err == nil {
				fmt.Printf("User %s already exists, skipping\n", username)
				return
			}
			_, err := db.Exec(
				`INSERT INTO users (username, email, password_hash, first_name, last_name, role, active, created_at, updated_at)
				 VALUES ($1, $2, $3, $4, $5, $6, true, now(), now())`,
				username, email, string(hash), firstName, lastName, role)
			if err != nil {
				log.Fatalf("failed to seed user %s: %v", username, err)
			}
			fmt.Printf("Seeded user: %s (%s)\n", username, role)
		}

		seedUser("sysadmin", "sysadmin@example.com", "System", "Admin", "SYSTEM_ADMIN")
		seedUser("hradmin", "hradmin@example.com", "HR", "Admin", "HR_ADMIN")
		seedUser("manager", "manager@example.com", "Mia", "Moran", "MANAGER")
		seedUser("employee", "employee@example.com", "Eli", "Evans", "EMPLOYEE")
	},
}
