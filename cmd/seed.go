package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rasa-cafe/catalog"
	"rasa-cafe/database"
	"rasa-cafe/model"
	"rasa-cafe/utils"
)

var (
	adminName     string
	adminEmail    string
	adminNumber   string
	adminPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the default menu, floor, feature flags and an admin account",
	Long: `Seeds a fresh database. Products already on the menu are left alone.
The admin account is created only when a password is given and no user
holds the employee number yet.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&adminName, "admin-name", "", "Admin display name (default $ADMIN_NAME or Administrator)")
	seedCmd.Flags().StringVar(&adminEmail, "admin-email", "", "Admin email (default $ADMIN_EMAIL or admin@rasa.cafe)")
	seedCmd.Flags().StringVar(&adminNumber, "admin-employee-number", "", "Admin employee number (default $ADMIN_EMPLOYEE_NUMBER or 1000)")
	seedCmd.Flags().StringVar(&adminPassword, "admin-password", "", "Admin password (default $ADMIN_PASSWORD, admin skipped when empty)")
}

// firstSet returns the first non-empty value. Env lookups happen at run
// time so values from .env are visible.
func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func runSeed(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close(db)
	ctx := cmd.Context()
	adminName = firstSet(adminName, os.Getenv("ADMIN_NAME"), "Administrator")
	adminEmail = firstSet(adminEmail, os.Getenv("ADMIN_EMAIL"), "admin@rasa.cafe")
	adminNumber = firstSet(adminNumber, os.Getenv("ADMIN_EMPLOYEE_NUMBER"), "1000")
	adminPassword = firstSet(adminPassword, os.Getenv("ADMIN_PASSWORD"))

	added, err := catalog.SeedMenu(ctx, db, catalog.DefaultMenu())
	if err != nil {
		return err
	}
	log.Info("menu seeded", zap.Int("added", added))

	if adminPassword == "" {
		log.Info("no admin password given, skipping admin account")
		return nil
	}
	var existing model.User
	err = db.WithContext(ctx).Where("employee_number = ?", adminNumber).First(&existing).Error
	if err == nil {
		log.Info("admin account already exists", zap.String("employee_number", adminNumber))
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := utils.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	number := adminNumber
	admin := model.User{
		Name:           adminName,
		Email:          adminEmail,
		Password:       hashed,
		EmployeeNumber: &number,
		Role:           model.RoleAdmin,
		CreditLimit:    model.DefaultCreditLimit,
		CreditBalance:  model.DefaultCreditLimit,
	}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.Info("admin account created", zap.String("employee_number", adminNumber))
	return nil
}
