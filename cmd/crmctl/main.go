package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/alims/leadcrm/internal/config"
	"github.com/alims/leadcrm/internal/crm/entity"
	"github.com/alims/leadcrm/internal/crm/repository"
	"github.com/alims/leadcrm/internal/crm/service"
)

func main() {
	root := &cobra.Command{
		Use:   "crmctl",
		Short: "Operational commands for the lead CRM",
	}

	root.AddCommand(
		newCreateCounsellorsCmd(),
		newSampleDataCmd(),
		newImportCmd(),
		newAssignRandomCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

type env struct {
	cfg      *config.Config
	db       *gorm.DB
	repos    *repository.Repositories
	services *service.Services
}

func setup() (*env, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	zapLogger := zap.NewNop()
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, cfg, nil, nil, zapLogger)
	return &env{cfg: cfg, db: db, repos: repos, services: services}, nil
}

func newCreateCounsellorsCmd() *cobra.Command {
	var count int
	var password string

	cmd := &cobra.Command{
		Use:   "create-counsellors",
		Short: "Create numbered counsellor accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			ctx := context.Background()

			for i := 1; i <= count; i++ {
				username := fmt.Sprintf("counsellor%d", i)
				user, err := e.services.Auth.Register(ctx, &service.RegisterRequest{
					Username: username,
					Name:     fmt.Sprintf("Counsellor %d", i),
					Email:    fmt.Sprintf("%s@example.com", username),
					Password: password,
					Role:     entity.RoleCounsellor,
				})
				if err == service.ErrUsernameTaken || err == service.ErrEmailTaken {
					fmt.Printf("skipped %s: already exists\n", username)
					continue
				}
				if err != nil {
					return err
				}
				fmt.Printf("created %s (%s)\n", user.Username, user.ID)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 5, "number of accounts to create")
	cmd.Flags().StringVar(&password, "password", "changeme123", "initial password for all accounts")
	return cmd
}

func newSampleDataCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "sample-data",
		Short: "Seed sample customers for a demo environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			ctx := context.Background()

			areas := []string{"North", "South", "East", "West", "Central"}
			created := 0
			for i := 1; i <= count; i++ {
				status := entity.CustomerStatuses[i%len(entity.CustomerStatuses)]
				_, err := e.services.Customer.Create(ctx, &service.CreateCustomerRequest{
					Name:        fmt.Sprintf("Sample Customer %d", i),
					PhoneNumber: fmt.Sprintf("+1555%07d", i),
					Email:       fmt.Sprintf("sample%d@example.com", i),
					Area:        areas[i%len(areas)],
					Status:      &status,
				})
				if err == service.ErrPhoneTaken {
					continue
				}
				if err != nil {
					return err
				}
				created++
			}
			fmt.Printf("created %d sample customers\n", created)
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 50, "number of customers to seed")
	return cmd
}

func newImportCmd() *cobra.Command {
	var username string
	var mappingID string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a CSV or XLSX customer file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			ctx := context.Background()

			user, err := e.repos.User.FindByUsername(ctx, username)
			if err != nil {
				return fmt.Errorf("user %s: %w", username, err)
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var mid *string
			if mappingID != "" {
				mid = &mappingID
			}

			result, err := e.services.Import.Run(ctx, user.ID, filepath.Base(args[0]), data, mid)
			if err != nil {
				return err
			}

			fmt.Printf("import %s: %d total, %d successful, %d failed\n",
				result.ImportID, result.Total, result.Successful, result.Failed)
			for _, re := range result.RowErrors {
				fmt.Printf("  row %d: %s\n", re.Row, re.Reason)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "username the import runs as")
	cmd.Flags().StringVar(&mappingID, "mapping", "", "column mapping id, defaults resolved otherwise")
	cmd.MarkFlagRequired("user")
	return cmd
}

func newAssignRandomCmd() *cobra.Command {
	var counsellor string
	var count int

	cmd := &cobra.Command{
		Use:   "assign-random",
		Short: "Randomly assign unassigned customers to a counsellor",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}
			ctx := context.Background()

			user, err := e.repos.User.FindByUsername(ctx, counsellor)
			if err != nil {
				return fmt.Errorf("counsellor %s: %w", counsellor, err)
			}

			actor := service.Actor{ID: "crmctl", Role: entity.RoleManager}
			assigned, err := e.services.Customer.RandomAssign(ctx, actor, user.ID, count)
			if err != nil {
				return err
			}
			fmt.Printf("assigned %d customers to %s\n", assigned, user.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&counsellor, "counsellor", "", "username of the receiving counsellor")
	cmd.Flags().IntVar(&count, "count", 10, "number of customers to assign")
	cmd.MarkFlagRequired("counsellor")
	return cmd
}
