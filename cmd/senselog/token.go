package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sensehel/senselog/internal/config"
	"github.com/sensehel/senselog/internal/model"
	"github.com/sensehel/senselog/internal/store"
	"github.com/sensehel/senselog/internal/store/postgres"
	"github.com/sensehel/senselog/internal/tokengen"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage platform authentication tokens",
}

var tokenValue string

var tokenAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new authentication token",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		token := tokenValue
		if token == "" {
			token, err = tokengen.Generate()
			if err != nil {
				return err
			}
		}

		t := &model.Token{Token: token}
		if err := st.CreateToken(context.Background(), t); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return fmt.Errorf("token already exists")
			}
			return err
		}

		fmt.Println(t.Token)
		return nil
	},
}

var tokenListCmd = &cobra.Command{
	Use:   "list",
	Short: "List authentication tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		tokens, err := st.ListTokens(context.Background())
		if err != nil {
			return err
		}

		for _, t := range tokens {
			fmt.Printf("%s\t%s\n", t.Token, t.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

var tokenRemoveCmd = &cobra.Command{
	Use:   "remove <token>",
	Short: "Delete an authentication token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.DeleteToken(context.Background(), args[0]); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("token not found")
			}
			return err
		}

		fmt.Println("deleted")
		return nil
	},
}

// openStore connects to the configured Postgres database.
func openStore() (store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return postgres.New(cfg.DatabaseURL)
}

func init() {
	tokenAddCmd.Flags().StringVar(&tokenValue, "token", "", "use this token instead of generating one")

	tokenCmd.AddCommand(tokenAddCmd)
	tokenCmd.AddCommand(tokenListCmd)
	tokenCmd.AddCommand(tokenRemoveCmd)
}
