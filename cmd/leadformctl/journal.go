package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"leadintake/internal/config"
	"leadintake/internal/database"
	"leadintake/internal/domain"
	"leadintake/internal/repository"
)

func newJournalCmd() *cobra.Command {
	var dsn string
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Maintain the submission journal",
	}
	cmd.PersistentFlags().StringVar(&dsn, "db", "", "journal database url (defaults to DATABASE_URL)")

	openRepo := func() (*repository.SubmissionRepository, func(), error) {
		if dsn == "" {
			cfg, err := config.Load()
			if err != nil {
				return nil, nil, err
			}
			dsn = cfg.DatabaseURL
		}
		db, err := database.Connect(dsn, nil)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(db, repository.Models()...); err != nil {
			_ = database.Close(db)
			return nil, nil, err
		}
		return repository.NewSubmissionRepository(db), func() { _ = database.Close(db) }, nil
	}

	var olderThan time.Duration
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete journal rows older than --older-than",
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, closeDB, err := openRepo()
			if err != nil {
				return err
			}
			defer closeDB()

			n, err := repo.Prune(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d submissions\n", n)
			return nil
		},
	}
	prune.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "retention window")

	var status string
	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "Show the most recent submissions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, closeDB, err := openRepo()
			if err != nil {
				return err
			}
			defer closeDB()

			rows, total, err := repo.List(cmd.Context(), domain.SubmissionFilter{
				Status: domain.SubmissionStatus(status),
				Limit:  limit,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range rows {
				fmt.Fprintf(out, "%s  %-9s %-6s %-10s lead=%s actor=%s %s\n",
					s.CreatedAt.Format(time.RFC3339), s.Status, s.Mode, s.ActorRole, s.LeadID, s.ActorID, s.Error)
			}
			fmt.Fprintf(out, "%d of %d\n", len(rows), total)
			return nil
		},
	}
	list.Flags().StringVar(&status, "status", "", "succeeded or failed")
	list.Flags().IntVar(&limit, "limit", 20, "rows to show")

	cmd.AddCommand(prune, list)
	return cmd
}
