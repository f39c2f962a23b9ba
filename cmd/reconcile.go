package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"solarsky/config"
	"solarsky/internal/container"
	"solarsky/internal/domain/entity"
	"solarsky/internal/domain/port"
	"solarsky/internal/metrics"
)

func newReconcileCmd() *cobra.Command {
	var (
		store  string
		ledger string
	)
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Apply the existing serial number ledger to the inspecting user's farm without flying",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(func(c *config.Config) {
				applyString(cmd, "store", &c.Store.Kind, store)
				applyString(cmd, "ledger", &c.LedgerPath, ledger)
			})
			if err != nil {
				return err
			}
			return runReconcile(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&store, "store", config.StoreFirestore, "record store: firestore, sqlite or memory")
	cmd.Flags().StringVar(&ledger, "ledger", "serial_numbers.txt", "serial number ledger file")
	return cmd
}

func runReconcile(ctx context.Context, cfg *config.Config, out io.Writer) error {
	res := &closer{}
	defer res.close()

	store, err := openStore(ctx, cfg, res)
	if err != nil {
		return err
	}
	serialLog, err := openSerialLog(cfg, res)
	if err != nil {
		return err
	}
	publisher, err := openPublisher(cfg, res)
	if err != nil {
		return err
	}
	bot, err := openBot(cfg)
	if err != nil {
		return err
	}
	var notifier port.Notifier
	if bot != nil {
		notifier = bot
	}

	// Журнал не очищается: сверяются номера, записанные прошлым запуском
	c := container.New(container.Ports{
		Store:     store,
		SerialLog: serialLog,
		Publisher: publisher,
		Notifier:  notifier,
		Recorder:  metrics.NoopRecorder{},
	}, container.Options{})

	report, err := c.Sessions.Land(ctx)
	if err != nil {
		return err
	}
	printReport(out, report)
	return nil
}

func printReport(out io.Writer, r *entity.ReconciliationReport) {
	switch r.Outcome {
	case entity.OutcomeNoInspectingUser:
		fmt.Fprintln(out, "No user is currently inspecting.")
	case entity.OutcomeNoFarm:
		fmt.Fprintf(out, "User %s has no farms, nothing to reconcile.\n", r.UserID)
	default:
		fmt.Fprintf(out, "Updated inspection data for user %s and farm %s: %d serials checked, %d panels marked faulty.\n",
			r.UserID, r.FarmID, r.SerialsChecked, r.PanelsMarked)
	}
}
