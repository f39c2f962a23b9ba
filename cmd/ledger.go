package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"solarsky/config"
	"solarsky/internal/infrastructure/storage"
)

func newLedgerCmd() *cobra.Command {
	var ledger string
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Print serial numbers recorded by the last run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(func(c *config.Config) {
				applyString(cmd, "ledger", &c.LedgerPath, ledger)
				// Хранилище не нужно: проверка firestore_project не должна мешать
				c.Store.Kind = config.StoreMemory
			})
			if err != nil {
				return err
			}
			return printLedger(cfg.LedgerPath, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&ledger, "ledger", "serial_numbers.txt", "serial number ledger file")
	return cmd
}

func printLedger(path string, out io.Writer) error {
	log, err := storage.OpenFileSerialLog(path)
	if err != nil {
		return err
	}
	defer log.Close()

	serials, err := log.ReadAll()
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}
	for _, s := range serials {
		fmt.Fprintln(out, s)
	}
	return nil
}
