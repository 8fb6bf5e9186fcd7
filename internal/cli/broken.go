package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/Concierge/internal/ledger"
)

// NewBrokenCmd создаёт группу команд для работы с ledger'ом сломанных
// лотов.
func NewBrokenCmd(storeFn func() (*ledger.Store, error), outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "broken",
		Short: "Manage broken lots",
	}

	cmd.AddCommand(
		newBrokenListCmd(storeFn, outputFn),
		newBrokenShowCmd(storeFn, outputFn),
		newBrokenResolveCmd(storeFn, outputFn),
	)

	return cmd
}

func newBrokenListCmd(storeFn func() (*ledger.Store, error), outputFn func() *Output) *cobra.Command {
	var unresolved bool
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List broken lots",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storeFn()
			if err != nil {
				return err
			}
			out := outputFn()

			records, err := store.List(cmd.Context(), ledger.ListFilter{
				Unresolved: unresolved,
				Limit:      limit,
			})
			if err != nil {
				return err
			}

			headers := []string{"LOT_ID", "TYPE", "REV", "RESOLVED", "BROKEN_AT", "MESSAGE"}
			rows := make([][]string, len(records))
			for i, r := range records {
				rows[i] = []string{
					r.Lot.ID,
					r.Lot.LotType,
					r.Rev,
					strconv.FormatBool(r.Resolved),
					r.BrokenAt.Format(time.RFC3339),
					r.Message,
				}
			}

			out.Print(headers, rows, records)
			return nil
		},
	}

	cmd.Flags().BoolVar(&unresolved, "unresolved", false, "Show only unresolved records")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of records (default 100)")

	return cmd
}

func newBrokenShowCmd(storeFn func() (*ledger.Store, error), outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show LOT_ID",
		Short: "Show broken lot details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storeFn()
			if err != nil {
				return err
			}
			out := outputFn()

			record, err := store.Get(cmd.Context(), args[0])
			if errors.Is(err, ledger.ErrNotFound) {
				return fmt.Errorf("lot %s is not in the ledger", args[0])
			}
			if err != nil {
				return err
			}

			out.Print(
				[]string{"LOT_ID", "TYPE", "STATUS", "REV", "RESOLVED", "BROKEN_AT", "MESSAGE"},
				[][]string{{
					record.Lot.ID,
					record.Lot.LotType,
					string(record.Lot.Status),
					record.Rev,
					strconv.FormatBool(record.Resolved),
					record.BrokenAt.Format(time.RFC3339),
					record.Message,
				}},
				record,
			)
			return nil
		},
	}
}

func newBrokenResolveCmd(storeFn func() (*ledger.Store, error), outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve LOT_ID",
		Short: "Mark a broken lot as resolved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storeFn()
			if err != nil {
				return err
			}
			out := outputFn()

			record, err := store.Get(cmd.Context(), args[0])
			if errors.Is(err, ledger.ErrNotFound) {
				return fmt.Errorf("lot %s is not in the ledger", args[0])
			}
			if err != nil {
				return err
			}
			if record.Resolved {
				out.Success(fmt.Sprintf("Lot %s is already resolved", args[0]))
				return nil
			}

			if err := store.Resolve(cmd.Context(), record.Lot); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Lot %s resolved", args[0]))
			return nil
		},
	}
}
