package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/telemtp/mtproto-go/internal/storage"
)

func newSessionCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{Use: "session", Short: "Inspect or manage stored sessions"}
	cmd.AddCommand(newSessionInspectCmd(flags))
	return cmd
}

func newSessionInspectCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Print the stored session state for a datacenter",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return fmt.Errorf("session inspect: open storage: %w", err)
			}
			defer store.Close()

			sess, err := store.Load(cmd.Context(), cfg.DC)
			if err != nil {
				if err == storage.ErrNotFound {
					fmt.Fprintf(cmd.OutOrStdout(), "no session stored for dc %d\n", cfg.DC)
					return nil
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "dc=%d addr=%s auth_key_id=%x pts=%d qts=%d date=%d seq=%d updated_at=%s\n",
				sess.DCID, sess.ServerAddr, sess.AuthKeyID, sess.Pts, sess.Qts, sess.Date, sess.Seq, sess.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"))
			return nil
		},
	}
}
