package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/callscope/internal/client"
	"github.com/ziadkadry99/callscope/internal/ingest"
	"github.com/ziadkadry99/callscope/internal/state"
)

var blacklistCmd = &cobra.Command{
	Use:   "blacklist",
	Short: "Manage the method blacklist of a running server",
}

var blacklistPushCmd = &cobra.Command{
	Use:   "push <file>",
	Short: "Replace the server's blacklist with the names in a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := ingest.LoadBlacklistFile(args[0])
		if err != nil {
			return err
		}
		serverURL, _ := cmd.Flags().GetString("server")
		if err := client.New(serverURL).UploadBlacklist(context.Background(), names); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "%s (%d names)\n", state.MsgBlacklistUploaded, len(names))
		return nil
	},
}

var blacklistShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the server's blacklist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		serverURL, _ := cmd.Flags().GetString("server")
		names, err := client.New(serverURL).Blacklist(context.Background())
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	},
}

func init() {
	blacklistCmd.PersistentFlags().String("server", client.DefaultBaseURL, "callscope server URL")
	blacklistCmd.AddCommand(blacklistPushCmd, blacklistShowCmd)
	rootCmd.AddCommand(blacklistCmd)
}
