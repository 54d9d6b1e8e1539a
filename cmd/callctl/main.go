package main

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"telephony-common/internal/calls"
	"telephony-common/pkg/logger"
	"telephony-common/pkg/utils"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "callctl",
		Short:        "Encode, decode and watch call record parcels",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("format", "hex", "Parcel text encoding: hex or base64")

	rootCmd.AddCommand(encodeCmd())
	rootCmd.AddCommand(decodeCmd())
	rootCmd.AddCommand(causesCmd())
	rootCmd.AddCommand(watchCmd())
	return rootCmd
}

func encodeParcel(format string, b []byte) (string, error) {
	switch format {
	case "hex":
		return hex.EncodeToString(b), nil
	case "base64":
		return base64.StdEncoding.EncodeToString(b), nil
	}
	return "", fmt.Errorf("unknown format %q", format)
}

func decodeParcel(format, s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	switch format {
	case "hex":
		return hex.DecodeString(s)
	case "base64":
		return base64.StdEncoding.DecodeString(s)
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

func encodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Build a call record from flags and print its parcel",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			id, _ := cmd.Flags().GetInt32("id")
			number, _ := cmd.Flags().GetString("number")
			state, _ := cmd.Flags().GetString("state")
			numberPres, _ := cmd.Flags().GetString("number-presentation")
			cnapPres, _ := cmd.Flags().GetString("cnap-presentation")
			cnapName, _ := cmd.Flags().GetString("cnap-name")
			cause, _ := cmd.Flags().GetString("cause")

			r := calls.NewRecord(int(id))
			r.SetNumber(number)
			r.SetCnapName(cnapName)

			s, err := calls.ParseState(state)
			if err != nil {
				return err
			}
			r.SetState(s)
			p, err := calls.ParsePresentation(numberPres)
			if err != nil {
				return err
			}
			r.SetNumberPresentation(p)
			if p, err = calls.ParsePresentation(cnapPres); err != nil {
				return err
			}
			r.SetCnapNamePresentation(p)
			c, err := calls.ParseDisconnectCause(cause)
			if err != nil {
				return err
			}
			r.SetDisconnectCause(c)

			out, err := encodeParcel(format, calls.Marshal(r))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().Int32("id", calls.InvalidCallID, "Call id")
	cmd.Flags().String("number", "", "Dialed or incoming number")
	cmd.Flags().String("state", calls.StateInvalid.String(), "Call state")
	cmd.Flags().String("number-presentation", calls.PresentationAllowed.String(), "Number presentation")
	cmd.Flags().String("cnap-presentation", calls.PresentationAllowed.String(), "CNAP name presentation")
	cmd.Flags().String("cnap-name", "", "CNAP name")
	cmd.Flags().String("cause", calls.CauseNotDisconnected.String(), "Disconnect cause; only kept for DISCONNECTED and IDLE calls")
	return cmd
}

func decodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode [parcel]",
		Short: "Decode a parcel given as an argument or on stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			asJSON, _ := cmd.Flags().GetBool("json")

			var text string
			if len(args) == 1 {
				text = args[0]
			} else {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				text = string(b)
			}

			raw, err := decodeParcel(format, text)
			if err != nil {
				return fmt.Errorf("parcel text: %w", err)
			}
			r, err := calls.Unmarshal(raw)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(r.View())
			}
			fmt.Fprintln(cmd.OutOrStdout(), r.String())
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print every field as JSON")
	return cmd
}

func causesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "causes",
		Short: "List disconnect cause names",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, c := range calls.DisconnectCauses() {
				fmt.Fprintln(cmd.OutOrStdout(), c.String())
			}
			return nil
		},
	}
}

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print call records as they are published on NATS",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, _ := cmd.Flags().GetString("nats-url")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logger.New(logger.Options{Env: "local", Level: "warn", Output: cmd.ErrOrStderr()})
			nc, err := utils.OpenNATS(url, "callctl", log)
			if err != nil {
				return err
			}
			defer nc.Close()

			out := cmd.OutOrStdout()
			sub, err := calls.Subscribe(nc, func(r *calls.Record) {
				fmt.Fprintln(out, r.String())
			}, func(err error) {
				log.Warn("dropping undecodable parcel", "err", err)
			})
			if err != nil {
				return err
			}
			defer sub.Unsubscribe()

			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().String("nats-url", "nats://127.0.0.1:4222", "NATS server URL")
	return cmd
}

// run executes the root command with args; used by tests.
func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(io.Discard)
	return root.ExecuteContext(ctx)
}
