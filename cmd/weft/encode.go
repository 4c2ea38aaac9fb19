package main

import (
	"fmt"

	"github.com/aretw0/weft/internal/cli"
	"github.com/aretw0/weft/pkg/writable"
	"github.com/spf13/cobra"
)

var encodeCmd = &cobra.Command{
	Use:   "encode [file]",
	Short: "Convert a value to a Writable record",
	Long: `Reads a JSON, YAML or Lua value from a file or stdin, converts it to a
Writable record and prints the record bytes. The record type needed to decode
the bytes again is reported on stderr.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		formatFlag, _ := cmd.Flags().GetString("format")
		ordered, _ := cmd.Flags().GetBool("ordered")
		tagged, _ := cmd.Flags().GetBool("tagged")
		quiet, _ := cmd.Flags().GetBool("quiet")

		enc, err := outputEncoding(cmd)
		if err != nil {
			return err
		}

		in, name, err := openInput(cmd, args)
		if err != nil {
			return err
		}
		defer in.Close()

		format, err := cli.ParseFormat(formatFlag)
		if err != nil {
			return err
		}
		if format == cli.FormatAuto {
			format = cli.FormatFromPath(name)
		}

		value, err := cli.ReadValue(in, format, engine.Scope())
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", name, err)
		}

		var rec writable.Record
		if ordered {
			rec, err = engine.ToOrderedWritable(value)
		} else {
			rec, err = engine.ToWritable(value)
		}
		if err != nil {
			return err
		}

		var data []byte
		if tagged {
			data, err = writable.MarshalTagged(rec)
		} else {
			data, err = writable.Marshal(rec)
		}
		if err != nil {
			return fmt.Errorf("failed to encode record: %w", err)
		}

		if !quiet {
			cli.PrintSystemMessage(cmd.ErrOrStderr(), "type: %s (%s)", writable.TypeFor(rec), writable.ClassName(rec))
		}
		return cli.WriteRecord(cmd.OutOrStdout(), data, enc)
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)

	encodeCmd.Flags().StringP("format", "f", "auto", "Input format: auto, json, yaml or lua")
	encodeCmd.Flags().StringP("encoding", "e", "hex", "Output encoding: hex, base64 or raw")
	encodeCmd.Flags().Bool("ordered", false, "Produce an order-capable (WritableComparable) record")
	encodeCmd.Flags().Bool("tagged", false, "Prefix the record with its type")
	encodeCmd.Flags().BoolP("quiet", "q", false, "Do not report the record type")
}
