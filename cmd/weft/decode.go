package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/weft/internal/cli"
	"github.com/aretw0/weft/internal/presentation/tui"
	"github.com/aretw0/weft/pkg/writable"
	"github.com/spf13/cobra"
)

var decodeCmd = &cobra.Command{
	Use:   "decode [file]",
	Short: "Convert a Writable record to JSON",
	Long: `Reads record bytes from a file or stdin and prints the record as JSON.
Untagged records need --type, e.g. Text, Map, SortedMap or [Int32].`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		typeStr, _ := cmd.Flags().GetString("type")
		tagged, _ := cmd.Flags().GetBool("tagged")
		tree, _ := cmd.Flags().GetBool("tree")
		compact, _ := cmd.Flags().GetBool("compact")

		enc, err := outputEncoding(cmd)
		if err != nil {
			return err
		}
		if !tagged && typeStr == "" {
			return fmt.Errorf("--type is required for untagged records")
		}

		in, name, err := openInput(cmd, args)
		if err != nil {
			return err
		}
		defer in.Close()

		text, err := io.ReadAll(in)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		data, err := enc.Decode(text)
		if err != nil {
			return err
		}

		var rec writable.Record
		if tagged {
			rec, err = writable.UnmarshalTagged(data)
		} else {
			var t writable.Type
			if t, err = writable.ParseType(typeStr); err != nil {
				return err
			}
			rec, err = writable.Unmarshal(data, t)
		}
		if err != nil {
			return fmt.Errorf("failed to decode %s: %w", name, err)
		}

		out := cmd.OutOrStdout()
		if tree {
			profile := cli.ColorProfile(cfg.Output.Color, out)
			return tui.NewTreePrinter(profile).Print(out, rec)
		}

		value, err := engine.ToDynamic(rec)
		if err != nil {
			return err
		}
		var js []byte
		if compact {
			js, err = json.Marshal(value)
		} else {
			js, err = json.MarshalIndent(value, "", "  ")
		}
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(js))
		return err
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)

	decodeCmd.Flags().StringP("type", "t", "", "Record type, required unless --tagged")
	decodeCmd.Flags().StringP("encoding", "e", "hex", "Input encoding: hex, base64 or raw")
	decodeCmd.Flags().Bool("tagged", false, "The record is prefixed with its type")
	decodeCmd.Flags().Bool("tree", false, "Print the record tree instead of JSON")
	decodeCmd.Flags().Bool("compact", false, "Print JSON on a single line")
}
