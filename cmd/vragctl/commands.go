package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/vragkit/vrag/device"
	"github.com/ZanzyTHEbar/vragkit/vrag/hashing"
	"github.com/ZanzyTHEbar/vragkit/vrag/jsonutil"
	"github.com/ZanzyTHEbar/vragkit/vrag/textutil"
	"github.com/ZanzyTHEbar/vragkit/vrag/tokenizer"
)

func newHashCmd() *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "hash [text...]",
		Short: "Print the md5 content id of text (args or stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hashing.ComputeMDHashID(text, prefix))
			return nil
		},
	}
	cmd.Flags().StringVarP(&prefix, "prefix", "p", "", "prefix prepended to the hex digest, e.g. chunk-")
	return cmd
}

func newTokensCmd(opts *rootOptions) *cobra.Command {
	var model string

	tokens := &cobra.Command{
		Use:   "tokens",
		Short: "Count or truncate text in model tokens",
	}
	tokens.PersistentFlags().StringVarP(&model, "model", "m", "", "tokenizer model (overrides tokenizer.model_name)")

	newTokenizer := func() (tokenizer.Tokenizer, error) {
		if model != "" {
			opts.cfg.Tokenizer.ModelName = model
		}
		return opts.factory.CreateTokenizer()
	}

	count := &cobra.Command{
		Use:   "count [text...]",
		Short: "Print the token count of text",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}
			tk, err := newTokenizer()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tokenizer.Count(tk, text))
			return nil
		},
	}

	var maxTokens int
	truncate := &cobra.Command{
		Use:   "truncate [text...]",
		Short: "Cut text down to at most --max tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}
			tk, err := newTokenizer()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tokenizer.TruncateString(tk, text, maxTokens))
			return nil
		},
	}
	truncate.Flags().IntVar(&maxTokens, "max", 512, "token budget")

	tokens.AddCommand(count, truncate)
	return tokens
}

func newJSONCmd() *cobra.Command {
	jsonCmd := &cobra.Command{
		Use:   "json",
		Short: "JSON helpers for LLM responses",
	}

	var schemaPath string
	extract := &cobra.Command{
		Use:   "extract [response...]",
		Short: "Extract and pretty-print the JSON object embedded in an LLM response",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}
			obj, err := jsonutil.ConvertResponseToJSON(text)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(obj, "", "  ")
			if err != nil {
				return err
			}

			if schemaPath != "" {
				schema, err := readFile(schemaPath)
				if err != nil {
					return err
				}
				if err := jsonutil.ValidateJSON(out, schema); err != nil {
					return err
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	extract.Flags().StringVar(&schemaPath, "schema", "", "JSON schema file the extracted object must satisfy")

	jsonCmd.AddCommand(extract)
	return jsonCmd
}

func newCSVCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "csv",
		Short: "Render a JSON array of rows from stdin as prompt CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, nil)
			if err != nil {
				return err
			}

			dec := json.NewDecoder(bytes.NewReader([]byte(text)))
			dec.UseNumber()
			var rows [][]any
			if err := dec.Decode(&rows); err != nil {
				return fmt.Errorf("expected a JSON array of arrays: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), textutil.ListOfListToCSV(rows))
			return nil
		},
	}
}

func newDeviceCmd(opts *rootOptions) *cobra.Command {
	var imageBind bool

	cmd := &cobra.Command{
		Use:   "device",
		Short: "Print the compute device models should run on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var prober device.SystemProber

			var d device.Device
			if imageBind {
				d = device.ImageBindDevice(prober)
			} else {
				var err error
				if d, err = opts.factory.Device(prober); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", d, d.ExecutionProvider())
			return nil
		},
	}
	cmd.Flags().BoolVar(&imageBind, "imagebind", false, "select a device that supports ImageBind (no MPS)")
	return cmd
}
