package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/telemtp/mtproto-go/internal/schema/codegen"
	"github.com/telemtp/mtproto-go/internal/schema/parser"
)

func newGenSchemaCmd() *cobra.Command {
	var pkg, out string
	cmd := &cobra.Command{
		Use:   "gen-schema <file.tl>",
		Short: "Generate Go types and a registry for a .tl schema file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("gen-schema: read %s: %w", args[0], err)
			}
			file, err := parser.Parse(string(raw))
			if err != nil {
				return fmt.Errorf("gen-schema: parse: %w", err)
			}
			src, err := codegen.Generate(file, codegen.Options{Package: pkg})
			if err != nil {
				return fmt.Errorf("gen-schema: generate: %w", err)
			}
			if out == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), src)
				return err
			}
			return os.WriteFile(out, []byte(src), 0o644)
		},
	}
	cmd.Flags().StringVar(&pkg, "package", "gen", "Go package name for the generated file")
	cmd.Flags().StringVar(&out, "out", "", "output file path (default: stdout)")
	return cmd
}
