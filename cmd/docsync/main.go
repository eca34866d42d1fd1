// Command docsync converts Markdown files into remote rich-text
// documents.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	docsync "github.com/goliatone/go-docsync"
	"github.com/goliatone/go-docsync/blocks"
	"github.com/goliatone/go-docsync/cmd/docsync/internal/bootstrap"
	"github.com/goliatone/go-docsync/internal/commands/convertcmd"
	"github.com/goliatone/go-docsync/internal/logging"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	envFile    string
	logLevel   string
	logFormat  string
}

func (g globalFlags) bootstrapOptions(parseOnly bool) bootstrap.Options {
	return bootstrap.Options{
		ConfigPath: g.configPath,
		EnvFile:    g.envFile,
		LogLevel:   g.logLevel,
		LogFormat:  g.logFormat,
		ParseOnly:  parseOnly,
	}
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "docsync",
		Short:         "Convert Markdown into remote rich-text documents",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to a JSON config file")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "path to an env file with credentials (default: .env when present)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level override (trace, debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "log format override (json, console, pretty)")

	root.AddCommand(newConvertCommand(flags))
	root.AddCommand(newAppendCommand(flags))
	root.AddCommand(newReplaceCommand(flags))
	root.AddCommand(newParseCommand(flags))
	return root
}

func newConvertCommand(flags *globalFlags) *cobra.Command {
	var title string
	var folder string
	var noState bool

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Create a new remote document from a Markdown file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, sourcePath, err := readSource(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			if noState {
				sourcePath = ""
			}

			module, _, err := bootstrap.BuildModule(cmd.Context(), flags.bootstrapOptions(false))
			if err != nil {
				return err
			}
			defer module.Close()

			var result *docsync.ConvertResult
			handler := convertcmd.NewConvertHandler(module.Converter(), cliLogger(module), func(r *docsync.ConvertResult) {
				result = r
			})
			err = handler.Execute(cmd.Context(), convertcmd.ConvertCommand{
				Source:            source,
				SourcePath:        sourcePath,
				Title:             title,
				DestinationFolder: folder,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "document title (frontmatter wins when present)")
	cmd.Flags().StringVarP(&folder, "folder", "f", "", "destination folder token")
	cmd.Flags().BoolVar(&noState, "no-state", false, "skip recording the document in the sync-state store")
	return cmd
}

func newAppendCommand(flags *globalFlags) *cobra.Command {
	var documentID string

	cmd := &cobra.Command{
		Use:   "append <file>",
		Short: "Append a Markdown file to an existing document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, sourcePath, err := readSource(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			module, _, err := bootstrap.BuildModule(cmd.Context(), flags.bootstrapOptions(false))
			if err != nil {
				return err
			}
			defer module.Close()

			var result *docsync.ConvertResult
			handler := convertcmd.NewAppendHandler(module.Converter(), cliLogger(module), func(r *docsync.ConvertResult) {
				result = r
			})
			err = handler.Execute(cmd.Context(), convertcmd.AppendCommand{
				Source:     source,
				SourcePath: sourcePath,
				DocumentID: documentID,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&documentID, "document", "d", "", "target document id (required)")
	_ = cmd.MarkFlagRequired("document")
	return cmd
}

func newReplaceCommand(flags *globalFlags) *cobra.Command {
	var documentID string

	cmd := &cobra.Command{
		Use:   "replace <file>",
		Short: "Replace an existing document's content with a Markdown file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, sourcePath, err := readSource(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			module, _, err := bootstrap.BuildModule(cmd.Context(), flags.bootstrapOptions(false))
			if err != nil {
				return err
			}
			defer module.Close()

			var result *docsync.ConvertResult
			handler := convertcmd.NewReplaceHandler(module.Converter(), cliLogger(module), func(r *docsync.ConvertResult) {
				result = r
			})
			err = handler.Execute(cmd.Context(), convertcmd.ReplaceCommand{
				Source:     source,
				SourcePath: sourcePath,
				DocumentID: documentID,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&documentID, "document", "d", "", "target document id (required)")
	_ = cmd.MarkFlagRequired("document")
	return cmd
}

type parseMedia struct {
	BlockID  string `json:"block_id"`
	Source   string `json:"source"`
	URL      string `json:"url,omitempty"`
	Path     string `json:"path,omitempty"`
	Filename string `json:"filename,omitempty"`
}

type parseOutput struct {
	Title  string                 `json:"title,omitempty"`
	Blocks []*blocks.ContentBlock `json:"blocks"`
	Media  []parseMedia           `json:"media,omitempty"`
}

func newParseCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a Markdown file and print the block forest as JSON",
		Long:  "Parse converts locally and prints the resulting blocks without contacting the remote API, so no credentials are required.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, _, err := readSource(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			module, _, err := bootstrap.BuildModule(cmd.Context(), flags.bootstrapOptions(true))
			if err != nil {
				return err
			}
			defer module.Close()

			var result *docsync.ParseResult
			handler := convertcmd.NewParseHandler(module.Converter(), cliLogger(module), func(r *docsync.ParseResult) {
				result = r
			})
			if err := handler.Execute(cmd.Context(), convertcmd.ParseCommand{Source: source}); err != nil {
				return err
			}

			out := parseOutput{
				Title:  result.Title,
				Blocks: result.Forest.Blocks(),
			}
			for _, id := range result.Forest.IDs() {
				ref, ok := result.Media[id]
				if !ok {
					continue
				}
				out.Media = append(out.Media, parseMedia{
					BlockID:  ref.BlockID,
					Source:   string(ref.Source),
					URL:      ref.URL,
					Path:     ref.Path,
					Filename: ref.Filename,
				})
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	return cmd
}

func cliLogger(module *docsync.Module) docsync.Logger {
	return logging.ModuleLogger(module.Container().LoggerProvider(), "cli")
}

// readSource reads the Markdown input; "-" selects stdin. The returned
// path is empty for stdin so sync-state tracking is skipped.
func readSource(stdin io.Reader, arg string) ([]byte, string, error) {
	if arg == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return data, "", nil
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", arg, err)
	}
	return data, arg, nil
}

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
