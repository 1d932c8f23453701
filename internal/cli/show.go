package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/rdmo-deploy/rdmoctl/internal/envfile"
	"github.com/rdmo-deploy/rdmoctl/internal/settings"
)

var (
	showFormat    string
	showTrace     bool
	showFragments bool
	showNoRedact  bool
)

var showFormats = []string{"text", "json", "yaml", "toml", "env"}

func init() {
	showCmd.Flags().StringVarP(&showFormat, "format", "f", "text", "Output format: "+strings.Join(showFormats, ", "))
	showCmd.Flags().BoolVar(&showTrace, "trace", false, "Show where every key was resolved from")
	showCmd.Flags().BoolVar(&showFragments, "fragments", false, "List the settings fragments in the order they were applied")
	showCmd.Flags().BoolVar(&showNoRedact, "no-redact", false, "Show secret values without redaction")
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show [key...]",
	Short: "Print the resolved settings",
	Long: `Print the settings as Django sees them. Secrets (SECRET_KEY, passwords,
tokens) are redacted unless --no-redact is given.

  rdmoctl show                      # table of every setting
  rdmoctl show DATABASES DEBUG      # only the named settings
  rdmoctl show --format yaml        # export for review
  rdmoctl show --trace              # key, kind and source of each value`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := buildSettings()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if showFragments {
			for i, name := range s.Fragments {
				fmt.Fprintf(out, "%d. %s\n", i+1, name)
			}
			return nil
		}
		if showTrace {
			return printTrace(out, s)
		}

		doc := s.Document()
		if len(args) > 0 {
			selected := make(map[string]any, len(args))
			for _, key := range args {
				v, ok := doc[key]
				if !ok {
					return fmt.Errorf("unknown setting %q", key)
				}
				selected[key] = v
			}
			doc = selected
		}
		if !showNoRedact {
			doc = redactDocument(doc)
		}
		return writeDocument(out, doc, showFormat)
	},
}

func printTrace(out io.Writer, s *settings.Settings) error {
	rows := make([][]string, 0, len(s.Trace))
	for _, r := range s.Trace {
		value := r.Value
		if !showNoRedact {
			value = envfile.RedactValue(r.Name, value)
		}
		rows = append(rows, []string{r.Name, r.Kind.String(), r.Source, value})
	}
	fmt.Fprintln(out, renderTable([]string{"Name", "Kind", "Source", "Value"}, rows, nil))
	return nil
}

func writeDocument(out io.Writer, doc map[string]any, format string) error {
	switch format {
	case "text":
		keys := sortedKeys(doc)
		rows := make([][]string, 0, len(keys))
		for _, k := range keys {
			rows = append(rows, []string{k, formatValue(doc[k])})
		}
		fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, rows, nil))
	case "json":
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling settings: %w", err)
		}
		fmt.Fprintln(out, string(data))
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("marshaling settings: %w", err)
		}
		return enc.Close()
	case "toml":
		data, err := toml.Marshal(doc)
		if err != nil {
			return fmt.Errorf("marshaling settings: %w", err)
		}
		fmt.Fprint(out, string(data))
	case "env":
		for _, k := range sortedKeys(doc) {
			fmt.Fprintf(out, "%s=%s\n", k, quoteEnvValue(formatValue(doc[k])))
		}
	default:
		return fmt.Errorf("unknown format %q (expected one of %s)", format, strings.Join(showFormats, ", "))
	}
	return nil
}

// formatValue renders scalars as-is and anything else as compact JSON.
func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool, int:
		return fmt.Sprint(val)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// quoteEnvValue quotes v so gotenv reads it back unchanged. Single quotes
// are literal; values that cannot be single-quoted are double-quoted with
// backslash, quote, newline and dollar escaped.
func quoteEnvValue(v string) string {
	if !strings.ContainsAny(v, "'\n\r") {
		return "'" + v + "'"
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "$", `\$`)
	return `"` + r.Replace(v) + `"`
}

// redactDocument returns a copy of doc with every string under a sensitive
// key redacted.
func redactDocument(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = redactValue(k, v)
	}
	return out
}

func redactValue(key string, v any) any {
	switch val := v.(type) {
	case string:
		if val == "" {
			return val
		}
		return envfile.RedactValue(key, val)
	case map[string]any:
		return redactDocument(val)
	default:
		return val
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
