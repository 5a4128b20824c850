package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spigell/interview-coach/internal/history"
	"github.com/spigell/interview-coach/internal/session"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Browse saved interview sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent sessions from the history index",
	Run: func(cmd *cobra.Command, _ []string) {
		logger := newLogger()
		defer logger.Sync() //nolint:errcheck

		role, _ := cmd.Flags().GetString("role")
		limit, _ := cmd.Flags().GetInt("limit")

		path := viper.GetString("history-db")
		index, err := history.Open(path)
		if err != nil {
			logger.Fatal("opening session history", zap.Error(err), zap.String("path", path))
		}
		defer index.Close()

		entries, err := index.List(cmd.Context(), role, limit)
		if err != nil {
			logger.Fatal("listing sessions", zap.Error(err))
		}

		if err := printEntries(cmd.OutOrStdout(), entries); err != nil {
			logger.Fatal("printing sessions", zap.Error(err))
		}
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Print the summary of a saved session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger()
		defer logger.Sync() //nolint:errcheck

		artifact, err := session.Load(args[0])
		if err != nil {
			logger.Fatal("loading session", zap.Error(err), zap.String("path", args[0]))
		}

		format, _ := cmd.Flags().GetString("format")
		if err := printArtifact(cmd.OutOrStdout(), artifact, format); err != nil {
			logger.Fatal("printing session", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd)

	sessionsListCmd.Flags().StringP("role", "r", "", "only sessions for this role")
	sessionsListCmd.Flags().IntP("limit", "l", 20, "maximum number of sessions")
	sessionsShowCmd.Flags().StringP("format", "f", "text", "output format: text, json or yaml")
}

func printEntries(out io.Writer, entries []history.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(out, "No sessions recorded yet.")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tROLE\tSCORE\tANSWERED\tFILE")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			e.StartedAt.Local().Format("2006-01-02 15:04:05"), e.Role, e.TotalScore, e.QuestionsAnswered, e.Path)
	}
	return w.Flush()
}

func printArtifact(out io.Writer, artifact *session.Artifact, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		_, err := fmt.Fprintln(out, artifact.SummaryText())
		return err
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "    ")
		return encoder.Encode(artifact)
	case "yaml":
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(artifact); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
