package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spigell/interview-coach/internal/catalog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List interview roles and their question counts",
	Run: func(cmd *cobra.Command, _ []string) {
		logger := newLogger()
		defer logger.Sync() //nolint:errcheck

		path := viper.GetString("catalog")
		cat, err := catalog.Load(path)
		if err != nil {
			logger.Fatal("loading question catalog", zap.Error(err), zap.String("catalog", path))
		}

		if err := printRoles(cmd, cat); err != nil {
			logger.Fatal("printing roles", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(rolesCmd)
}

func printRoles(cmd *cobra.Command, cat *catalog.Catalog) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROLE\tQUESTIONS")
	for _, role := range cat.Roles() {
		questions, err := cat.Questions(role)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\n", role, len(questions))
	}
	return w.Flush()
}
