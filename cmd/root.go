package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	exportcmd "github.com/Alijeyrad/biomatrix/cmd/export"
	httpcmd "github.com/Alijeyrad/biomatrix/cmd/http"
	querycmd "github.com/Alijeyrad/biomatrix/cmd/query"
	systemcmd "github.com/Alijeyrad/biomatrix/cmd/system"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "biomatrix",
	Short: "Query layer over the BioMatrix clinical database.",
	Long: `biomatrix reads the BioMatrix breast imaging database through a small
query language: patients, exams, findings, procedures and pathology reports
can be selected, navigated and exported as report files.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	rootCmd.AddCommand(querycmd.NewQueryCommand())
	rootCmd.AddCommand(exportcmd.NewExportCommand())
	rootCmd.AddCommand(httpcmd.NewHTTPCommand())
	rootCmd.AddCommand(systemcmd.NewSystemCommand())
}
