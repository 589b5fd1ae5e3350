package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"autotestcase/internal/console"
	"autotestcase/internal/export"
	"autotestcase/internal/testcase"
)

var sampleOutput string

// sampleCmd writes the built-in sample cases, useful to preview the layout
var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Write a workbook with built-in sample test cases",
	Long: `Writes three built-in sample test cases to a workbook without calling
any AI engine. Use it to preview the spreadsheet layout.`,
	Args: cobra.NoArgs,
	RunE: runSample,
}

func init() {
	sampleCmd.Flags().StringVarP(&sampleOutput, "output", "o", "sample_testcases.xlsx", "Output Excel file path")
}

func runSample(cmd *cobra.Command, args []string) error {
	out := console.New(cmd.OutOrStdout())

	opts := export.DefaultOptions()
	opts.RunID = uuid.NewString()
	if err := export.SaveWorkbook(testcase.SampleTestCases(), sampleOutput, opts); err != nil {
		return err
	}
	out.Success("Excel file saved successfully: %s", sampleOutput)
	out.Done("Sample Excel file created for testing purposes.")
	return nil
}
