/*
Package cli provides command-line helpers for the gateway binary.

Output Formatting:

Commands that print records support text, JSON, and CSV output:

	formatter, err := cli.NewFormatter(cli.FormatJSON)
	if err != nil {
		return err
	}
	if err := formatter.FormatTo(os.Stdout, data); err != nil {
		return err
	}

Text and CSV output need data that implements Tabular. JSON accepts any
value.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
