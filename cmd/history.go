package cmd

import (
	"io"

	"github.com/jaffee/commandeer"
	"github.com/pilosa/txnimport/usecase/transactions"
	"github.com/spf13/cobra"
)

// HistoryMain is wrapped by NewHistoryCommand and only exported for testing
// purposes.
var HistoryMain *transactions.HistoryMain

// NewHistoryCommand returns a new cobra command wrapping HistoryMain.
func NewHistoryCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var err error
	HistoryMain = transactions.NewHistoryMain()
	HistoryMain.Stdout = stdout
	historyCommand := &cobra.Command{
		Use:   "history",
		Short: "List the imports recorded in a history file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return HistoryMain.Run()
		},
	}
	err = commandeer.Flags(historyCommand.Flags(), HistoryMain)
	if err != nil {
		panic(err)
	}
	return historyCommand
}

func init() {
	subcommandFns["history"] = NewHistoryCommand
}
