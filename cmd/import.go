// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jaffee/commandeer"
	"github.com/pilosa/txnimport/usecase/transactions"
	"github.com/spf13/cobra"
)

// ImportMain is wrapped by NewImportCommand and only exported for testing
// purposes.
var ImportMain *transactions.Main

// NewImportCommand returns a new cobra command wrapping ImportMain.
func NewImportCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var err error
	ImportMain = transactions.NewMain()
	ImportMain.Stdout, ImportMain.Stderr = stdout, stderr
	importCommand := &cobra.Command{
		Use:   "import",
		Short: "Import a transaction CSV into Elasticsearch.",
		Long: `Import reads a transaction CSV from a local path, an http(s) URL or
s3://bucket/key, normalizes every row into the canonical document schema,
recreates the target index and bulk loads the documents into it. The
number of documents in the index is checked once loading finishes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			sigs := make(chan os.Signal, 1)
			signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigs)
			go func() {
				select {
				case <-sigs:
					cancel()
				case <-ctx.Done():
				}
			}()
			_, err := ImportMain.Run(ctx)
			return err
		},
	}
	flags := importCommand.Flags()
	err = commandeer.Flags(flags, ImportMain)
	if err != nil {
		panic(err)
	}
	return importCommand
}

func init() {
	subcommandFns["import"] = NewImportCommand
}
