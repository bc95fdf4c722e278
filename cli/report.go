package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"offline-reconciler-go/common"
	"offline-reconciler-go/metrics"
	"offline-reconciler-go/reconciler"
	"os"
	"text/tabwriter"
)

var csvHeader = []string{"sender", "recipient", "amt", "id"}

func displayName(names map[string]string, address string) string {
	if name, ok := names[address]; ok {
		return name
	}
	return address
}

func printOutcomes(w io.Writer, outcomes []reconciler.Outcome, names map[string]string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SENDER\tRANK\tREASON\tTX\tAMOUNT\tSTATUS\tHASH")
	for _, o := range outcomes {
		detail := o.Hash
		if !o.Status.IsSuccess() && o.Err != nil {
			detail = o.Err.Error()
		}
		fmt.Fprintf(
			tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			displayName(names, o.Sender), o.Rank, o.Reason, o.Transaction.ID,
			o.Transaction.AmountString(), o.Status.ToString(), detail,
		)
	}
	return tw.Flush()
}

// writeCSV exports settled transactions as sender,recipient,amt,id where
// id is the ledger hash.
func writeCSV(w io.Writer, outcomes []reconciler.Outcome, names map[string]string) error {
	cw := csv.NewWriter(w)
	err := cw.Write(csvHeader)
	if err != nil {
		return err
	}
	for _, o := range outcomes {
		if !o.Status.IsSuccess() {
			continue
		}
		err = cw.Write([]string{
			displayName(names, o.Sender),
			displayName(names, o.Transaction.Recipient),
			o.Transaction.AmountString(),
			o.Hash,
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func exportCSV(path string, outcomes []reconciler.Outcome, names map[string]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	err = writeCSV(f, outcomes, names)
	if err != nil {
		return err
	}
	fmt.Printf("%s generated with %d rows\n", path, countSettled(outcomes))
	return nil
}

func countSettled(outcomes []reconciler.Outcome) int {
	settled := common.FindAll(outcomes, func(o reconciler.Outcome) bool {
		return o.Status.IsSuccess()
	})
	return len(settled)
}

func printMetrics(w io.Writer) error {
	fmt.Fprintln(w)
	return metrics.WritePrometheus(w)
}
