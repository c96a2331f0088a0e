package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fracvault-xyz/go-fracvault/eventlog"
)

func events(args []string) error {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	db := fs.String("db", "", "Read the journal from this SQLite database")
	jsonl := fs.String("jsonl", "", "Read the journal from this JSONL file")
	op := fs.String("op", "", "Only show events for this operation")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: fracvault events [options]

Inspect a vault operation journal produced by 'fracvault simulate'.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if (*db == "") == (*jsonl == "") {
		return fmt.Errorf("pass exactly one of -db or -jsonl")
	}

	var list []eventlog.Event
	if *db != "" {
		store, err := eventlog.OpenStore(*db)
		if err != nil {
			return err
		}
		defer store.Close()
		if list, err = store.Events(*op); err != nil {
			return err
		}
	} else {
		all, err := eventlog.ReadJSONLFile(*jsonl)
		if err != nil {
			return err
		}
		for _, e := range all {
			if *op == "" || e.Op == *op {
				list = append(list, e)
			}
		}
	}

	for _, e := range list {
		line := fmt.Sprintf("%s  block=%-6d %-22s actor=%s", e.Time.Format("2006-01-02T15:04:05"), e.Block, e.Op, e.Actor)
		if e.Amount != "" {
			line += " amount=" + e.Amount
		}
		if len(e.Attrs) > 0 {
			var attrs []string
			for k, v := range e.Attrs {
				attrs = append(attrs, k+"="+v)
			}
			line += " " + strings.Join(attrs, " ")
		}
		fmt.Println(line)
	}
	fmt.Printf("%d events\n", len(list))
	return nil
}
