package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"talky/repositories"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", "", "Path to the summarizer badger DB (BADGER_FILEPATH)")
	width := flag.Int("width", 80, "Truncate summaries to this many characters")
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("-db is required: an in-memory cache cannot be inspected")
	}

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	repo := repositories.NewSummaryRepository(db, logs.GetLoggerFromString("ERROR"), 0)
	summaries, err := repo.ListSummaries()
	if err != nil {
		log.Fatal(err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Hash", "Expires", "Words", "Summary"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, s := range summaries {
		table.Append([]string{
			shorten(s.TextHash, 12),
			expiry(s.ExpiresAt),
			fmt.Sprint(len(strings.Fields(s.Summary))),
			shorten(s.Summary, *width),
		})
	}
	table.Render()
	fmt.Printf("\n%d cached summaries\n", len(summaries))
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)
	return badger.Open(opts)
}

func expiry(at time.Time) string {
	if at.IsZero() {
		return "never"
	}
	return at.Local().Format("2006-01-02 15:04:05")
}

func shorten(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
