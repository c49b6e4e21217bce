// Command inspect decodes a saved QuakeML document offline and reports the
// records it yields alongside the decode statistics. It is useful for
// checking what the accessor would make of a captured FDSN response.
//
// Usage:
//
//	go run ./cmd/inspect -file kaikoura.xml -depth-unit m -exclude 2016p858000
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/couchcryptid/quake-catalog-service/internal/adapter/fdsn"
	"github.com/couchcryptid/quake-catalog-service/internal/domain"
)

func main() {
	file := flag.String("file", "", "path to a QuakeML document (- for stdin)")
	depthUnit := flag.String("depth-unit", "m", "unit of depth values in the document: m or km")
	exclude := flag.String("exclude", "", "event id to drop before sorting, as a window fetch would")
	asJSON := flag.Bool("json", false, "print records as JSON lines")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	os.Exit(run(*file, *depthUnit, *exclude, *asJSON, os.Stdin, os.Stdout))
}

func run(path, depthUnit, exclude string, asJSON bool, stdin io.Reader, out io.Writer) int {
	unit, err := fdsn.ParseDepthUnit(depthUnit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 2
	}

	in := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
			return 1
		}
		defer f.Close()
		in = f
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	records, stats, err := fdsn.NewDecoder(unit, logger).Decode(in)
	if err != nil {
		fmt.Fprintf(out, "Document unreadable: %v\n", err)
		return 1
	}
	if exclude != "" {
		records = domain.ExcludeAndSort(records, exclude)
	}

	if asJSON {
		enc := json.NewEncoder(out)
		for _, r := range records {
			if err := enc.Encode(r); err != nil {
				fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
				return 1
			}
		}
	} else {
		for _, r := range records {
			fmt.Fprintf(out, "%-14s %s  M%4.1f  %9.4f %9.4f  %6.1f km\n",
				r.ID, r.OriginTime.Format("2006-01-02T15:04:05.000Z"), r.Magnitude,
				r.Hypocenter.Lat, r.Hypocenter.Lon, r.Hypocenter.DepthKm)
		}
	}

	printStats(out, stats)
	return 0
}

func printStats(out io.Writer, stats domain.DecodeStats) {
	fmt.Fprintf(out, "\nEvents: %d attempted, %d decoded, %d dropped\n",
		stats.Attempted, stats.Decoded, stats.DroppedTotal())

	reasons := make([]domain.DropReason, 0, len(stats.Dropped))
	for reason := range stats.Dropped {
		reasons = append(reasons, reason)
	}
	slices.Sort(reasons)
	for _, reason := range reasons {
		fmt.Fprintf(out, "  %-14s %d\n", reason, stats.Dropped[reason])
	}
}
