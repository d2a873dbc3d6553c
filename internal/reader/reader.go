// Package reader streams newline-delimited JSON records from local files.
package reader

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// maxLineBytes bounds a single record line. Market stream snapshots can run
// to several megabytes when a full order book is published.
const maxLineBytes = 16 * 1024 * 1024

// Stats reports what a read pass consumed.
type Stats struct {
	Lines   int64 // Non-blank lines seen.
	Decoded int64 // Lines that parsed as JSON.
	Skipped int64 // Lines that did not.
}

// Reader decodes NDJSON records one line at a time. Numbers are decoded as
// json.Number so integer and floating-point values stay distinguishable.
type Reader struct {
	log *slog.Logger
}

// New returns a Reader that logs skipped lines through log. A nil log
// disables that logging.
func New(log *slog.Logger) *Reader {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Reader{log: log}
}

// Stream reads NDJSON from r and sends each decoded record to out. Blank
// lines are ignored; lines that fail to parse are counted, logged and
// skipped. Stops early when ctx is cancelled.
func (rd *Reader) Stream(ctx context.Context, r io.Reader, out chan<- any) (Stats, error) {
	var stats Stats

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		stats.Lines++

		dec := json.NewDecoder(bytes.NewReader(line))
		dec.UseNumber()
		var rec any
		if err := dec.Decode(&rec); err != nil {
			stats.Skipped++
			rd.log.Debug("skipping undecodable line", "line", stats.Lines, "error", err)
			continue
		}
		stats.Decoded++

		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		case out <- rec:
		}
	}
	if err := sc.Err(); err != nil {
		return stats, fmt.Errorf("reader: scan input: %w", err)
	}
	return stats, nil
}

// StreamFiles reads each named file in order into out, closing out when the
// last file is done. A missing or unreadable file aborts the stream.
func (rd *Reader) StreamFiles(ctx context.Context, paths []string, out chan<- any) (Stats, error) {
	defer close(out)

	var total Stats
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return total, fmt.Errorf("reader: open %s: %w", path, err)
		}

		stats, err := rd.Stream(ctx, f, out)
		f.Close()

		total.Lines += stats.Lines
		total.Decoded += stats.Decoded
		total.Skipped += stats.Skipped
		if err != nil {
			return total, err
		}
		rd.log.Info("file consumed", "path", path, "records", stats.Decoded, "skipped", stats.Skipped)
	}
	return total, nil
}
