package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/snowbow/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Dir   string `arg:"" type:"existingdir" help:"Content root"`
	Limit int    `short:"n" help:"Number of builds to list (0 lists all)" default:"20"`
	JSON  bool   `help:"Print one JSON object per build"`
}

// Run lists recorded builds, newest first.
func (h *HistoryCmd) Run(_ *Global, _ *CLI) error {
	abs, err := filepath.Abs(h.Dir)
	if err != nil {
		return err
	}
	path := history.DefaultPath(abs)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Println("No builds recorded")
		return nil
	}
	store, err := history.OpenSQLite(path)
	if err != nil {
		return err
	}
	defer closeHistory(store)

	ctx, cancel := signalContext()
	defer cancel()
	records, err := store.Recent(ctx, h.Limit)
	if err != nil {
		return err
	}
	if h.JSON {
		return writeHistoryJSON(os.Stdout, records)
	}
	return writeHistoryTable(os.Stdout, records)
}

func writeHistoryTable(w io.Writer, records []history.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STARTED\tID\tTRIGGER\tDURATION\tFILES\tARTICLES\tREVISION\tRESULT")
	for _, r := range records {
		result := "ok"
		if !r.Succeeded() {
			result = r.Error
		}
		id := r.ID
		if len(id) > 8 {
			id = id[:8]
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			r.Started.Local().Format(time.DateTime), id, r.Trigger, r.Duration.Round(time.Millisecond),
			r.Files, r.Articles, orDash(r.Revision), result)
	}
	return tw.Flush()
}

type historyJSON struct {
	ID         string           `json:"id"`
	Started    time.Time        `json:"started"`
	DurationMS int64            `json:"duration_ms"`
	Trigger    string           `json:"trigger"`
	Files      int              `json:"files"`
	Bytes      int64            `json:"bytes"`
	Articles   int              `json:"articles"`
	Digest     string           `json:"digest,omitempty"`
	Revision   string           `json:"revision,omitempty"`
	StagesMS   map[string]int64 `json:"stages_ms,omitempty"`
	Error      string           `json:"error,omitempty"`
}

func writeHistoryJSON(w io.Writer, records []history.Record) error {
	enc := json.NewEncoder(w)
	for _, r := range records {
		out := historyJSON{
			ID:         r.ID,
			Started:    r.Started,
			DurationMS: r.Duration.Milliseconds(),
			Trigger:    r.Trigger,
			Files:      r.Files,
			Bytes:      r.Bytes,
			Articles:   r.Articles,
			Digest:     r.Digest,
			Revision:   r.Revision,
			Error:      r.Error,
		}
		if len(r.Stages) > 0 {
			out.StagesMS = make(map[string]int64, len(r.Stages))
			for k, d := range r.Stages {
				out.StagesMS[k] = d.Milliseconds()
			}
		}
		if err := enc.Encode(out); err != nil {
			return err
		}
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
