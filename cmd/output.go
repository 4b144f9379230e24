package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gosuri/uitable"
	"golang.org/x/term"

	"lports/config"
	"lports/internal/discovery"
	"lports/listen"
)

// resolveOutput turns "auto" into a table on a terminal and JSON
// everywhere else.
func resolveOutput(format string, w io.Writer) string {
	if format != config.OutputAuto {
		return format
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return config.OutputTable
	}
	return config.OutputJSON
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable() *uitable.Table {
	t := uitable.New()
	t.MaxColWidth = 50
	t.Wrap = true
	return t
}

func protocols(p listen.Port) string {
	ps := p.ApplicationProtocols()
	if len(ps) == 0 {
		return "-"
	}
	return strings.Join(ps, ",")
}

// ── snapshot ─────────────────────────────────────────────────────────

func printSnapshot(w io.Writer, format string, snap discovery.Snapshot) error {
	if format == config.OutputJSON {
		return writeJSON(w, snap)
	}

	t := newTable()
	t.RightAlign(3)
	t.AddRow("COMPONENT", "TYPE", "PORT", "NUMBER", "TRANSPORT", "PROTOCOLS")
	for _, e := range snap.Entries {
		if e.Error != "" {
			t.AddRow(e.Name, e.Type, "error: "+e.Error, "", "", "")
			continue
		}
		for _, p := range e.Ports {
			t.AddRow(e.Name, e.Type, p.PortName(), p.PortNumber(), p.TransportProtocol(), protocols(p))
		}
	}
	fmt.Fprintln(w, t)
	fmt.Fprintf(w, "\n%s ports from %s components, discovered %s\n",
		humanize.Comma(int64(snap.PortCount())),
		humanize.Comma(int64(len(snap.Entries))),
		humanize.Time(snap.Taken))

	for _, e := range snap.Entries {
		for _, v := range e.Violations {
			fmt.Fprintf(w, "non-conforming: %s: %s\n", e.Name, v)
		}
	}
	return nil
}

// ── definitions ──────────────────────────────────────────────────────

func printDefinitions(w io.Writer, format string, defs []discovery.DefinitionEntry) error {
	if format == config.OutputJSON {
		return writeJSON(w, defs)
	}

	t := newTable()
	t.AddRow("TYPE", "PROPERTY", "TRANSPORT", "PROTOCOLS")
	for _, d := range defs {
		ps := "-"
		if len(d.ApplicationProtocols) > 0 {
			ps = strings.Join(d.ApplicationProtocols, ",")
		}
		t.AddRow(d.Type, d.Property, d.Transport, ps)
	}
	fmt.Fprintln(w, t)
	return nil
}

// ── watch ────────────────────────────────────────────────────────────

type watchEvent struct {
	Taken   string            `json:"taken"`
	Ports   int               `json:"ports"`
	Changes discovery.Changes `json:"changes"`
}

func printChanges(w io.Writer, format string, snap discovery.Snapshot, c discovery.Changes) error {
	if c.Empty() {
		return nil
	}
	if format == config.OutputJSON {
		// One compact object per line so the stream can be piped.
		return json.NewEncoder(w).Encode(watchEvent{
			Taken:   snap.Taken.Format(time.RFC3339),
			Ports:   snap.PortCount(),
			Changes: c,
		})
	}

	for _, a := range c.Added {
		fmt.Fprintf(w, "+ %s %s\n", a.Component, describe(*a.After))
	}
	for _, r := range c.Removed {
		fmt.Fprintf(w, "- %s %s\n", r.Component, describe(*r.Before))
	}
	for _, ch := range c.Changed {
		fmt.Fprintf(w, "~ %s %s -> %s\n", ch.Component, describe(*ch.Before), describe(*ch.After))
	}
	return nil
}

func describe(p listen.Port) string {
	return fmt.Sprintf("%q %d/%s [%s]", p.PortName(), p.PortNumber(), p.TransportProtocol(), protocols(p))
}
