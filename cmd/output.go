package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"golang.org/x/term"

	"photo-catalog/internal/handlers"
	"photo-catalog/internal/importer"
	"photo-catalog/internal/memory"
	"photo-catalog/internal/thumbnail"
)

// printer renders command results as aligned text for a terminal or as JSON
// when the output is piped.
type printer struct {
	w    io.Writer
	json bool
}

func newPrinter(w io.Writer, format string) (*printer, error) {
	switch format {
	case "json":
		return &printer{w: w, json: true}, nil
	case "text":
		return &printer{w: w}, nil
	case "", "auto":
		return &printer{w: w, json: !isTerminal(w)}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want auto, text or json)", format)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (p *printer) encode(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type planLine struct {
	Source       string `json:"source"`
	Destination  string `json:"destination"`
	CreateParent bool   `json:"createParent"`
}

type exclusionLine struct {
	Source string `json:"source"`
	Reason string `json:"reason"`
}

type planOutput struct {
	Transfers []planLine      `json:"transfers"`
	Known     int             `json:"known"`
	Excluded  []exclusionLine `json:"excluded"`
}

func (p *printer) plan(plan importer.Plan) error {
	out := planOutput{
		Transfers: make([]planLine, 0, len(plan.Entries)),
		Known:     plan.Known,
		Excluded:  make([]exclusionLine, 0, len(plan.Excluded)),
	}
	for _, e := range plan.Entries {
		out.Transfers = append(out.Transfers, planLine{Source: e.Source, Destination: e.Destination, CreateParent: e.CreateParent})
	}
	for _, x := range plan.Excluded {
		out.Excluded = append(out.Excluded, exclusionLine{Source: x.Picture.Path(), Reason: x.Err.Error()})
	}
	if p.json {
		return p.encode(out)
	}

	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	for _, t := range out.Transfers {
		mkdir := ""
		if t.CreateParent {
			mkdir = "(new directory)"
		}
		fmt.Fprintf(tw, "copy\t%s\t-> %s\t%s\n", t.Source, t.Destination, mkdir)
	}
	for _, x := range out.Excluded {
		fmt.Fprintf(tw, "skip\t%s\t%s\t\n", x.Source, x.Reason)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(p.w, "%d to transfer, %d already catalogued, %d excluded\n",
		len(out.Transfers), out.Known, len(out.Excluded))
	return err
}

func (p *printer) report(report importer.Report) error {
	resp := handlers.NewImportResponse(report)
	if p.json {
		return p.encode(resp)
	}

	for _, r := range report.Results {
		if r.Outcome == importer.OutcomeConflict || r.Outcome == importer.OutcomeFailed {
			fmt.Fprintf(p.w, "%-8s %s\n", r.Outcome, r.Entry.Source)
		}
	}
	_, err := fmt.Fprintf(p.w, "copied %d, in place %d, conflicts %d, failed %d, known %d, excluded %d (%s)\n",
		resp.Copied, resp.InPlace, resp.Conflicts, resp.Failed, resp.Known, resp.Excluded,
		memory.FormatBytes(resp.Bytes))
	return err
}

func (p *printer) thumbnails(res thumbnail.Result) error {
	if p.json {
		return p.encode(map[string]any{
			"selected":  res.Selected,
			"generated": res.Generated,
			"skipped":   res.Skipped,
			"duration":  res.Duration.String(),
		})
	}
	_, err := fmt.Fprintf(p.w, "generated %d of %d thumbnails, skipped %d, in %v\n",
		res.Generated, res.Selected, res.Skipped, res.Duration)
	return err
}

func (p *printer) directories(dirs []string) error {
	if p.json {
		if dirs == nil {
			dirs = []string{}
		}
		return p.encode(dirs)
	}
	for _, d := range dirs {
		if _, err := fmt.Fprintln(p.w, d); err != nil {
			return err
		}
	}
	return nil
}
