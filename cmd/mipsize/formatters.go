package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/pevans/mipsize/autosize"
	"github.com/pevans/mipsize/history"
	"gopkg.in/yaml.v3"
)

func validFormat(format string) bool {
	return format == "text" || format == "json" || format == "yaml"
}

// outcomeView is the structured form of one resolve outcome.
type outcomeView struct {
	Path  string     `json:"path" yaml:"path"`
	Model string     `json:"model,omitempty" yaml:"model,omitempty"`
	URL   string     `json:"url,omitempty" yaml:"url,omitempty"`
	Size  *int       `json:"size,omitempty" yaml:"size,omitempty"`
	Error *errorView `json:"error,omitempty" yaml:"error,omitempty"`
}

type errorView struct {
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
	URL     string `json:"url,omitempty" yaml:"url,omitempty"`
	Status  int    `json:"status,omitempty" yaml:"status,omitempty"`
}

func newOutcomeView(outcome autosize.Outcome) outcomeView {
	view := outcomeView{Path: outcome.Path}

	if res := outcome.Resolution; res != nil {
		view.Model = res.Model
		view.URL = res.URL
		size := res.Size
		view.Size = &size
	}

	if outcome.Err != nil {
		view.Model = autosize.ModelNameFromPath(outcome.Path)
		view.Error = &errorView{
			Kind:    string(autosize.KindOf(outcome.Err)),
			Message: outcome.Err.Error(),
		}

		var lookupErr *autosize.RemoteLookupError
		if errors.As(outcome.Err, &lookupErr) {
			view.Error.URL = lookupErr.URL
			view.Error.Status = lookupErr.StatusCode
		}
	}

	return view
}

// printOutcomes writes resolve results in input order. In text format
// failures go to errOut; structured formats carry them inline.
func printOutcomes(out, errOut io.Writer, outcomes []autosize.Outcome, format string) error {
	switch format {
	case "json", "yaml":
		views := make([]outcomeView, 0, len(outcomes))
		for _, outcome := range outcomes {
			views = append(views, newOutcomeView(outcome))
		}
		return printStructured(out, map[string]any{"results": views}, format)
	}

	for _, outcome := range outcomes {
		if outcome.Err != nil {
			fmt.Fprintf(errOut, "Error: %s: %v\n", outcome.Path, outcome.Err)
			continue
		}

		if len(outcomes) == 1 {
			fmt.Fprintf(out, "%d\n", outcome.Resolution.Size)
			continue
		}

		fmt.Fprintf(out, "%-50s %10d\n", outcome.Path, outcome.Resolution.Size)
	}

	return nil
}

// printStructured writes v as indented JSON or YAML.
func printStructured(out io.Writer, v any, format string) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return enc.Close()
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	fmt.Fprintln(out, string(data))
	return nil
}

// printLookupTable prints lookups in human-readable table format
func printLookupTable(out io.Writer, lookups []history.Lookup, total int) {
	if len(lookups) == 0 {
		fmt.Fprintln(out, "No lookups recorded.")
		return
	}

	fmt.Fprintf(out, "%-36s %-20s %-30s %s\n", "ID", "RESOLVED", "MODEL", "RESULT")
	fmt.Fprintln(out, "----------------------------------------------------------------------------------------------------")

	for _, lookup := range lookups {
		model := "-"
		if lookup.Model != nil {
			model = *lookup.Model
		}
		if len(model) > 30 {
			model = model[:27] + "..."
		}

		fmt.Fprintf(out, "%-36s %-20s %-30s %s\n",
			lookup.LookupID.String(),
			lookup.ResolvedAt.Local().Format("2006-01-02 15:04:05"),
			model,
			lookupResult(&lookup),
		)
	}

	if total > len(lookups) {
		fmt.Fprintf(out, "\nShowing %d of %d lookups\n", len(lookups), total)
	}
}

// printLookupDetail prints every field of a single lookup
func printLookupDetail(out io.Writer, lookup *history.Lookup) {
	fmt.Fprintf(out, "ID:       %s\n", lookup.LookupID.String())
	fmt.Fprintf(out, "Path:     %s\n", lookup.Path)
	if lookup.Model != nil {
		fmt.Fprintf(out, "Model:    %s\n", *lookup.Model)
	}
	if lookup.URL != nil {
		fmt.Fprintf(out, "URL:      %s\n", *lookup.URL)
	}
	fmt.Fprintf(out, "Resolved: %s\n", lookup.ResolvedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Result:   %s\n", lookupResult(lookup))
	if lookup.Error != nil {
		fmt.Fprintf(out, "Error:    %s\n", *lookup.Error)
	}
}

func lookupResult(lookup *history.Lookup) string {
	if lookup.Size != nil {
		return fmt.Sprintf("%d variables", *lookup.Size)
	}
	if lookup.ErrorKind != nil {
		return "failed (" + *lookup.ErrorKind + ")"
	}
	return "unknown"
}
