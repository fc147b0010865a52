// report-preview renders the HTML view of a previously written JSON run
// report, for inspecting a run pulled off another machine.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/quoteforge/quoteforge/internal/report"
)

func main() {
	in := flag.String("in", "report.json", "Path to the JSON run report")
	out := flag.String("out", "", "HTML output path (default: stdout)")
	flag.Parse()

	rep, err := report.ReadJSON(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading %s: %v\n", *in, err)
		os.Exit(1)
	}

	if *out == "" {
		if err := report.RenderHTML(os.Stdout, rep); err != nil {
			fmt.Fprintf(os.Stderr, "rendering: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := report.WriteHTML(*out, rep); err != nil {
		fmt.Fprintf(os.Stderr, "writing %s: %v\n", *out, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s (%d scenarios)\n", *out, rep.Summary.Total)
}
