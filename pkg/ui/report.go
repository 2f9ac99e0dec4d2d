package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/simasch/pr-finder/pkg/finder"
	"github.com/simasch/pr-finder/pkg/github"
)

// Report prints the aggregated view as static text: one section per category
// in fixed order, an explicit notice for empty categories, and a grand total.
func Report(w io.Writer, agg *finder.Aggregated, styles Styles, now time.Time) {
	for _, c := range finder.Categories {
		prs := agg.Category(c)
		fmt.Fprintf(w, "%s\n", styles.Header.Render(fmt.Sprintf("%s (%d)", c, len(prs))))

		if len(prs) == 0 {
			fmt.Fprintf(w, "  %s\n\n", styles.Dim.Render("none"))
			continue
		}

		for _, pr := range prs {
			writeReportLine(w, pr, styles, now)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total: %d open pull request(s)\n", agg.Total())
}

func writeReportLine(w io.Writer, pr github.PullRequest, styles Styles, now time.Time) {
	line := fmt.Sprintf("  %s  %s", styles.Bold.Render(pr.Ref()), pr.Title)
	if pr.Draft {
		line += "  " + styles.Draft.Render("[draft]")
	}
	line += fmt.Sprintf("  %s", styles.Dim.Render(fmt.Sprintf("by %s, %s", pr.Author, Age(pr.UpdatedAt, now))))
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "    %s\n", styles.Dim.Render(pr.URL))
}
