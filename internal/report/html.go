// SPDX-License-Identifier: AGPL-3.0-or-later

package report

import (
	"fmt"
	"html"
	"strings"
)

// OverviewHTML renders the implementation overview as a standalone HTML
// document, mirroring the Markdown structure.
func OverviewHTML(features []FeatureBreakdown) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n<title>Implementation Overview</title>\n")
	b.WriteString("<style>\n")
	b.WriteString("body { font-family: sans-serif; margin: 2em; }\n")
	b.WriteString("table { border-collapse: collapse; margin-bottom: 1.5em; }\n")
	b.WriteString("th, td { border: 1px solid #ccc; padding: 0.4em 0.8em; text-align: left; }\n")
	b.WriteString("th { background: #f0f0f0; }\n")
	b.WriteString("</style>\n</head>\n<body>\n")
	b.WriteString("<h1>Implementation Overview</h1>\n")

	var totalHours float64
	for i := range features {
		totalHours += features[i].TotalHours()
	}
	b.WriteString(fmt.Sprintf("<p>%d feature(s), %s estimated in total.</p>\n",
		len(features), formatHours(totalHours)))

	for i := range features {
		f := &features[i]
		b.WriteString(fmt.Sprintf("<h2>%s</h2>\n", html.EscapeString(f.Name)))
		if f.Description != "" {
			b.WriteString(fmt.Sprintf("<p>%s</p>\n", html.EscapeString(f.Description)))
		}

		for _, story := range f.Stories {
			b.WriteString(fmt.Sprintf("<h3>%s (%s)</h3>\n",
				html.EscapeString(story.Title), formatHours(story.EstimatedHours)))
			b.WriteString("<table>\n<tr><th>Type</th><th>Name</th><th>Display Name</th><th>Model</th><th>Complexity</th></tr>\n")
			for _, c := range story.Components {
				b.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
					html.EscapeString(c.TypeLabel()),
					html.EscapeString(c.Name),
					html.EscapeString(c.DisplayName),
					html.EscapeString(c.Model),
					html.EscapeString(c.Complexity)))
			}
			b.WriteString("</table>\n")
		}
	}

	b.WriteString("</body>\n</html>\n")
	return b.String()
}
