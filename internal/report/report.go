// Package report turns a sysinfo.Snapshot into the dashboard page.
package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"
	"time"

	"statusboard/internal/sysinfo"
)

//go:embed templates/*.html
var templateFS embed.FS

var dashboardTpl = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const title = "DevOps Pipeline Dashboard"

type Row struct {
	Label string
	Value string
}

type Section struct {
	Name    string
	Rows    []Row
	ShowBar bool
}

// View is the display form of a snapshot. Memory figures are fixed to two
// decimals.
type View struct {
	Title         string
	Sections      []Section
	MemoryPercent string
	CapturedAt    string
}

func NewView(s sysinfo.Snapshot) View {
	return View{
		Title: title,
		Sections: []Section{
			{
				Name: "Pipeline / Build",
				Rows: []Row{
					{"Version", s.Version},
					{"Build time", s.BuildTime},
				},
			},
			{
				Name: "Host",
				Rows: []Row{
					{"Hostname", s.Hostname},
					{"Platform", s.Platform},
					{"CPU cores", strconv.Itoa(s.CPUCores)},
					{"Uptime", s.UptimeHuman()},
				},
			},
			{
				Name: "Resource usage",
				Rows: []Row{
					{"Total memory", formatMB(s.TotalMemoryMB)},
					{"Free memory", formatMB(s.FreeMemoryMB)},
					{"Used memory", formatMB(s.UsedMemoryMB)},
					{"Memory used", formatPercent(s.MemoryUsedPercent())},
				},
				ShowBar: true,
			},
			{
				Name: "Deployment",
				Rows: []Row{
					{"Environment", s.Environment},
					{"Process ID", strconv.Itoa(s.ProcessID)},
				},
			},
		},
		MemoryPercent: strconv.FormatFloat(s.MemoryUsedPercent(), 'f', 1, 64),
		CapturedAt:    s.CapturedAt.Format(time.RFC3339),
	}
}

// Render writes the HTML dashboard for s.
func Render(w io.Writer, s sysinfo.Snapshot) error {
	if err := dashboardTpl.ExecuteTemplate(w, "dashboard.html", NewView(s)); err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}
	return nil
}

// RenderText is the plain-text form of the same report.
func RenderText(s sysinfo.Snapshot) string {
	v := NewView(s)

	var b strings.Builder
	b.WriteString(v.Title)
	b.WriteString("\n")
	for _, sec := range v.Sections {
		fmt.Fprintf(&b, "\n[%s]\n", sec.Name)
		for _, r := range sec.Rows {
			fmt.Fprintf(&b, "  %-14s %s\n", r.Label+":", r.Value)
		}
	}
	return b.String()
}

func formatMB(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + " MB"
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}
