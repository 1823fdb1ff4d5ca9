// Package render prints the admin views to a terminal.
package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/nonsonwune/hostel_admin/console"
	"github.com/nonsonwune/hostel_admin/models"
)

var studentHeader = []string{"ID", "Name", "Enrollment", "Email", "Trust Score", "Hostel", "Request"}

var tierColors = map[models.TrustTier]tablewriter.Colors{
	models.TierExcellent: {tablewriter.Bold, tablewriter.FgGreenColor},
	models.TierGood:      {tablewriter.FgCyanColor},
	models.TierLow:       {tablewriter.FgYellowColor},
	models.TierFlagged:   {tablewriter.Bold, tablewriter.FgRedColor},
}

// Students prints the list as a table with a color-coded trust badge.
func Students(w io.Writer, students []models.Student) {
	if len(students) == 0 {
		fmt.Fprintln(w, "No students found")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(studentHeader)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, s := range students {
		colors := make([]tablewriter.Colors, len(studentHeader))
		colors[4] = tierColors[models.TierFor(s.TrustScore)]
		table.Rich(StudentRow(s), colors)
	}

	table.Render()
	fmt.Fprintf(w, "%d student(s)\n", len(students))
}

// StudentRow is the plain text form of one table row.
func StudentRow(s models.Student) []string {
	return []string{
		s.ID,
		orDash(s.Name),
		orDash(s.EnrollmentNumber),
		orDash(s.Email),
		Badge(s.TrustScore),
		Hostel(s),
		orDash(s.RequestedHostel()),
	}
}

// Badge renders "12 (Excellent)".
func Badge(score int) string {
	return fmt.Sprintf("%d (%s)", score, models.TierFor(score))
}

func Hostel(s models.Student) string {
	if s.Hostel == nil {
		return "Not assigned"
	}
	if s.Hostel.RoomNumber == "" {
		return s.Hostel.HostelName
	}
	return fmt.Sprintf("%s / Room %s", s.Hostel.HostelName, s.Hostel.RoomNumber)
}

// Notification prints one colored status line.
func Notification(w io.Writer, n *console.Notification) {
	if n == nil {
		return
	}
	c := color.New(color.FgGreen)
	prefix := "✔"
	if n.Kind == console.KindError {
		c = color.New(color.FgRed)
		prefix = "✖"
	}
	c.Fprintf(w, "%s %s\n", prefix, n.Message)
}

// Decisions prints the audit history.
func Decisions(w io.Writer, decisions []models.Decision) {
	if len(decisions) == 0 {
		fmt.Fprintln(w, "No decisions recorded")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"When", "Student", "Action", "Outcome", "Error"})
	table.SetAutoWrapText(false)

	for _, d := range decisions {
		outcome := "ok"
		colors := tablewriter.Colors{tablewriter.FgGreenColor}
		if !d.Succeeded {
			outcome = "failed"
			colors = tablewriter.Colors{tablewriter.FgRedColor}
		}
		table.Rich([]string{
			d.DecidedAt.Local().Format("2006-01-02 15:04:05"),
			d.StudentID,
			string(d.Action),
			outcome,
			d.Error,
		}, []tablewriter.Colors{{}, {}, {}, colors, {}})
	}

	table.Render()
}

// ExportCSV writes the list with the same columns as the table, minus color.
func ExportCSV(w io.Writer, students []models.Student) error {
	writer := csv.NewWriter(w)
	header := []string{"id", "name", "enrollment_number", "email", "trust_score", "trust_tier", "hostel", "room", "requested_hostel"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("error writing headers: %w", err)
	}

	for _, s := range students {
		room := ""
		if s.Hostel != nil {
			room = s.Hostel.RoomNumber
		}
		record := []string{
			s.ID,
			s.Name,
			s.EnrollmentNumber,
			s.Email,
			strconv.Itoa(s.TrustScore),
			string(models.TierFor(s.TrustScore)),
			s.HostelName(),
			room,
			s.RequestedHostel(),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("error writing record %s: %w", s.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
