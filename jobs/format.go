package jobs

import (
	"fmt"
	"strings"
	"time"

	"asset_borrow_ledger/models"
)

func formatLine(r models.BorrowRequest) string {
	return fmt.Sprintf("%s | %s | Ticket %s | Due %s | Status %s",
		r.RequestCode, r.AssetType, r.TicketID, r.DueAt.Format(time.RFC3339), r.Status)
}

func buildSections(overdue, dueSoon []models.BorrowRequest) string {
	var parts []string
	if len(overdue) > 0 {
		lines := make([]string, 0, len(overdue))
		for _, r := range overdue {
			lines = append(lines, "- "+formatLine(r))
		}
		parts = append(parts, "Overdue:\n"+strings.Join(lines, "\n"))
	}
	if len(dueSoon) > 0 {
		lines := make([]string, 0, len(dueSoon))
		for _, r := range dueSoon {
			lines = append(lines, "- "+formatLine(r))
		}
		parts = append(parts, "Due within 24h:\n"+strings.Join(lines, "\n"))
	}
	return strings.Join(parts, "\n\n")
}

func htmlList(heading string, rows []models.BorrowRequest) string {
	var b strings.Builder
	b.WriteString("<h3>" + heading + "</h3><ul>")
	for _, r := range rows {
		fmt.Fprintf(&b, "<li><strong>%s</strong> | %s | Ticket %s | Due %s</li>",
			r.RequestCode, r.AssetType, r.TicketID, r.DueAt.Format(time.RFC3339))
	}
	b.WriteString("</ul>")
	return b.String()
}

func buildHTML(overdue, dueSoon []models.BorrowRequest) string {
	var blocks []string
	if len(overdue) > 0 {
		blocks = append(blocks, htmlList("Overdue", overdue))
	}
	if len(dueSoon) > 0 {
		blocks = append(blocks, htmlList("Due within 24h", dueSoon))
	}
	return strings.Join(blocks, "<br/>")
}
