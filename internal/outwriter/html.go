package outwriter

import (
	"embed"
	"html/template"
	"io"
	"strings"
	"sync"

	"github.com/huangsam/benchtable/internal/contract"
	"github.com/huangsam/benchtable/schema"
)

// Script locations of the interactive table.
const (
	onlineLibURL  = "https://cdn.jsdelivr.net"
	offlineLibURL = "lib/javascript"
)

//go:embed templates/table.html
var templateFS embed.FS

var (
	htmlTemplate *template.Template
	htmlOnce     sync.Once
	htmlErr      error
)

func loadHTMLTemplate() (*template.Template, error) {
	htmlOnce.Do(func() {
		htmlTemplate, htmlErr = template.ParseFS(templateFS, "templates/table.html")
	})
	return htmlTemplate, htmlErr
}

// htmlCell is one rendered table cell.
type htmlCell struct {
	Value   string
	Class   string
	Link    string
	Colspan int
}

// htmlRow is one rendered table line.
type htmlRow struct {
	ID     string
	Title  string
	Indent int
	Hint   string
	Cells  []htmlCell
}

// htmlPage is the data handed to the template.
type htmlPage struct {
	Title     string
	LibURL    string
	IDColumns int
	Head      []htmlRow
	Body      []htmlRow
	Foot      []htmlRow
}

// writeHTMLTable renders the table as a standalone HTML page.
func writeHTMLTable(w io.Writer, table *schema.Table, cfg *contract.Config) error {
	tmpl, err := loadHTMLTemplate()
	if err != nil {
		return err
	}
	return tmpl.Execute(w, newHTMLPage(table, cfg))
}

func newHTMLPage(table *schema.Table, cfg *contract.Config) htmlPage {
	page := htmlPage{
		Title:     table.Title,
		LibURL:    onlineLibURL,
		IDColumns: max(table.IDColumnCount(), 1),
	}
	if cfg.Offline {
		page.LibURL = offlineLibURL
	}

	for _, head := range table.Head {
		row := htmlRow{ID: head.ID, Title: head.Name}
		for _, cell := range head.Content {
			row.Cells = append(row.Cells, htmlCell{Value: cell.Value, Colspan: cell.Width})
		}
		page.Head = append(page.Head, row)
	}

	for _, row := range table.Rows {
		out := htmlRow{Title: row.ShortName}
		for i, cell := range idCells(row, table.RelevantIDColumns) {
			if i == 0 {
				continue
			}
			out.Cells = append(out.Cells, htmlCell{Value: cell, Class: "id", Colspan: 1})
		}
		if row.FilePath != "" {
			out.Hint = row.FilePath
		}
		for i, result := range row.Results {
			columns := table.RunSets[i].Columns
			for j, value := range result.Values {
				cell := htmlCell{Value: value, Colspan: 1}
				if j < len(columns) && strings.EqualFold(columns[j].Title, "status") {
					cell.Class = "status " + string(result.Category)
					cell.Link = result.LogFile
				}
				out.Cells = append(out.Cells, cell)
			}
		}
		page.Body = append(page.Body, out)
	}

	for _, stat := range table.Stats {
		row := htmlRow{ID: stat.ID, Title: stat.Title, Indent: stat.Indent, Hint: stat.Description}
		for _, value := range stat.Content {
			row.Cells = append(row.Cells, htmlCell{Value: value.String(), Colspan: 1})
		}
		page.Foot = append(page.Foot, row)
	}
	return page
}
