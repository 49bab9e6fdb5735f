package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/gartstein/companies/internal/company/models"
	"gopkg.in/yaml.v3"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// render writes v in the selected output format. table draws the human
// readable form onto a tabwriter.
func (g *Globals) render(v interface{}, table func(w io.Writer)) error {
	switch g.Output {
	case FormatJSON:
		enc := json.NewEncoder(g.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(g.Out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		w := tabwriter.NewWriter(g.Out, 0, 0, 2, ' ', 0)
		table(w)
		return w.Flush()
	}
}

func writeCompanies(w io.Writer, companies []models.Company) {
	if len(companies) == 0 {
		fmt.Fprintln(w, "No companies found.")
		return
	}
	fmt.Fprintln(w, "ID\tNAME\tINDUSTRY\tLOCATION\tSIZE\tFOUNDED")
	for _, c := range companies {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n", c.ID, c.Name, c.Industry, c.Location, c.Size, c.Founded)
	}
}

func writeCompany(w io.Writer, c *models.Company) {
	fmt.Fprintf(w, "ID:\t%s\n", c.ID)
	fmt.Fprintf(w, "Name:\t%s\n", c.Name)
	fmt.Fprintf(w, "Industry:\t%s\n", c.Industry)
	fmt.Fprintf(w, "Location:\t%s\n", c.Location)
	fmt.Fprintf(w, "Size:\t%s\n", c.Size)
	fmt.Fprintf(w, "Founded:\t%d\n", c.Founded)
	if c.Website != "" {
		fmt.Fprintf(w, "Website:\t%s\n", c.Website)
	}
	fmt.Fprintf(w, "Description:\t%s\n", c.Description)
	fmt.Fprintf(w, "Created:\t%s\n", c.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Updated:\t%s\n", c.UpdatedAt.Format("2006-01-02 15:04:05"))
}

func writeOptions(w io.Writer, opts models.Options) {
	fmt.Fprintf(w, "Industries:\t%s\n", strings.Join(opts.Industries, ", "))
	fmt.Fprintf(w, "Locations:\t%s\n", strings.Join(opts.Locations, "; "))
	fmt.Fprintf(w, "Sizes:\t%s\n", strings.Join(opts.Sizes, ", "))
	fmt.Fprintf(w, "Sorts:\t%s\n", strings.Join(opts.Sorts, ", "))
}
