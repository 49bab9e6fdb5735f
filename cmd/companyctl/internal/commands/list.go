package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/gartstein/companies/internal/company/client"
	"github.com/gartstein/companies/internal/company/query"
)

type ListCmd struct {
	Name     string `help:"Show companies whose name contains this text."`
	Industry string `help:"Industry to filter by."`
	Location string `help:"Location to filter by."`
	Size     string `help:"Size bracket to filter by, e.g. 11-50."`
	Sort     string `help:"Sort field, prefixed with - for descending." default:"name"`
	Page     int    `help:"Page number." default:"1"`
	Limit    int    `help:"Companies per page." default:"9"`
	Local    bool   `help:"Fetch every company and filter on this machine."`
}

func (l *ListCmd) spec() query.Spec {
	return query.Spec{
		Name:     l.Name,
		Industry: l.Industry,
		Location: l.Location,
		Size:     l.Size,
		Sort:     l.Sort,
		PageSize: l.Limit,
	}
}

func (l *ListCmd) Run(ctx context.Context, globals *Globals) error {
	mode := client.ModeRemote
	if l.Local {
		mode = client.ModeLocal
	}

	b := globals.bridge(mode, l.Limit)
	b.State().SetFilters(l.spec())
	b.State().SetPage(l.Page)
	if err := b.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}

	view := b.State().View()
	return globals.render(view, func(w io.Writer) {
		writeCompanies(w, view.Items)
		p := view.Pagination
		fmt.Fprintf(w, "\nPage %d/%d, %d companies\n", p.CurrentPage, p.TotalPages, p.TotalCount)
	})
}
