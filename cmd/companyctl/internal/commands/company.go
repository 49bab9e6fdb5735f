package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/gartstein/companies/internal/company/client"
	"github.com/gartstein/companies/internal/company/models"
)

// GetCmd shows one company.
type GetCmd struct {
	ID string `arg:"" help:"Company ID."`
}

func (c *GetCmd) Run(ctx context.Context, globals *Globals) error {
	id, err := parseID(c.ID)
	if err != nil {
		return err
	}

	company, err := globals.bridge(client.ModeRemote, 0).Load(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get company: %w", err)
	}
	return globals.render(company, func(w io.Writer) { writeCompany(w, company) })
}

// CreateCmd creates a company. Validation happens on the server.
type CreateCmd struct {
	Name        string `help:"Company name."`
	Industry    string `help:"Industry."`
	Location    string `help:"Location, e.g. Austin, TX."`
	Size        string `help:"Head-count bracket, e.g. 11-50."`
	Description string `help:"Short description."`
	Founded     int    `help:"Year the company was founded."`
	Website     string `help:"Homepage URL."`
}

func (c *CreateCmd) Run(ctx context.Context, globals *Globals) error {
	in := models.CompanyInput{
		Name:        c.Name,
		Industry:    c.Industry,
		Location:    c.Location,
		Size:        c.Size,
		Description: c.Description,
		Founded:     c.Founded,
		Website:     c.Website,
	}

	created, err := globals.bridge(client.ModeRemote, 0).Create(ctx, in)
	if err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}
	return globals.render(created, func(w io.Writer) { writeCompany(w, created) })
}

// UpdateCmd replaces a company's fields. Flags left unset keep the stored
// value.
type UpdateCmd struct {
	ID           string `arg:"" help:"Company ID."`
	Name         string `help:"Company name."`
	Industry     string `help:"Industry."`
	Location     string `help:"Location."`
	Size         string `help:"Head-count bracket."`
	Description  string `help:"Short description."`
	Founded      int    `help:"Year the company was founded."`
	Website      string `help:"Homepage URL."`
	ClearWebsite bool   `help:"Remove the homepage URL."`
}

func (c *UpdateCmd) apply(in models.CompanyInput) models.CompanyInput {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&in.Name, c.Name)
	set(&in.Industry, c.Industry)
	set(&in.Location, c.Location)
	set(&in.Size, c.Size)
	set(&in.Description, c.Description)
	set(&in.Website, c.Website)
	if c.Founded != 0 {
		in.Founded = c.Founded
	}
	if c.ClearWebsite {
		in.Website = ""
	}
	return in
}

func (c *UpdateCmd) Run(ctx context.Context, globals *Globals) error {
	id, err := parseID(c.ID)
	if err != nil {
		return err
	}

	b := globals.bridge(client.ModeRemote, 0)
	current, err := b.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get company: %w", err)
	}

	updated, err := b.Update(ctx, current, c.apply(current.Input()))
	if err != nil {
		return fmt.Errorf("failed to update company: %w", err)
	}
	return globals.render(updated, func(w io.Writer) { writeCompany(w, updated) })
}

// DeleteCmd deletes a company. Deleting a company that is already gone
// succeeds.
type DeleteCmd struct {
	ID string `arg:"" help:"Company ID."`
}

type deleteResult struct {
	ID      string `json:"id" yaml:"id"`
	Deleted bool   `json:"deleted" yaml:"deleted"`
}

func (c *DeleteCmd) Run(ctx context.Context, globals *Globals) error {
	id, err := parseID(c.ID)
	if err != nil {
		return err
	}

	if err := globals.bridge(client.ModeRemote, 0).Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}
	return globals.render(deleteResult{ID: id.String(), Deleted: true}, func(w io.Writer) {
		fmt.Fprintf(w, "Deleted company %s\n", id)
	})
}

// OptionsCmd shows the suggested categorical values.
type OptionsCmd struct{}

func (c *OptionsCmd) Run(ctx context.Context, globals *Globals) error {
	opts, err := globals.bridge(client.ModeRemote, 0).Options(ctx)
	if err != nil {
		return fmt.Errorf("failed to get options: %w", err)
	}
	return globals.render(opts, func(w io.Writer) { writeOptions(w, opts) })
}
