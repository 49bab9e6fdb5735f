package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/gartstein/companies/internal/company/client"
	e "github.com/gartstein/companies/internal/company/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Globals struct {
	Server  string
	Output  string
	Debug   bool
	Version string
	Logger  *zap.Logger
	Out     io.Writer
}

// bridge connects a fresh directory state to the configured server.
func (g *Globals) bridge(mode client.Mode, pageSize int) *client.Bridge {
	logger := g.logger()
	store := client.NewRemoteStore(g.Server, client.WithLogger(logger))
	return client.NewBridge(store, client.NewState(mode, pageSize), logger)
}

func (g *Globals) logger() *zap.Logger {
	if g.Logger == nil {
		return zap.NewNop()
	}
	return g.Logger
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q is not a company ID", e.ErrInvalidInput, raw)
	}
	return id, nil
}
