package tables

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/withObsrvr/oracle-persist/internal/storage"
)

// ErrProvisioning wraps every table creation failure. It is fatal to an
// import run.
var ErrProvisioning = errors.New("provision tables")

// Executor is the subset of storage.Store the provisioner needs.
type Executor interface {
	storage.Executor
	Dialect() storage.Dialect
}

// Provisioner ensures a set of tables exists.
type Provisioner struct {
	exec   Executor
	tables []Table
	log    *slog.Logger
}

// NewProvisioner returns a provisioner for defs on exec.
func NewProvisioner(exec Executor, defs ...Table) *Provisioner {
	return &Provisioner{
		exec:   exec,
		tables: defs,
		log:    slog.With("component", "provisioner"),
	}
}

// EnsureTablesExist creates any missing table. Existing tables are left
// untouched, so calling it repeatedly is safe.
func (p *Provisioner) EnsureTablesExist(ctx context.Context) error {
	d := p.exec.Dialect()
	for _, t := range p.tables {
		if _, err := p.exec.Exec(ctx, t.CreateStatement(d)); err != nil {
			return fmt.Errorf("%w: create %s: %w", ErrProvisioning, t.Name, err)
		}
	}
	p.log.Debug("tables ensured", "count", len(p.tables), "dialect", d.Name)
	return nil
}
