package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/apperr"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/db"
)

// Resolution is a Classification bound to the id of its state row.
type Resolution struct {
	Classification
	StateID int
}

// Resolver turns state names into row ids. A canonical name missing from
// the states table is a configuration error, never a client error.
type Resolver struct {
	q db.Querier
}

func NewResolver(q db.Querier) *Resolver {
	return &Resolver{q: q}
}

func (r *Resolver) ID(ctx context.Context, name string) (int, error) {
	var id int
	err := r.q.GetContext(ctx, &id, `SELECT id_state FROM states WHERE name_state = $1`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.Configuration(fmt.Sprintf("State '%s' not found in database", name), err)
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// CheckCanonical fails when any state the classifier can produce is
// missing from the states table.
func (r *Resolver) CheckCanonical(ctx context.Context) error {
	for _, name := range Canonical() {
		if _, err := r.ID(ctx, name); err != nil {
			return err
		}
	}
	return nil
}
