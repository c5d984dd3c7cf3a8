package rewards

import (
	"context"
	"fmt"

	"github.com/withObsrvr/oracle-persist/internal/storage"
)

// writeTable writes one single-table batch inside its own transaction, so a
// failing chunk leaves none of the table's rows behind. Empty batches open
// no transaction.
func writeTable(ctx context.Context, s storage.Store, maxParams int, batch storage.Columnar) (storage.Result, error) {
	var res storage.Result
	if batch.Len() == 0 {
		return res, nil
	}

	d := s.Dialect()
	err := storage.WithTx(ctx, s, func(tx storage.Tx) error {
		var err error
		res, err = storage.InsertChunked(ctx, tx, d, batch, d.ParamLimit(maxParams))
		return err
	})
	if err != nil {
		return storage.Result{}, fmt.Errorf("write %s: %w", batch.Table(), err)
	}
	return res, nil
}

// writeTables writes each batch in order, recording committed work in
// results. It stops at the first failure.
func writeTables(ctx context.Context, s storage.Store, maxParams int, results storage.Results, batches ...storage.Columnar) error {
	for _, batch := range batches {
		res, err := writeTable(ctx, s, maxParams, batch)
		if err != nil {
			return err
		}
		if res.Rows > 0 {
			results.Add(batch.Table(), res)
		}
	}
	return nil
}
