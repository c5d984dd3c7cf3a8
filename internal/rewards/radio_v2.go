package rewards

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/withObsrvr/oracle-persist/internal/storage"
	"github.com/withObsrvr/oracle-persist/internal/wire"
)

// RadioRewardV2Batch accumulates radio reward v2 parents together with their
// child collections. Child collections are kept by parent position until the
// parent ids are known.
type RadioRewardV2Batch struct {
	Parents RadioRewardV2Columns

	trustScores  [][]wire.LocationTrustScore
	speedtests   [][]wire.Speedtest
	averages     []*wire.Speedtest
	coveredHexes [][]wire.CoveredHex

	log *slog.Logger
}

func NewRadioRewardV2Batch(log *slog.Logger) RadioRewardV2Batch {
	return RadioRewardV2Batch{log: log}
}

// Add appends one parent and remembers its children.
func (b *RadioRewardV2Batch) Add(start, end time.Time, r *wire.RadioRewardV2) {
	b.Parents.Add(start, end, r)
	b.trustScores = append(b.trustScores, r.LocationTrustScores)
	b.speedtests = append(b.speedtests, r.Speedtests)
	b.averages = append(b.averages, r.SpeedtestAverage)
	b.coveredHexes = append(b.coveredHexes, r.CoveredHexes)
}

func (b *RadioRewardV2Batch) Len() int { return b.Parents.Len() }

// V2Children are the child batches of a radio reward v2 batch once parent ids
// have been assigned.
type V2Children struct {
	TrustScores      LocationTrustScoreColumns
	Speedtests       SpeedtestColumns
	SpeedtestAverage SpeedtestColumns
	CoveredHexes     CoveredHexColumns
}

// Flatten expands the child collections into columnar batches, tagging every
// child row with the id at its parent's position. ids must hold one id per
// parent.
func (b *RadioRewardV2Batch) Flatten(ids []int64) (*V2Children, error) {
	if len(ids) != b.Len() {
		return nil, &storage.KeyAssociationError{
			Table:     b.Parents.Table(),
			Submitted: b.Len(),
			Returned:  len(ids),
		}
	}

	c := &V2Children{
		Speedtests:       NewSpeedtestColumns(SpeedtestsTable),
		SpeedtestAverage: NewSpeedtestColumns(SpeedtestAverageTable),
	}
	for i, id := range ids {
		for j := range b.trustScores[i] {
			c.TrustScores.Add(id, &b.trustScores[i][j])
		}
		for j := range b.speedtests[i] {
			c.Speedtests.Add(id, &b.speedtests[i][j])
		}
		if avg := b.averages[i]; avg != nil {
			c.SpeedtestAverage.Add(id, avg)
		}
		for j := range b.coveredHexes[i] {
			c.CoveredHexes.Add(id, &b.coveredHexes[i][j])
		}
	}
	return c, nil
}

func (c *V2Children) batches() []storage.Columnar {
	return []storage.Columnar{&c.TrustScores, &c.Speedtests, &c.SpeedtestAverage, &c.CoveredHexes}
}

// Write persists the whole batch in one transaction: parents first, with
// their generated ids, then every child table. Nothing is visible unless
// every statement succeeds.
func (b *RadioRewardV2Batch) Write(ctx context.Context, s storage.Store, maxParams int) (storage.Results, error) {
	results := storage.Results{}
	if b.Len() == 0 {
		return results, nil
	}

	d := s.Dialect()
	limit := d.ParamLimit(maxParams)

	err := storage.WithTx(ctx, s, func(tx storage.Tx) error {
		ids, res, err := storage.InsertChunkedReturning(ctx, tx, d, &b.Parents, limit)
		if err != nil {
			return err
		}
		results.Add(b.Parents.Table(), res)

		children, err := b.Flatten(ids)
		if err != nil {
			return err
		}
		for _, child := range children.batches() {
			res, err := storage.InsertChunked(ctx, tx, d, child, limit)
			if err != nil {
				return err
			}
			if res.Rows > 0 {
				results.Add(child.Table(), res)
			}
		}
		return nil
	})
	if err != nil {
		return storage.Results{}, fmt.Errorf("write radio reward v2 batch: %w", err)
	}

	if b.log != nil {
		b.log.Debug("radio reward v2 batch committed",
			"parents", b.Len(),
			"location_trust_scores", results[LocationTrustScoresTable.Name].Rows,
			"speedtests", results[SpeedtestsTable.Name].Rows,
			"speedtest_average", results[SpeedtestAverageTable.Name].Rows,
			"covered_hexes", results[CoveredHexesTable.Name].Rows,
		)
	}
	return results, nil
}
