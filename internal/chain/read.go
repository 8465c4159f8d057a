package chain

import (
	"context"
	"math/big"
	"time"
)

// Outcome tells which stage of the read produced the value
type Outcome int

const (
	// OutcomeFresh: the first unpinned call succeeded
	OutcomeFresh Outcome = iota
	// OutcomePinned: a retry pinned to a block height succeeded
	OutcomePinned
	// OutcomeRecovered: the delayed unpinned retry succeeded
	OutcomeRecovered
	// OutcomeEmpty: every stage failed and the zero value was returned
	OutcomeEmpty
	// OutcomeRejected: the contract reverted or returned undecodable data,
	// so the call was not retried and the zero value was returned
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFresh:
		return "fresh"
	case OutcomePinned:
		return "pinned"
	case OutcomeRecovered:
		return "recovered"
	case OutcomeRejected:
		return "rejected"
	default:
		return "empty"
	}
}

// OK reports whether the read produced a real value
func (o Outcome) OK() bool {
	return o != OutcomeEmpty && o != OutcomeRejected
}

// Stage names passed to Retry.OnStage
const (
	StageParsedHeight = "parsed_height"
	StageBlockNumber  = "block_number"
	StageDelayed      = "delayed"
	StageEmpty        = "empty"
	StageRejected     = "rejected"
)

// ReadFunc performs one contract read. A nil block means latest.
type ReadFunc[T any] func(ctx context.Context, block *big.Int) (T, error)

// BlockNumberer reports the node's current block height
type BlockNumberer interface {
	BlockNumber(ctx context.Context) (uint64, error)
}

// Retry configures the escalation used by Read
type Retry struct {
	Blocks BlockNumberer
	Delay  time.Duration
	// OnStage, when set, is called each time an escalation stage is entered
	OnStage func(stage string, cause error)
}

func (r Retry) stage(name string, cause error) {
	if r.OnStage != nil {
		r.OnStage(name, cause)
	}
}

// Read runs read and escalates on failure, each stage at most once:
// pin to a height parsed from the error, pin to the node's block number,
// then retry unpinned after Delay. When everything fails the zero value is
// returned with OutcomeEmpty and a nil error. Call exceptions and undecodable
// data are not retried and yield OutcomeRejected. Only context errors are
// returned.
func Read[T any](ctx context.Context, r Retry, read ReadFunc[T]) (T, Outcome, error) {
	var zero T

	v, err := read(ctx, nil)
	if err == nil {
		return v, OutcomeFresh, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return zero, OutcomeEmpty, ctxErr
	}

	switch Classify(err) {
	case ClassCallException, ClassBadData:
		r.stage(StageRejected, err)
		return zero, OutcomeRejected, nil

	case ClassBlockHeight:
		if height, ok := ParseBlockHeight(err.Error()); ok {
			r.stage(StageParsedHeight, err)
			if v, err = read(ctx, height); err == nil {
				return v, OutcomePinned, nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return zero, OutcomeEmpty, ctxErr
			}
		}

		if r.Blocks != nil {
			r.stage(StageBlockNumber, err)
			if n, bnErr := r.Blocks.BlockNumber(ctx); bnErr == nil {
				if v, err = read(ctx, new(big.Int).SetUint64(n)); err == nil {
					return v, OutcomePinned, nil
				}
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return zero, OutcomeEmpty, ctxErr
			}
		}
	}

	r.stage(StageDelayed, err)
	if err := sleep(ctx, r.Delay); err != nil {
		return zero, OutcomeEmpty, err
	}
	if v, err = read(ctx, nil); err == nil {
		return v, OutcomeRecovered, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return zero, OutcomeEmpty, ctxErr
	}

	r.stage(StageEmpty, err)
	return zero, OutcomeEmpty, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
