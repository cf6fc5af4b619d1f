package pnl

import "errors"

var (
	// ErrTooFewColumns is returned for sources that cannot carry the month and
	// store columns.
	ErrTooFewColumns = errors.New("source must have at least two columns (month, store)")
	// ErrNoData marks comparisons whose counterpart dataset or record is missing.
	ErrNoData             = errors.New("no data available")
	ErrUnknownField       = errors.New("unknown field")
	ErrInvalidPeriodRange = errors.New("period end cannot be earlier than period start")
)
