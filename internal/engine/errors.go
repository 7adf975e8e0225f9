package engine

import "errors"

// ErrInvalidReading marks a rejected reading (non-finite value). The
// rolling window for that metric is left untouched.
var ErrInvalidReading = errors.New("breachwatch: invalid reading")

// ErrIncompleteCycle marks a cycle that produced fewer verdicts than the
// number of configured metrics. The assessment returned alongside it was
// correlated over the available subset.
var ErrIncompleteCycle = errors.New("breachwatch: incomplete cycle")
