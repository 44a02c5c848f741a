package validation

import (
	"github.com/transactionprocessing/transaction-processor/internal/domain/shared"
)

// Outcome is a terminal decision produced by a gate or by the chain as a
// whole. SuccessNeedToAddDevice is a success outcome; every code at or above
// 1000 is a decline reason.
type Outcome struct {
	Code    shared.ResponseCode
	Message string
}

// IsSuccess reports whether the transaction may proceed
func (o Outcome) IsSuccess() bool {
	return o.Code.IsSuccess()
}

// Result converts the outcome into the tagged result returned at the service boundary
func (o Outcome) Result() shared.Result {
	if o.IsSuccess() {
		return shared.Success()
	}
	message := o.Message
	if message == "" {
		message = o.Code.String()
	}
	return shared.Failed("%s", message)
}

func terminal(code shared.ResponseCode, message string) *Outcome {
	return &Outcome{Code: code, Message: message}
}

// Gate inspects the snapshot and either returns a terminal outcome or nil to
// let the chain continue
type Gate func(s *Snapshot) *Outcome

// run walks the gates in order; the first terminal outcome short-circuits the
// rest of the chain
func run(s *Snapshot, gates []Gate) Outcome {
	for _, gate := range gates {
		if outcome := gate(s); outcome != nil {
			return *outcome
		}
	}
	return Outcome{Code: shared.ResponseCodeSuccess, Message: "SUCCESS"}
}
