package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ZilDuck/crafted-market/internal/fault"
)

var rejectionPhrases = []string{"user denied", "user rejected", "request denied", "rejected by user"}

var revertPhrases = []string{"revert", "insufficient funds", "gas required exceeds", "nonce too low"}

// classify maps a transport or JSON-RPC failure onto the fault taxonomy, keeping the
// ledger's message.
func classify(err error) error {
	if err == nil {
		return nil
	}

	if fault.KindOf(err) != fault.Unknown {
		return err
	}

	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		var rpcErrValue RPCError
		if errors.As(err, &rpcErrValue) {
			rpcErr = &rpcErrValue
		}
	}

	if rpcErr == nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fault.Wrapf(fault.NetworkError, err, "ledger request aborted")
		}
		return fault.Wrap(fault.NetworkError, err)
	}

	message := rpcErr.Message
	if data, ok := rpcErr.Data.(string); ok && data != "" {
		message = fmt.Sprintf("%s (%s)", message, data)
	}
	lower := strings.ToLower(rpcErr.Message)

	if rpcErr.Code == codeUserRejected || containsAny(lower, rejectionPhrases) {
		return &fault.Error{Kind: fault.RejectedByUser, Message: message, Err: err}
	}

	if rpcErr.Code == codeExecutionRevert || containsAny(lower, revertPhrases) {
		return &fault.Error{Kind: fault.LedgerRejected, Message: message, Err: err}
	}

	if rpcErr.Code == codeLimitExceeded {
		return &fault.Error{Kind: fault.NetworkError, Message: message, Err: err}
	}

	return &fault.Error{Kind: fault.LedgerRejected, Message: message, Err: err}
}

func containsAny(s string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(s, phrase) {
			return true
		}
	}

	return false
}
