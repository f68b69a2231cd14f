package ports

import "context"

// One call to the external reasoning service.
type OracleRequest struct {
	// Role name, for logging and test doubles. The transport must not branch on it.
	Role string
	// Fixed behavioral instructions for the role.
	Instructions string
	// JSON-serialized input.
	Payload string
}

// Contract for sending a request to the oracle and receiving its raw text reply.
// Implementations return an error only when the call itself could not complete.
type OracleTransport interface {
	Send(ctx context.Context, req OracleRequest) (string, error)
}
