package ports

import "context"

// FailureSentinel is the verdict text shown whenever the AI oracle cannot
// produce an answer.
const FailureSentinel = "No AI answer available."

// OracleGateway fetches an AI-generated verdict for a claim.
//
// Implementations never return an error: any transport, status, decoding or
// provider failure is mapped to FailureSentinel. A single attempt is made per
// call.
type OracleGateway interface {
	FetchVerdict(ctx context.Context, claimText string) string
}
