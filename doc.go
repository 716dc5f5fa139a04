/*
Package scopes is a tool invocation gateway for a hierarchical scopes application.

It exposes the scopes operations (create, update, delete, aliases, listing) as named
tools that an AI agent or any other client can call over MCP or HTTP. Every call goes
through the same pipeline, so transports never diverge in behavior.

# Idempotent Replay

A caller may attach an idempotency key to a call. The gateway canonicalizes the
arguments, hashes them, and remembers the resulting envelope under
tool|key|hash. Retrying the same call with the same key within the TTL replays the
first envelope without running the tool again, including error envelopes. Changing
the key, the tool or the arguments runs the tool again.

Results are stored in memory by default. Several gateway processes can share a Redis
backend and a Redis lock (see pkg/adapters/redis).

# Error Contract

Application failures are a closed taxonomy (pkg/domain) that maps onto stable codes
and details (pkg/errmap). Clients can branch on details.errorType and retry when
details.retryable is true.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/kamiazya/scopes"
		"github.com/kamiazya/scopes/pkg/domain"
	)

	func main() {
		gw, err := scopes.New()
		if err != nil {
			log.Fatal(err)
		}

		resp, err := gw.Invoke(context.Background(), domain.ToolRequest{
			ToolName:       "scopes.create",
			Arguments:      domain.Arguments{"title": domain.String("Launch")},
			IdempotencyKey: "launch-0001",
		})
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(resp.Content)
	}
*/
package scopes
