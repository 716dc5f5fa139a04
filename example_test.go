package scopes_test

import (
	"context"
	"fmt"

	"github.com/kamiazya/scopes"
	"github.com/kamiazya/scopes/pkg/domain"
)

func Example() {
	gw, err := scopes.New()
	if err != nil {
		panic(err)
	}
	ctx := context.Background()

	req := domain.ToolRequest{
		ToolName:       "scopes.create",
		Arguments:      domain.Arguments{"title": domain.String("Launch"), "customAlias": domain.String("launch")},
		IdempotencyKey: "example-key-1",
	}
	first, _ := gw.Invoke(ctx, req)
	retry, _ := gw.Invoke(ctx, req)
	fmt.Println(first.IsError, first.Content == retry.Content)

	missing, _ := gw.Invoke(ctx, domain.ToolRequest{
		ToolName:  "scopes.get",
		Arguments: domain.Arguments{"alias": domain.String("nowhere")},
	})
	fmt.Println(missing.Content)
	// Output:
	// false true
	// {"code":-32001,"details":{"alias":"nowhere","errorType":"BusinessError.AliasNotFound","retryable":false},"message":"alias 'nowhere' not found"}
}
