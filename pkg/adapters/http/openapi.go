package http

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/kamiazya/scopes"
	"github.com/kamiazya/scopes/pkg/gateway"
	"github.com/kamiazya/scopes/pkg/idempotency"
)

const toolResponseRef = "#/components/schemas/ToolResponse"

// OpenAPI describes the HTTP surface for the given tool catalog.
func OpenAPI(tools []gateway.Tool) *openapi3.T {
	responseSchema := openapi3.NewObjectSchema().
		WithProperty("isError", openapi3.NewBoolSchema()).
		WithProperty("content", openapi3.NewStringSchema())
	responseSchema.Required = []string{"isError", "content"}

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   "Scopes Gateway API",
			Version: strings.TrimSpace(scopes.Version),
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{
				"ToolResponse": openapi3.NewSchemaRef("", responseSchema),
			},
		},
	}

	health := openapi3.NewOperation()
	health.OperationID = "getHealth"
	health.Summary = "Liveness probe"
	health.Responses = openapi3.NewResponses(
		openapi3.WithStatus(200, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Service is up")}),
	)
	doc.Paths.Set("/health", &openapi3.PathItem{Get: health})

	list := openapi3.NewOperation()
	list.OperationID = "listTools"
	list.Summary = "List the tool catalog"
	list.Responses = openapi3.NewResponses(
		openapi3.WithStatus(200, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Registered tools")}),
	)
	doc.Paths.Set("/v1/tools", &openapi3.PathItem{Get: list})

	for _, tool := range tools {
		doc.Paths.Set("/v1/tools/"+tool.Name, &openapi3.PathItem{Post: invokeOperation(tool, responseSchema)})
	}
	return doc
}

func invokeOperation(tool gateway.Tool, responseSchema *openapi3.Schema) *openapi3.Operation {
	args := openapi3.NewObjectSchema()
	for _, p := range tool.Params {
		var prop *openapi3.Schema
		switch p.Type {
		case gateway.TypeBoolean:
			prop = openapi3.NewBoolSchema()
		case gateway.TypeInteger:
			prop = openapi3.NewIntegerSchema()
		default:
			prop = openapi3.NewStringSchema()
		}
		prop.Description = p.Description
		prop.Default = p.Default
		args.WithProperty(p.Name, prop)
		if p.Required {
			args.Required = append(args.Required, p.Name)
		}
	}

	body := openapi3.NewObjectSchema().
		WithProperty("arguments", args).
		WithProperty("idempotencyKey", openapi3.NewStringSchema().WithPattern(idempotency.KeyPattern))

	op := openapi3.NewOperation()
	op.OperationID = strings.ReplaceAll(tool.Name, ".", "_")
	op.Summary = tool.Description
	op.Tags = []string{string(tool.Kind)}
	op.Parameters = openapi3.Parameters{
		&openapi3.ParameterRef{Value: openapi3.NewHeaderParameter(IdempotencyKeyHeader).
			WithDescription("Used when the body carries no idempotencyKey").
			WithSchema(openapi3.NewStringSchema())},
	}
	op.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithJSONSchema(body)}
	op.Responses = openapi3.NewResponses(
		openapi3.WithStatus(200, &openapi3.ResponseRef{Value: openapi3.NewResponse().
			WithDescription("Tool envelope, success or structured error").
			WithJSONSchemaRef(openapi3.NewSchemaRef(toolResponseRef, responseSchema))}),
		openapi3.WithStatus(400, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Malformed body")}),
		openapi3.WithStatus(500, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Unstructured fault")}),
	)
	return op
}
