package apidocs

import (
	"github.com/getkin/kin-openapi/openapi3"
	"net/http"
)

const bearerAuth = "bearerAuth"

func jsonResponse(description string, schema *openapi3.Schema) *openapi3.ResponseRef {
	return &openapi3.ResponseRef{
		Value: openapi3.NewResponse().WithDescription(description).WithJSONSchema(schema),
	}
}

func errorSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("message", openapi3.NewStringSchema()).
		WithRequired([]string{"message"})
}

// Spec describes the JSON API served under /api.
func Spec() *openapi3.T {
	login := &openapi3.Operation{
		OperationID: "AuthLogin",
		Summary:     "Exchange panel credentials for an API token",
		Tags:        []string{"auth"},
		RequestBody: &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithRequired(true).
				WithJSONSchema(openapi3.NewObjectSchema().
					WithProperty("username", openapi3.NewStringSchema()).
					WithProperty("password", openapi3.NewStringSchema()).
					WithRequired([]string{"username", "password"})),
		},
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(http.StatusOK, jsonResponse("Signed token", openapi3.NewObjectSchema().
				WithProperty("token", openapi3.NewStringSchema()).
				WithProperty("expires", openapi3.NewInt64Schema()).
				WithRequired([]string{"token", "expires"}))),
			openapi3.WithStatus(http.StatusBadRequest, jsonResponse("Malformed request", errorSchema())),
			openapi3.WithStatus(http.StatusUnauthorized, jsonResponse("Wrong username or password", errorSchema())),
		),
	}

	security := openapi3.NewSecurityRequirements().With(openapi3.NewSecurityRequirement().Authenticate(bearerAuth))

	heartbeat := &openapi3.Operation{
		OperationID: "ExportHeartbeat",
		Summary:     "Time of the last change to any STIX object",
		Tags:        []string{"export"},
		Security:    security,
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(http.StatusOK, jsonResponse("Last change", openapi3.NewObjectSchema().
				WithProperty("updated_at", func() *openapi3.Schema {
					s := openapi3.NewInt64Schema()
					s.Description = "Unix millisecond, grows with every change"
					return s
				}()).
				WithRequired([]string{"updated_at"}))),
			openapi3.WithStatus(http.StatusUnauthorized, jsonResponse("Missing or invalid token", errorSchema())),
		),
	}

	bundle := &openapi3.Operation{
		OperationID: "ExportBundle",
		Summary:     "Every STIX object as a STIX 2.1 bundle",
		Tags:        []string{"export"},
		Security:    security,
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(http.StatusOK, jsonResponse("STIX 2.1 bundle", openapi3.NewObjectSchema().
				WithProperty("type", openapi3.NewStringSchema().WithEnum("bundle")).
				WithProperty("id", openapi3.NewStringSchema()).
				WithProperty("objects", openapi3.NewArraySchema().WithItems(openapi3.NewObjectSchema())).
				WithRequired([]string{"type", "id", "objects"}))),
			openapi3.WithStatus(http.StatusUnauthorized, jsonResponse("Missing or invalid token", errorSchema())),
		),
	}

	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "STIX UI API",
			Description: "Token login and read-only STIX export.",
			Version:     "1.0.0",
		},
		Servers: openapi3.Servers{
			{URL: "/api"},
		},
		Paths: openapi3.NewPaths(
			openapi3.WithPath("/auth/login", &openapi3.PathItem{Post: login}),
			openapi3.WithPath("/export/heartbeat", &openapi3.PathItem{Get: heartbeat}),
			openapi3.WithPath("/export/bundle", &openapi3.PathItem{Get: bundle}),
		),
		Components: &openapi3.Components{
			SecuritySchemes: openapi3.SecuritySchemes{
				bearerAuth: &openapi3.SecuritySchemeRef{
					Value: openapi3.NewJWTSecurityScheme(),
				},
			},
		},
	}
}
