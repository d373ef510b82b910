//go:build swagger

package httpapi

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
)

// docTemplate is a hand-maintained spec for the three public routes; the
// surface is small enough that generation is not worth the build step.
const docTemplate = `{
    "schemes": ["http"],
    "swagger": "2.0",
    "info": {
        "title": "chatd API",
        "description": "OpenAI-compatible chat completion API over a local model.",
        "version": "1.0"
    },
    "basePath": "/",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "summary": "Liveness probe with the configured model repo",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/models": {
            "get": {
                "produces": ["application/json"],
                "summary": "List the single servable model",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/chat/completions": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Create a chat completion",
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Invalid request"},
                    "500": {"description": "Inference failure"}
                }
            }
        }
    }
}`

var swaggerSpec = &swag.Spec{
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(swaggerSpec.InstanceName(), swaggerSpec)
}

// MountSwagger serves the swagger UI at /swagger/ when built with -tags=swagger.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler())
}
