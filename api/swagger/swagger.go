// Package swagger registers the OpenAPI document served on /docs.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness probe",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/sources": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Sources"],
                "summary": "List registered sources",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/sources/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Sources"],
                "summary": "Get the processed schedule of a source",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "boolean", "name": "refresh", "in": "query"},
                    {"type": "boolean", "name": "debug", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Unknown source"},
                    "502": {"description": "Upstream failure"}
                }
            }
        },
        "/sources/{id}/refresh": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Sources"],
                "summary": "Force a refresh of a source",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Unknown source"},
                    "502": {"description": "Upstream failure"}
                }
            }
        },
        "/sources/{id}/export": {
            "get": {
                "produces": ["text/csv", "application/pdf"],
                "tags": ["Sources"],
                "summary": "Download the schedule of a source",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "format", "in": "query", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Unsupported format"},
                    "404": {"description": "Unknown source"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Exam Schedule API",
	Description:      "Normalized exam schedules ingested from published spreadsheets.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
