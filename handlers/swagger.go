package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the editor service.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>resumeforge-editor Swagger UI</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document describing the session endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "resumeforge-editor", "version": "v0.1.0" },
  "components": {
    "securitySchemes": { "sessionToken": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } },
    "schemas": {
      "Document": { "type": "object", "description": "Structured resume; entries of experience, education, websites, projects and customSections carry an id" },
      "State": { "type": "object", "properties": { "id": {"type":"string"}, "document": {"$ref":"#/components/schemas/Document"}, "canUndo": {"type":"boolean"}, "canRedo": {"type":"boolean"}, "past": {"type":"integer"}, "future": {"type":"integer"}, "updatedAt": {"type":"string","format":"date-time"} } },
      "CommitResult": { "type": "object", "properties": { "ticket": {"type":"integer"}, "discarded": {"type":"boolean"}, "state": {"$ref":"#/components/schemas/State"}, "report": {"type":"object"} } }
    }
  },
  "paths": {
    "/api/sessions": {
      "post": { "summary": "Start an editing session (blank or from a document)", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"document":{"$ref":"#/components/schemas/Document"}}}}}}, "responses": { "201": { "description": "session id, token and state" }, "400": { "description": "invalid document" } } }
    },
    "/api/sessions/import": {
      "post": { "summary": "Start a session from pasted resume text or HTML", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"text":{"type":"string"}}}}}}, "responses": { "201": { "description": "session created" }, "503": { "description": "no rewriter configured" } } }
    },
    "/api/sessions/{id}": {
      "get": { "summary": "Current state", "security": [{"sessionToken": []}], "responses": { "200": { "description": "state" }, "404": { "description": "unknown session" } } },
      "delete": { "summary": "End the session and discard its document", "security": [{"sessionToken": []}], "responses": { "204": { "description": "deleted" } } }
    },
    "/api/sessions/{id}/document": {
      "put": { "summary": "User edit", "security": [{"sessionToken": []}], "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Document"}}}}, "responses": { "200": { "description": "state" }, "400": { "description": "invalid document" } } }
    },
    "/api/sessions/{id}/undo": { "post": { "summary": "Undo", "security": [{"sessionToken": []}], "responses": { "200": { "description": "state" } } } },
    "/api/sessions/{id}/redo": { "post": { "summary": "Redo", "security": [{"sessionToken": []}], "responses": { "200": { "description": "state" } } } },
    "/api/sessions/{id}/rewrite": {
      "post": { "summary": "AI rewrite performed by the server", "security": [{"sessionToken": []}], "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"instruction":{"type":"string"},"target":{"type":"object","properties":{"kind":{"type":"string"},"id":{"type":"string"}}}}}}}}, "responses": { "200": { "description": "commit result" }, "429": { "description": "rate limited" }, "502": { "description": "rewriter failed" }, "503": { "description": "no rewriter configured" } } }
    },
    "/api/sessions/{id}/rewrites": {
      "post": { "summary": "Begin a client-driven rewrite; returns a ticket and the base document", "security": [{"sessionToken": []}], "responses": { "200": { "description": "ticket" } } }
    },
    "/api/sessions/{id}/rewrites/{ticket}": {
      "post": { "summary": "Commit a rewrite result; stale tickets are discarded", "security": [{"sessionToken": []}], "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"document":{"$ref":"#/components/schemas/Document"}}}}}}, "responses": { "200": { "description": "commit result" }, "400": { "description": "invalid document" } } }
    },
    "/api/sessions/{id}/snapshot": { "get": { "summary": "Read-only copy of the current document", "security": [{"sessionToken": []}], "responses": { "200": { "description": "document" } } } },
    "/api/sessions/{id}/export": { "post": { "summary": "Publish the current document to object storage", "security": [{"sessionToken": []}], "responses": { "200": { "description": "key and presigned url" }, "503": { "description": "storage not configured" } } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`
