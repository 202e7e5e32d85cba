// Package docs registers the generated swagger spec with swaggo.
package docs

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
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}}
                }
            }
        },
        "/stocks": {
            "get": {
                "produces": ["application/json"],
                "tags": ["stocks"],
                "summary": "List all tracked stocks",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "object"}}}
                }
            }
        },
        "/stocks/{ticker}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["stocks"],
                "summary": "Get one stock",
                "parameters": [
                    {"type": "string", "description": "Stock ticker", "name": "ticker", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Not Found", "schema": {"type": "object"}}
                }
            }
        },
        "/analysis/{ticker}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["stocks"],
                "summary": "Get AI analysis for one stock",
                "parameters": [
                    {"type": "string", "description": "Stock ticker", "name": "ticker", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Not Found", "schema": {"type": "object"}}
                }
            }
        },
        "/news": {
            "get": {
                "produces": ["application/json"],
                "tags": ["market"],
                "summary": "Latest market news",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"type": "object"}}}
                }
            }
        },
        "/insights": {
            "get": {
                "produces": ["application/json"],
                "tags": ["market"],
                "summary": "Market-wide AI insights",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}}
                }
            }
        },
        "/performance": {
            "get": {
                "produces": ["application/json"],
                "tags": ["market"],
                "summary": "Market performance summary",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}}
                }
            }
        },
        "/tickers": {
            "get": {
                "produces": ["application/json"],
                "tags": ["stocks"],
                "summary": "List tracked tickers",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}}
                }
            }
        },
        "/refresh": {
            "get": {
                "produces": ["application/json"],
                "tags": ["market"],
                "summary": "Trigger a refresh cycle",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "500": {"description": "Internal Server Error", "schema": {"type": "object"}}
                }
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "StockPulse API",
	Description:      "AI-enhanced stock tracker: cached quotes, news and market insights.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
