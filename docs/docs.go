// Package docs registers the OpenAPI document served under /swagger.
// Keep it in step with the handler annotations in internal/api/handler.
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
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "system"
                ],
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object",
                            "additionalProperties": {
                                "type": "string"
                            }
                        }
                    }
                }
            }
        },
        "/reports": {
            "post": {
                "description": "Load, aggregate and write a timestamped text report to the output directory",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "reports"
                ],
                "summary": "Generate a report",
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/handler.ReportResponse"
                        }
                    },
                    "404": {
                        "description": "Input file not found",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "Malformed input",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Write failure or internal error",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/summary": {
            "get": {
                "description": "Load the configured sales input and return totals and ranked tables",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "reports"
                ],
                "summary": "Get sales summary",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.SummaryResponse"
                        }
                    },
                    "404": {
                        "description": "Input file not found",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "422": {
                        "description": "Malformed input",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal server error",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "handler.AggregateRowResponse": {
            "type": "object",
            "properties": {
                "key": {
                    "type": "string"
                },
                "revenue": {
                    "type": "string"
                },
                "units_sold": {
                    "type": "integer"
                }
            }
        },
        "handler.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "string"
                },
                "kind": {
                    "type": "string"
                }
            }
        },
        "handler.ReportResponse": {
            "type": "object",
            "properties": {
                "bytes": {
                    "type": "integer"
                },
                "path": {
                    "type": "string"
                },
                "summary": {
                    "$ref": "#/definitions/handler.SummaryResponse"
                }
            }
        },
        "handler.SummaryResponse": {
            "type": "object",
            "properties": {
                "by_artisan": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/handler.AggregateRowResponse"
                    }
                },
                "by_product": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/handler.AggregateRowResponse"
                    }
                },
                "currency": {
                    "type": "string"
                },
                "generated_at": {
                    "type": "string"
                },
                "run_id": {
                    "type": "string"
                },
                "total_revenue": {
                    "type": "string"
                },
                "total_units": {
                    "type": "integer"
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Sales Report API",
	Description:      "Aggregated sales summaries and timestamped text reports.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
