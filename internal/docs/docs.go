// Package docs holds the OpenAPI description of the dashboard API, served by
// http-swagger under /swagger/. Regenerate with
// swag init -g cmd/dashboard-api/main.go -o internal/docs
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
        "/datasets": {
            "get": {
                "produces": ["application/json"],
                "tags": ["datasets"],
                "summary": "List datasets",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/pipeline.Status"}}}
                }
            }
        },
        "/datasets/{name}/cache": {
            "delete": {
                "tags": ["datasets"],
                "summary": "Evict a dataset from the cache",
                "parameters": [
                    {"type": "string", "description": "Dataset name", "name": "name", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "Dataset evicted"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/datasets/{name}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["datasets"],
                "summary": "Get a dataset",
                "parameters": [
                    {"type": "string", "description": "Dataset name", "name": "name", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.DatasetResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/datasets/{name}/series": {
            "get": {
                "description": "scope=group lists keys that are groups themselves (continents), scope=member the others (countries); group limits members to one group",
                "produces": ["application/json"],
                "tags": ["datasets"],
                "summary": "List series of a time-series dataset",
                "parameters": [
                    {"type": "string", "description": "Dataset name", "name": "name", "in": "path", "required": true},
                    {"type": "string", "default": "all", "description": "all, group or member", "name": "scope", "in": "query"},
                    {"type": "string", "description": "Only series of this group", "name": "group", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.SeriesResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/timeseries/{name}/aggregate": {
            "get": {
                "description": "Filter a time-series dataset to a date range and series, resample it to day, week or month and reduce every period by metric kind",
                "produces": ["application/json"],
                "tags": ["timeseries"],
                "summary": "Aggregate a time series",
                "parameters": [
                    {"type": "string", "description": "Dataset name", "name": "name", "in": "path", "required": true},
                    {"type": "string", "description": "Metric column, e.g. new_cases", "name": "metric", "in": "query", "required": true},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "Series keys (repeatable or comma separated)", "name": "series", "in": "query"},
                    {"type": "string", "description": "First date (YYYY-MM-DD), default 29 days before end", "name": "start", "in": "query"},
                    {"type": "string", "description": "Last date (YYYY-MM-DD), default last date in the data", "name": "end", "in": "query"},
                    {"type": "string", "default": "day", "description": "day, week or month", "name": "granularity", "in": "query"},
                    {"type": "string", "description": "cumulative or flow, inferred from the metric name when omitted", "name": "kind", "in": "query"},
                    {"type": "boolean", "description": "Add the positive first difference of every series", "name": "peaks", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.AggregateResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/timeseries/{name}/chart": {
            "get": {
                "description": "Same parameters as aggregate. Draws one line per series, a dashed overlay when peaks are requested and a label at the end of every series",
                "produces": ["image/png", "image/svg+xml"],
                "tags": ["timeseries"],
                "summary": "Chart a time series",
                "parameters": [
                    {"type": "string", "description": "Dataset name", "name": "name", "in": "path", "required": true},
                    {"type": "string", "description": "Metric column", "name": "metric", "in": "query", "required": true},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "Series keys", "name": "series", "in": "query"},
                    {"type": "string", "description": "First date (YYYY-MM-DD)", "name": "start", "in": "query"},
                    {"type": "string", "description": "Last date (YYYY-MM-DD)", "name": "end", "in": "query"},
                    {"type": "string", "default": "day", "description": "day, week or month", "name": "granularity", "in": "query"},
                    {"type": "string", "description": "cumulative or flow", "name": "kind", "in": "query"},
                    {"type": "boolean", "description": "Overlay peak detection", "name": "peaks", "in": "query"},
                    {"type": "string", "default": "png", "description": "png or svg", "name": "format", "in": "query"},
                    {"type": "integer", "description": "Image width in pixels", "name": "width", "in": "query"},
                    {"type": "integer", "description": "Image height in pixels", "name": "height", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "204": {"description": "No data in range"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/timeseries/{name}/matrix": {
            "get": {
                "description": "Date x series matrix of one metric, optionally limited to a group (e.g. continent), series and date range",
                "produces": ["application/json"],
                "tags": ["timeseries"],
                "summary": "Pivot a time series",
                "parameters": [
                    {"type": "string", "description": "Dataset name", "name": "name", "in": "path", "required": true},
                    {"type": "string", "description": "Metric column", "name": "metric", "in": "query", "required": true},
                    {"type": "string", "description": "Only series of this group", "name": "group", "in": "query"},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "Series keys", "name": "series", "in": "query"},
                    {"type": "string", "description": "First date (YYYY-MM-DD)", "name": "start", "in": "query"},
                    {"type": "string", "description": "Last date (YYYY-MM-DD)", "name": "end", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Matrix"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/timeseries/{name}/export": {
            "post": {
                "description": "Aggregates with the same query parameters as aggregate and writes the rows to a .csv, .json or .parquet file and/or the sqlite export tables",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["timeseries"],
                "summary": "Export an aggregation",
                "parameters": [
                    {"type": "string", "description": "Dataset name", "name": "name", "in": "path", "required": true},
                    {"type": "string", "description": "Metric column", "name": "metric", "in": "query", "required": true},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "Series keys", "name": "series", "in": "query"},
                    {"type": "string", "description": "First date (YYYY-MM-DD)", "name": "start", "in": "query"},
                    {"type": "string", "description": "Last date (YYYY-MM-DD)", "name": "end", "in": "query"},
                    {"type": "string", "description": "day, week or month", "name": "granularity", "in": "query"},
                    {"type": "string", "description": "cumulative or flow", "name": "kind", "in": "query"},
                    {"type": "boolean", "description": "Include derivatives", "name": "peaks", "in": "query"},
                    {"description": "Export targets", "name": "export", "in": "body", "schema": {"$ref": "#/definitions/handler.ExportRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ExportResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.ExportResponse"}}
                }
            }
        },
        "/tables/{name}/melt": {
            "get": {
                "description": "Unpivots every column but the id column, e.g. the nutrients of one cereal",
                "produces": ["application/json"],
                "tags": ["tables"],
                "summary": "Melt a table",
                "parameters": [
                    {"type": "string", "description": "Dataset name", "name": "name", "in": "path", "required": true},
                    {"type": "string", "default": "name", "description": "Id column", "name": "id", "in": "query"},
                    {"type": "string", "description": "Filter column", "name": "column", "in": "query"},
                    {"type": "string", "description": "Keep rows whose filter column equals this value", "name": "value", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.MeltResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/tables/{name}/melt/chart": {
            "get": {
                "produces": ["image/png", "image/svg+xml"],
                "tags": ["tables"],
                "summary": "Chart a melted table",
                "parameters": [
                    {"type": "string", "description": "Dataset name", "name": "name", "in": "path", "required": true},
                    {"type": "string", "default": "name", "description": "Id column", "name": "id", "in": "query"},
                    {"type": "string", "description": "Filter column", "name": "column", "in": "query"},
                    {"type": "string", "description": "Filter value", "name": "value", "in": "query"},
                    {"type": "string", "default": "png", "description": "png or svg", "name": "format", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "204": {"description": "Nothing numeric to plot"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/tables/{name}/counts": {
            "get": {
                "description": "Optionally keeps rows whose filter_column is one of in, and rows whose range_column lies in [min, max], before counting",
                "produces": ["application/json"],
                "tags": ["tables"],
                "summary": "Value counts of a table column",
                "parameters": [
                    {"type": "string", "description": "Dataset name", "name": "name", "in": "path", "required": true},
                    {"type": "string", "description": "Column to count", "name": "column", "in": "query", "required": true},
                    {"type": "string", "description": "Membership filter column", "name": "filter_column", "in": "query"},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "Accepted values of filter_column", "name": "in", "in": "query"},
                    {"type": "string", "description": "Numeric range filter column", "name": "range_column", "in": "query"},
                    {"type": "number", "description": "Range minimum, default the column minimum", "name": "min", "in": "query"},
                    {"type": "number", "description": "Range maximum, default the column maximum", "name": "max", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.CountsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/tables/{name}/counts/chart": {
            "get": {
                "produces": ["image/png", "image/svg+xml"],
                "tags": ["tables"],
                "summary": "Chart value counts",
                "parameters": [
                    {"type": "string", "description": "Dataset name", "name": "name", "in": "path", "required": true},
                    {"type": "string", "description": "Column to count", "name": "column", "in": "query", "required": true},
                    {"type": "string", "description": "Membership filter column", "name": "filter_column", "in": "query"},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "description": "Accepted values of filter_column", "name": "in", "in": "query"},
                    {"type": "string", "description": "Numeric range filter column", "name": "range_column", "in": "query"},
                    {"type": "number", "description": "Range minimum", "name": "min", "in": "query"},
                    {"type": "number", "description": "Range maximum", "name": "max", "in": "query"},
                    {"type": "integer", "default": 20, "description": "Most frequent values to draw", "name": "limit", "in": "query"},
                    {"type": "string", "default": "png", "description": "png or svg", "name": "format", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "204": {"description": "No rows left after filtering"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/tables/{name}/unique": {
            "get": {
                "produces": ["application/json"],
                "tags": ["tables"],
                "summary": "Distinct values of a table column",
                "parameters": [
                    {"type": "string", "description": "Dataset name", "name": "name", "in": "path", "required": true},
                    {"type": "string", "description": "Column", "name": "column", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.UniqueResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/cache/bust": {
            "post": {
                "description": "The next request reloads its dataset from the source",
                "tags": ["system"],
                "summary": "Bust the cache",
                "responses": {"204": {"description": "Cache cleared"}}
            }
        },
        "/exports": {
            "get": {
                "produces": ["application/json"],
                "tags": ["exports"],
                "summary": "List exports",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/store.ExportRecord"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/exports/{id}/rows": {
            "get": {
                "produces": ["application/json"],
                "tags": ["exports"],
                "summary": "Rows of a database export",
                "parameters": [
                    {"type": "string", "description": "Export ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.AggregatedRow"}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/exports/{id}/{file}": {
            "get": {
                "produces": ["application/octet-stream"],
                "tags": ["exports"],
                "summary": "Download an exported file",
                "parameters": [
                    {"type": "string", "description": "Export ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "File name", "name": "file", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "handler.AggregateResponse": {
            "type": "object",
            "properties": {
                "dataset": {"type": "string"},
                "request": {"$ref": "#/definitions/model.AggregationRequest"},
                "rows": {"type": "array", "items": {"$ref": "#/definitions/model.AggregatedRow"}},
                "last": {"type": "array", "items": {"$ref": "#/definitions/model.AggregatedRow"}}
            }
        },
        "handler.DatasetResponse": {
            "type": "object",
            "properties": {
                "dataset": {"$ref": "#/definitions/model.Dataset"},
                "columns": {"type": "array", "items": {"type": "string"}},
                "rows": {"type": "integer"},
                "rejected": {"type": "integer"},
                "load": {"type": "object"}
            }
        },
        "handler.SeriesResponse": {
            "type": "object",
            "properties": {
                "dataset": {"type": "string"},
                "scope": {"type": "string"},
                "group": {"type": "string"},
                "series": {"type": "array", "items": {"type": "string"}},
                "metrics": {"type": "array", "items": {"type": "string"}},
                "first": {"type": "string"},
                "last": {"type": "string"}
            }
        },
        "handler.ExportRequest": {
            "type": "object",
            "properties": {
                "file": {"type": "string", "example": "covid_weekly.parquet"},
                "db": {"type": "boolean"}
            }
        },
        "handler.ExportResponse": {
            "type": "object",
            "properties": {
                "rows": {"type": "integer"},
                "results": {"type": "array", "items": {"$ref": "#/definitions/model.ExportResult"}},
                "links": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "handler.MeltResponse": {
            "type": "object",
            "properties": {
                "dataset": {"type": "string"},
                "id": {"type": "string"},
                "rows": {"type": "array", "items": {"$ref": "#/definitions/model.MeltRow"}}
            }
        },
        "handler.CountsResponse": {
            "type": "object",
            "properties": {
                "dataset": {"type": "string"},
                "column": {"type": "string"},
                "rows": {"type": "integer"},
                "counts": {"type": "array", "items": {"$ref": "#/definitions/model.CountRow"}}
            }
        },
        "handler.UniqueResponse": {
            "type": "object",
            "properties": {
                "dataset": {"type": "string"},
                "column": {"type": "string"},
                "values": {"type": "array", "items": {"type": "string"}}
            }
        },
        "model.AggregatedRow": {
            "type": "object",
            "properties": {
                "period_start": {"type": "string"},
                "series_key": {"type": "string"},
                "value": {"type": "number"},
                "derivative": {"type": "number"}
            }
        },
        "model.AggregationRequest": {
            "type": "object",
            "properties": {
                "start": {"type": "string"},
                "end": {"type": "string"},
                "series_keys": {"type": "array", "items": {"type": "string"}},
                "granularity": {"type": "string"},
                "metric": {"type": "string"},
                "metric_kind": {"type": "string"},
                "peak_detection": {"type": "boolean"}
            }
        },
        "model.CountRow": {
            "type": "object",
            "properties": {
                "value": {"type": "string"},
                "count": {"type": "integer"}
            }
        },
        "model.MeltRow": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "variable": {"type": "string"},
                "value": {}
            }
        },
        "model.Matrix": {
            "type": "object",
            "properties": {
                "metric": {"type": "string"},
                "dates": {"type": "array", "items": {"type": "string"}},
                "columns": {"type": "array", "items": {"type": "string"}},
                "values": {"type": "array", "items": {"type": "array", "items": {"type": "number"}}}
            }
        },
        "model.Dataset": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "kind": {"type": "string"},
                "source": {"type": "string"},
                "separator": {"type": "string"},
                "seriesColumn": {"type": "string"},
                "dateColumn": {"type": "string"},
                "groupColumn": {"type": "string"},
                "groups": {"type": "array", "items": {"type": "string"}}
            }
        },
        "model.ExportResult": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "type": {"type": "string"},
                "path": {"type": "string"},
                "record_count": {"type": "integer"},
                "success": {"type": "boolean"},
                "error": {"type": "string"},
                "timestamp": {"type": "string"}
            }
        },
        "pipeline.Status": {
            "type": "object",
            "properties": {
                "dataset": {"$ref": "#/definitions/model.Dataset"},
                "loaded": {"type": "boolean"},
                "rows": {"type": "integer"},
                "rejected": {"type": "integer"},
                "loaded_at": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "store.ExportRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "dataset": {"type": "string"},
                "type": {"type": "string"},
                "path": {"type": "string"},
                "record_count": {"type": "integer"},
                "success": {"type": "boolean"},
                "error": {"type": "string"},
                "timestamp": {"type": "string"}
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
	Title:            "Data Dashboard API",
	Description:      "Aggregated time series, tables and charts for small data dashboards.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
