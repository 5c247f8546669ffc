package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "ExamDesk API",
        "description": "Batch session administration for the ExamDesk dashboard",
        "version": "0.3.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Operator login"},
        {"name": "Sessions", "description": "Exam session reads and exports"},
        {"name": "Selection", "description": "Per-operator selection workflow"},
        {"name": "Batch", "description": "Confirm-and-dispatch batch mutations"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate operator",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current operator",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions": {
            "get": {
                "tags": ["Sessions"],
                "summary": "List exam sessions",
                "parameters": [
                    {"name": "category", "in": "query", "type": "string"},
                    {"name": "track", "in": "query", "type": "string"},
                    {"name": "location", "in": "query", "type": "string"},
                    {"name": "date_from", "in": "query", "type": "string"},
                    {"name": "date_to", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/aggregates": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Per-category session counts",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/candidates": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Sessions that may serve as prerequisites",
                "parameters": [
                    {"name": "category", "in": "query", "type": "string"},
                    {"name": "location", "in": "query", "type": "string"},
                    {"name": "date_from", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/export": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Export the filtered session listing",
                "parameters": [
                    {"name": "format", "in": "query", "required": true, "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Rendered document"}
                }
            }
        },
        "/sessions/{id}/bookings": {
            "get": {
                "tags": ["Sessions"],
                "summary": "List a session's bookings",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sessions/{id}/prerequisites": {
            "get": {
                "tags": ["Sessions"],
                "summary": "Qualifying membership of a debrief session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Batch"],
                "summary": "Replace a debrief session's qualifying membership",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PrerequisitesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/selection/{mode}": {
            "get": {
                "tags": ["Selection"],
                "summary": "Current selection state",
                "parameters": [
                    {"name": "mode", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/selection/{mode}/enter": {
            "post": {
                "tags": ["Selection"],
                "summary": "Enter a selection mode",
                "parameters": [
                    {"name": "mode", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Another mode is active"}
                }
            }
        },
        "/selection/{mode}/exit": {
            "post": {
                "tags": ["Selection"],
                "summary": "Exit a selection mode",
                "parameters": [
                    {"name": "mode", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/selection/{mode}/toggle": {
            "post": {
                "tags": ["Selection"],
                "summary": "Toggle one entity in the working set",
                "parameters": [
                    {"name": "mode", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ToggleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/selection/{mode}/select-all": {
            "post": {
                "tags": ["Selection"],
                "summary": "Select every listed selectable candidate",
                "parameters": [
                    {"name": "mode", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SelectAllRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/selection/{mode}/clear": {
            "post": {
                "tags": ["Selection"],
                "summary": "Empty the working set",
                "parameters": [
                    {"name": "mode", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/selection/{mode}/confirm": {
            "post": {
                "tags": ["Selection"],
                "summary": "Advance to the confirming phase",
                "parameters": [
                    {"name": "mode", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batch/preview": {
            "post": {
                "tags": ["Batch"],
                "summary": "Classify a pending operation",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PreviewRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batch/clone": {
            "post": {
                "tags": ["Batch"],
                "summary": "Duplicate the selected sessions onto a target date",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CloneRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "No eligible entities"}
                }
            }
        },
        "/batch/edit": {
            "post": {
                "tags": ["Batch"],
                "summary": "Apply one sparse patch to the selected sessions",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EditRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "No eligible entities"}
                }
            }
        },
        "/batch/delete": {
            "post": {
                "tags": ["Batch"],
                "summary": "Archive the selected zero-booking sessions",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DeleteRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "No eligible entities"}
                }
            }
        },
        "/batch/attendance": {
            "post": {
                "tags": ["Batch"],
                "summary": "Apply one attendance action to the selected bookings",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AttendanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/batch/cancel": {
            "post": {
                "tags": ["Batch"],
                "summary": "Cancel the selected bookings",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CancelRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "ExamSession": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "category": {"type": "string", "enum": ["theory", "practical", "simulation", "debrief"]},
                "track": {"type": "string"},
                "date": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "location": {"type": "string"},
                "capacity": {"type": "integer"},
                "activation_state": {"type": "string", "enum": ["active", "inactive", "scheduled"]},
                "activation_at": {"type": "string"},
                "booked_count": {"type": "integer"}
            }
        },
        "OverrideInput": {
            "type": "object",
            "description": "Sparse patch; empty or __keep__ leaves a field untouched, __clear__ empties it",
            "properties": {
                "track": {"type": "string"},
                "date": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "location": {"type": "string"},
                "capacity": {"type": "string"},
                "activation_state": {"type": "string"},
                "activation_at": {"type": "string"}
            }
        },
        "PreviewRequest": {
            "type": "object",
            "properties": {
                "operation": {"type": "string"},
                "session_ids": {"type": "array", "items": {"type": "string"}},
                "booking_ids": {"type": "array", "items": {"type": "string"}},
                "override": {"$ref": "#/definitions/OverrideInput"},
                "target_date": {"type": "string"}
            },
            "required": ["operation"]
        },
        "CloneRequest": {
            "type": "object",
            "properties": {
                "session_ids": {"type": "array", "items": {"type": "string"}},
                "target_date": {"type": "string"},
                "override": {"$ref": "#/definitions/OverrideInput"},
                "confirm_count": {"type": "string"}
            },
            "required": ["target_date", "confirm_count"]
        },
        "EditRequest": {
            "type": "object",
            "properties": {
                "session_ids": {"type": "array", "items": {"type": "string"}},
                "override": {"$ref": "#/definitions/OverrideInput"},
                "confirm_count": {"type": "string"}
            },
            "required": ["override", "confirm_count"]
        },
        "DeleteRequest": {
            "type": "object",
            "properties": {
                "session_ids": {"type": "array", "items": {"type": "string"}},
                "confirm_count": {"type": "string"}
            },
            "required": ["confirm_count"]
        },
        "AttendanceRequest": {
            "type": "object",
            "properties": {
                "booking_ids": {"type": "array", "items": {"type": "string"}},
                "action": {"type": "string", "enum": ["mark_attended", "mark_no_show", "unmark"]},
                "confirm_count": {"type": "string"}
            },
            "required": ["action", "confirm_count"]
        },
        "CancelRequest": {
            "type": "object",
            "properties": {
                "booking_ids": {"type": "array", "items": {"type": "string"}},
                "refund_tokens": {"type": "boolean"},
                "confirm_count": {"type": "string"}
            },
            "required": ["confirm_count"]
        },
        "PrerequisitesRequest": {
            "type": "object",
            "properties": {
                "current_ids": {"type": "array", "items": {"type": "string"}}
            }
        },
        "ToggleRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "string"}
            },
            "required": ["id"]
        },
        "SelectAllRequest": {
            "type": "object",
            "properties": {
                "ids": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["ids"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
