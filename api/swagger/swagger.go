package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "sTrack Roster API",
        "description": "Student roster: filtered, sorted and incrementally revealed views, CSV/PDF export and permission-gated edits",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Sessions and admin mode"},
        {"name": "Roster", "description": "Derived roster views and exports"},
        {"name": "Students", "description": "Roster records"}
    ],
    "paths": {
        "/health": {
            "get": {"summary": "Health check", "responses": {"200": {"description": "OK"}}}
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {"200": {"description": "Ready"}, "503": {"description": "A dependency is unreachable"}}
            }
        },
        "/metrics": {
            "get": {"summary": "Prometheus metrics", "produces": ["text/plain"], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register user",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}],
                "responses": {
                    "201": {"description": "Signed in", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {
                    "200": {"description": "Signed in", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke the current token",
                "security": [{"BearerAuth": []}],
                "responses": {"204": {"description": "Signed out"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/api/v1/auth/admin": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Enter admin mode",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/AdminModeRequest"}}],
                "responses": {
                    "200": {"description": "ADMIN token issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Wrong admin password", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current session and permissions",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/api/v1/roster": {
            "get": {
                "tags": ["Roster"],
                "summary": "Roster view",
                "description": "Sorting by joined ascending lists newest first.",
                "parameters": [
                    {"in": "query", "name": "course", "type": "string"},
                    {"in": "query", "name": "search", "type": "string"},
                    {"in": "query", "name": "sort", "type": "string", "enum": ["name", "course", "joined", "age"]},
                    {"in": "query", "name": "order", "type": "string", "enum": ["asc", "desc"]},
                    {"in": "query", "name": "reveal", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RosterViewEnvelope"}},
                    "400": {"description": "Invalid query", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/roster/export.csv": {
            "get": {
                "tags": ["Roster"],
                "summary": "Download students.csv",
                "produces": ["text/csv"],
                "parameters": [
                    {"in": "query", "name": "course", "type": "string"},
                    {"in": "query", "name": "search", "type": "string"},
                    {"in": "query", "name": "sort", "type": "string"},
                    {"in": "query", "name": "order", "type": "string"}
                ],
                "responses": {"200": {"description": "CSV attachment", "schema": {"type": "file"}}}
            }
        },
        "/api/v1/roster/export.pdf": {
            "get": {
                "tags": ["Roster"],
                "summary": "Download students.pdf",
                "produces": ["application/pdf"],
                "parameters": [
                    {"in": "query", "name": "course", "type": "string"},
                    {"in": "query", "name": "search", "type": "string"},
                    {"in": "query", "name": "sort", "type": "string"},
                    {"in": "query", "name": "order", "type": "string"}
                ],
                "responses": {"200": {"description": "PDF attachment", "schema": {"type": "file"}}}
            }
        },
        "/api/v1/roster/state": {
            "get": {
                "tags": ["Roster"],
                "summary": "View from held state",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RosterViewEnvelope"}},
                    "401": {"description": "Sign in required", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Roster"],
                "summary": "Change held state",
                "description": "Course or search changes reset the reveal count to one page.",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/RosterStateUpdate"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RosterViewEnvelope"}},
                    "400": {"description": "Invalid state", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Sign in required", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Roster"],
                "summary": "Reset held state",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RosterViewEnvelope"}},
                    "401": {"description": "Sign in required", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/roster/state/more": {
            "post": {
                "tags": ["Roster"],
                "summary": "Reveal next page",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RosterViewEnvelope"}},
                    "401": {"description": "Sign in required", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Students"],
                "summary": "Add student",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/StudentPayload"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Sign in required", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student",
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Students"],
                "summary": "Edit student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/StudentPayload"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Admin mode required", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Delete student",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "Deleted"},
                    "403": {"description": "Admin mode required", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/courses": {
            "get": {
                "tags": ["Students"],
                "summary": "Available courses",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 6},
                "full_name": {"type": "string"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "AdminModeRequest": {
            "type": "object",
            "required": ["password"],
            "properties": {"password": {"type": "string"}}
        },
        "Student": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "course": {"type": "string"},
                "joined": {"type": "string", "format": "date-time"},
                "age": {"type": "integer"},
                "profileImage": {"type": "string"}
            }
        },
        "StudentPayload": {
            "type": "object",
            "required": ["name", "email", "course"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "course": {"type": "string"},
                "age": {"type": "integer", "minimum": 16, "maximum": 100, "description": "Optional on create, required on edit"},
                "profileImage": {"type": "string", "format": "uri"}
            }
        },
        "RosterStateUpdate": {
            "type": "object",
            "properties": {
                "course": {"type": "string"},
                "search": {"type": "string"},
                "sortKey": {"type": "string", "enum": ["name", "course", "joined", "age"]},
                "sortDirection": {"type": "string", "enum": ["asc", "desc"]},
                "toggle": {"type": "string", "description": "Flip direction when already sorted by this key, otherwise sort by it ascending"}
            }
        },
        "CourseCount": {
            "type": "object",
            "properties": {
                "course": {"type": "string"},
                "count": {"type": "integer"}
            }
        },
        "RosterView": {
            "type": "object",
            "properties": {
                "students": {"type": "array", "items": {"$ref": "#/definitions/Student"}},
                "hasMore": {"type": "boolean"},
                "total": {"type": "integer"},
                "rosterSize": {"type": "integer"},
                "courseCounts": {"type": "array", "items": {"$ref": "#/definitions/CourseCount"}},
                "ageStats": {
                    "type": "object",
                    "properties": {
                        "average": {"type": "number"},
                        "min": {"type": "integer"},
                        "max": {"type": "integer"}
                    }
                },
                "query": {"type": "object"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "revealed": {"type": "integer"},
                "total": {"type": "integer"},
                "has_more": {"type": "boolean"},
                "next": {"type": "integer"}
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
        },
        "RosterViewEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/RosterView"},
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
