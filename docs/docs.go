// Package docs registers the OpenAPI description served under /swagger.
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
        "/sessions": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["sessions"], "summary": "List match sessions", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["sessions"], "summary": "Create a match session", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/sessions/{sessionID}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["sessions"], "summary": "Get a match session with participants and schedules",
                "parameters": [{"type": "integer", "name": "sessionID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/sessions/{sessionID}/start": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["sessions"], "summary": "Start a match session",
                "parameters": [{"type": "integer", "name": "sessionID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid state or quorum not met"}, "403": {"description": "Forbidden"}}}
        },
        "/sessions/{sessionID}/complete": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["sessions"], "summary": "Complete a match session",
                "parameters": [{"type": "integer", "name": "sessionID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/sessions/{sessionID}/cancel": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["sessions"], "summary": "Cancel a match session",
                "parameters": [{"type": "integer", "name": "sessionID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/sessions/{sessionID}/join": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["participants"], "summary": "Join a pending match session",
                "parameters": [{"type": "integer", "name": "sessionID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}
        },
        "/sessions/{sessionID}/leave": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["participants"], "summary": "Leave a pending match session",
                "parameters": [{"type": "integer", "name": "sessionID", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}}
        },
        "/sessions/{sessionID}/kick": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["participants"], "summary": "Remove a participant from a session",
                "parameters": [{"type": "integer", "name": "sessionID", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}}
        },
        "/sessions/{sessionID}/schedules": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["sessions"], "summary": "Add a schedule slot to a session",
                "parameters": [{"type": "integer", "name": "sessionID", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}}}
        },
        "/sessions/{sessionID}/invitations": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["invitations"], "summary": "Invite a user to a match session",
                "parameters": [{"type": "integer", "name": "sessionID", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}}
        },
        "/schedules/{scheduleID}/attendance": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["participants"], "summary": "Mark attendance for a schedule slot",
                "parameters": [{"type": "integer", "name": "scheduleID", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["participants"], "summary": "Remove attendance from a schedule slot",
                "parameters": [{"type": "integer", "name": "scheduleID", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}}
        },
        "/invitations": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["invitations"], "summary": "List the caller's invitations", "responses": {"200": {"description": "OK"}}}
        },
        "/invitations/{invitationID}/respond": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["invitations"], "summary": "Accept or decline an invitation",
                "parameters": [{"type": "integer", "name": "invitationID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/invitations/{invitationID}/cancel": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["invitations"], "summary": "Cancel a pending invitation",
                "parameters": [{"type": "integer", "name": "invitationID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/results": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["results"], "summary": "List match results of a player", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["results"], "summary": "Submit a match result", "responses": {"201": {"description": "Created"}}}
        },
        "/results/{resultID}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["results"], "summary": "Get a match result",
                "parameters": [{"type": "integer", "name": "resultID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/results/{resultID}/confirm": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["results"], "summary": "Confirm a match result",
                "parameters": [{"type": "integer", "name": "resultID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "500": {"description": "Settlement failed, retry"}}}
        },
        "/points/me": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["points"], "summary": "Get the caller's points balance", "responses": {"200": {"description": "OK"}}}
        },
        "/points/me/history": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["points"], "summary": "List the caller's point transactions", "responses": {"200": {"description": "OK"}}}
        },
        "/notifications": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["notifications"], "summary": "List the caller's notifications", "responses": {"200": {"description": "OK"}}}
        },
        "/notifications/read-all": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["notifications"], "summary": "Mark all notifications as read", "responses": {"200": {"description": "OK"}}}
        },
        "/notifications/{notificationID}/read": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["notifications"], "summary": "Mark a notification as read",
                "parameters": [{"type": "integer", "name": "notificationID", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}}
        },
        "/users/me": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Get the caller's profile", "responses": {"200": {"description": "OK"}}}
        },
        "/users/me/avatar": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Upload the caller's avatar",
                "consumes": ["multipart/form-data"],
                "parameters": [{"type": "file", "name": "avatar", "in": "formData", "required": true}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/users/{userID}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["users"], "summary": "Get a user's public profile",
                "parameters": [{"type": "integer", "name": "userID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/admin/users": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "List users", "responses": {"200": {"description": "OK"}}}
        },
        "/admin/users/{userID}/status": {
            "patch": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Ban or reinstate a user",
                "parameters": [{"type": "integer", "name": "userID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/admin/stats": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["admin"], "summary": "Community statistics", "responses": {"200": {"description": "OK"}}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Badminton Community API",
	Description:      "Match sessions, invitations, result confirmation, points and ratings.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
