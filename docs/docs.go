// Package docs registers the OpenAPI description served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/tournaments": {
            "get": {"tags": ["tournaments"], "summary": "List tournaments", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["tournaments"], "summary": "Create a tournament", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "422": {"description": "Invalid scoring"}}}
        },
        "/tournaments/{tournamentID}": {
            "get": {"tags": ["tournaments"], "summary": "Get a tournament with its categories", "parameters": [{"$ref": "#/parameters/tournamentID"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}
        },
        "/tournaments/{tournamentID}/archive": {
            "get": {"tags": ["tournaments"], "summary": "Link to the final results export", "parameters": [{"$ref": "#/parameters/tournamentID"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not archived"}}}
        },
        "/categories": {
            "get": {"tags": ["categories"], "summary": "List categories", "parameters": [{"name": "tournament_id", "in": "query", "type": "integer", "required": true}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["categories"], "summary": "Create a category", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "409": {"description": "Name taken or registration closed"}}}
        },
        "/tournaments/{tournamentID}/pairs": {
            "get": {"tags": ["pairs"], "summary": "List pairs", "parameters": [{"$ref": "#/parameters/tournamentID"}, {"name": "category_id", "in": "query", "type": "integer"}, {"name": "status", "in": "query", "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["pairs"], "summary": "Enroll a pair", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/tournamentID"}], "responses": {"201": {"description": "Created"}, "409": {"description": "Duplicate or registration closed"}}}
        },
        "/tournaments/{tournamentID}/pairs/{pairID}/status": {
            "patch": {"tags": ["pairs"], "summary": "Confirm, reject or withdraw a pair", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/tournamentID"}, {"name": "pairID", "in": "path", "type": "integer", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/tournaments/{tournamentID}/zones": {
            "get": {"tags": ["zones"], "summary": "List zones with their matches", "parameters": [{"$ref": "#/parameters/tournamentID"}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["zones"], "summary": "Delete all zones", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/tournamentID"}, {"$ref": "#/parameters/confirm"}], "responses": {"204": {"description": "Deleted"}, "409": {"description": "Confirmation required or wrong phase"}}}
        },
        "/tournaments/{tournamentID}/zones/generate": {
            "post": {"tags": ["zones"], "summary": "Compose zones and fixtures", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/tournamentID"}, {"name": "regenerate", "in": "query", "type": "boolean"}, {"$ref": "#/parameters/confirm"}], "responses": {"201": {"description": "Created"}, "409": {"description": "Already generated or busy"}, "422": {"description": "Not enough pairs"}}}
        },
        "/tournaments/{tournamentID}/zones/{zoneID}/standings": {
            "get": {"tags": ["zones"], "summary": "Zone table", "parameters": [{"$ref": "#/parameters/tournamentID"}, {"$ref": "#/parameters/zoneID"}], "responses": {"200": {"description": "OK"}}}
        },
        "/tournaments/{tournamentID}/zones/{zoneID}/fixture": {
            "post": {"tags": ["zones"], "summary": "Generate the zone fixture", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/tournamentID"}, {"$ref": "#/parameters/zoneID"}], "responses": {"201": {"description": "Created"}}},
            "delete": {"tags": ["zones"], "summary": "Delete the zone fixture", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/tournamentID"}, {"$ref": "#/parameters/zoneID"}, {"$ref": "#/parameters/confirm"}], "responses": {"204": {"description": "Deleted"}}}
        },
        "/tournaments/{tournamentID}/playoffs": {
            "get": {"tags": ["playoffs"], "summary": "Bracket matches", "parameters": [{"$ref": "#/parameters/tournamentID"}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["playoffs"], "summary": "Delete the bracket", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/tournamentID"}, {"$ref": "#/parameters/confirm"}], "responses": {"204": {"description": "Deleted"}}}
        },
        "/tournaments/{tournamentID}/playoffs/generate": {
            "post": {"tags": ["playoffs"], "summary": "Build the bracket from zone standings", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/tournamentID"}, {"name": "regenerate", "in": "query", "type": "boolean"}, {"$ref": "#/parameters/confirm"}], "responses": {"201": {"description": "Created"}, "409": {"description": "Unconfirmed group matches"}}}
        },
        "/tournaments/{tournamentID}/matches": {
            "get": {"tags": ["matches"], "summary": "All matches", "parameters": [{"$ref": "#/parameters/tournamentID"}], "responses": {"200": {"description": "OK"}}}
        },
        "/tournaments/{tournamentID}/matches/{matchID}/result": {
            "post": {"tags": ["matches"], "summary": "Record a score", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/tournamentID"}, {"$ref": "#/parameters/matchID"}], "responses": {"200": {"description": "OK"}, "409": {"description": "Already confirmed"}, "422": {"description": "Invalid score"}}}
        },
        "/tournaments/{tournamentID}/matches/{matchID}/confirm": {
            "post": {"tags": ["matches"], "summary": "Confirm a reported score", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/tournamentID"}, {"$ref": "#/parameters/matchID"}], "responses": {"200": {"description": "OK"}, "409": {"description": "Already confirmed"}}}
        },
        "/tournaments/{tournamentID}/matches/{matchID}/rollback": {
            "post": {"tags": ["matches"], "summary": "Reopen a confirmed score", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/tournamentID"}, {"$ref": "#/parameters/matchID"}, {"$ref": "#/parameters/confirm"}], "responses": {"200": {"description": "OK"}}}
        },
        "/tournaments/{tournamentID}/matches/{matchID}/walkover": {
            "post": {"tags": ["matches"], "summary": "Award a walkover", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/tournamentID"}, {"$ref": "#/parameters/matchID"}], "responses": {"200": {"description": "OK"}}}
        },
        "/tournaments/{tournamentID}/courts": {
            "get": {"tags": ["schedule"], "summary": "List courts", "parameters": [{"$ref": "#/parameters/tournamentID"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["schedule"], "summary": "Create a court", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/tournamentID"}], "responses": {"201": {"description": "Created"}}}
        },
        "/tournaments/{tournamentID}/courts/{courtID}": {
            "delete": {"tags": ["schedule"], "summary": "Delete a court", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/tournamentID"}, {"name": "courtID", "in": "path", "type": "integer", "required": true}], "responses": {"204": {"description": "Deleted"}}}
        },
        "/tournaments/{tournamentID}/slots": {
            "get": {"tags": ["schedule"], "summary": "List slots", "parameters": [{"$ref": "#/parameters/tournamentID"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["schedule"], "summary": "Generate slots for one day", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/tournamentID"}], "responses": {"201": {"description": "Created"}}}
        },
        "/tournaments/{tournamentID}/schedule": {
            "delete": {"tags": ["schedule"], "summary": "Clear unplayed assignments", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/tournamentID"}], "responses": {"200": {"description": "OK"}}}
        },
        "/tournaments/{tournamentID}/schedule/auto": {
            "post": {"tags": ["schedule"], "summary": "Assign ready matches to free slots", "security": [{"BearerAuth": []}], "parameters": [{"$ref": "#/parameters/tournamentID"}], "responses": {"200": {"description": "OK"}}}
        }
    },
    "parameters": {
        "tournamentID": {"name": "tournamentID", "in": "path", "type": "integer", "required": true},
        "zoneID": {"name": "zoneID", "in": "path", "type": "integer", "required": true},
        "matchID": {"name": "matchID", "in": "path", "type": "integer", "required": true},
        "confirm": {"name": "confirm", "in": "query", "type": "boolean"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Padel Tournament API",
	Description:      "Zones, fixtures, playoffs and court scheduling for padel tournaments.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
