// Package api handles incoming HTTP requests, request validation and
// response formatting for the user, avatar and task endpoints. It translates
// between HTTP and the services in internal/service.
//
// Error responses follow one mapping (see MapErrorToStatusCode):
// validation problems are 400 with {"error": "<field>: <message>"}, token
// problems are 401 {"error":"Please authenticate"}, missing or foreign
// resources are 404 with an empty body, and anything else is 500 with an
// empty body.
package api
