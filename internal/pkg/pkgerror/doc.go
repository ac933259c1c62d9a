// Package pkgerror defines the structured Error that handlers return.
//
// An Error carries a message, a type and a code. The router maps its type to
// an HTTP status and renders its message in the response envelope, so domain
// packages translate their own sentinel errors into an Error at the edge.
package pkgerror
