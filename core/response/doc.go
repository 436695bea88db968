// Package response provides JSON response rendering and structured HTTP
// errors for the gateway.
//
// HTTPError carries a status code, a machine-readable code, and a
// human-readable message; the predefined values cover the statuses the
// request pipeline emits. Error renders any error as a JSON envelope,
// collapsing unknown errors to a generic 500 so internal details never
// reach the client.
package response
