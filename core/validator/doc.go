// Package validator provides payload validation for gateway routes.
//
// Routes reference validators by name; the dispatcher runs the resolved
// Func against the decoded payload map before the handler executes, and
// a *ValidationError return surfaces as a 422 with per-field messages.
//
//	func createNote(payload map[string]any) error {
//		c := validator.NewCheck(payload)
//		c.RequireString("title", 1, 200)
//		c.RequireString("body", 1, 10000)
//		return c.Err()
//	}
package validator
