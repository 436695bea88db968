// Package notes implements user-owned note CRUD, exposed both as HTTP
// endpoints under /notes and as note:* websocket events. All operations
// are scoped to the authenticated owner.
package notes
