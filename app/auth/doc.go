// Package auth implements account registration, credential login and
// websocket ticket minting on top of the gateway pipeline.
//
// Successful registration or login rotates the caller's session to the
// authenticated user; logout rotates back to a fresh anonymous session.
// Passwords are stored as bcrypt digests. The /auth/ws-ticket endpoint
// mints single-use handshake tickets for the websocket gateway.
package auth
