// Package clientip extracts the originating client IP from HTTP requests.
//
// Headers are consulted in priority order: CF-Connecting-IP (Cloudflare),
// DO-Connecting-IP (DigitalOcean), X-Forwarded-For (left-most entry),
// X-Real-IP, then the raw socket address. The result feeds rate-limit keys,
// presence entries, and security logging, so invalid header values are
// skipped rather than trusted.
package clientip
