// Package core implements the request execution engine shared by every
// Kafeido API resource: transport, retry with exponential backoff,
// streaming response decoding, and error classification.
//
// Resource packages build one [Request] per logical call and hand it to
// [Do], [DoStream], or [DoAsync]. All retry and error-mapping policy
// lives here; resource code never retries or reclassifies.
package core
