// Package utils provides shared low-level helpers used throughout the askpage
// internals. It covers the streaming HTTP request helper and SSE record
// scanner that the provider adapters and the stream normalizer are built on,
// plus small string utilities for safe log output.
//
// Key entry points: [DoPostStream] together with [SSEScanner] for Server-Sent
// Events streaming, and [TruncateString] for bounding logged payloads.
package utils
