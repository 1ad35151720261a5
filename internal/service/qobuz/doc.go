// Package qobuz resolves Qobuz catalog references, fetches their tracks into a
// per-request staging tree and hands finished folders or archives to a delivery backend.
package qobuz
