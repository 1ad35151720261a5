// Package delivery hands completed staging folders and files to a delivery backend.
// The Dispatcher bounds every call with a timeout, wraps backend failures
// and removes delivered sources. Three backends are provided:
// a local merge copy, GoFile hosted shares and rclone remote sync.
package delivery
