// Package gofile provides a minimal client for the GoFile hosting API.
// It resolves the account root folder, lists and creates folders
// and streams multipart file uploads with a bearer token.
package gofile
