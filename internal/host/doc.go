// Package host defines what bufpick needs from the chat client it drives:
// listing buffers, naming the current one, switching to a buffer, and
// optionally printing a notice to the user.
//
// The weechat subpackage implements Host over WeeChat's relay HTTP API.
// MockHost is an in-memory implementation for tests.
package host
