// Package telegram adapts the Telegram Bot API to the controller's event and
// transport model. It owns the long-poll loop and dispatches every update on
// its own goroutine; per-user ordering is the controller's concern.
package telegram
