// Package gigachat is the LLM gateway: a credential cache for the GigaChat
// OAuth token endpoint plus a chat-completion client.
//
// # Credential lifecycle
//
// The OAuth endpoint issues short-lived bearer tokens. CredentialCache keeps
// exactly one Credential for the whole process and refreshes it lazily: the
// first Token call that observes expiry performs the issuance, and concurrent
// callers in the same expired window share that single in-flight call via
// singleflight. A failed refresh returns ErrAuth and never clobbers the
// previously cached credential.
//
// # Completions
//
// Client.Ask wraps a question in the fixed study-assistant system prompt and
// posts it to /chat/completions with the cached bearer token and fresh
// X-Request-ID / X-Session-ID correlation headers. Failures are recovered
// locally: Ask always returns a user-presentable string (FallbackAnswer on
// error) plus the underlying error for logging, so nothing model-related ever
// escapes to the chat user.
package gigachat
