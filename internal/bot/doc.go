// Package bot is the interaction controller between the messaging transport
// and the rest of the system.
//
// Inbound transport updates arrive as normalized Events (commands, callback
// presses, free text). The controller routes them: commands open the subject
// selection flow or list stored resources, callback presses drive the
// selection state machine with a full keyboard re-render after every change,
// and free text goes to the assistant behind an immediate acknowledgement.
//
// Every recoverable failure turns into a deterministic Russian user message
// plus a structured log entry; nothing is silently swallowed.
package bot
