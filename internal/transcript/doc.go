// Package transcript provides filesystem-backed storage for chat
// transcripts and the chat index.
package transcript

import "github.com/user/hutch/internal/types"

// Compile-time interface compliance checks.
var _ types.TranscriptStore = (*Store)(nil)
var _ types.ChatStore = (*ChatStore)(nil)
