// Package testutil contains helpers used across tests to reduce boilerplate
// when exercising agents: a deterministic scripted model that replays
// pre-recorded turns, builders for model responses (text, streaming
// fragments, tool calls) and collectors that drain an agent's event and
// error channels. These helpers are intentionally minimal and are not
// intended for production usage.
package testutil
