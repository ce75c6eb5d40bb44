// Package model defines the provider-agnostic abstractions and concrete
// helpers for interacting with language models inside finbrief.
//
// Core goals:
//   - Unify streaming + non-streaming generation behind a single interface
//   - Normalize tool / function declaration (ToolDefinition)
//   - Keep request/response shapes minimal and transport independent
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (Groq, Anthropic, Ollama) implement the Model interface from
// this package so higher layers (agents, the runner) remain decoupled from
// vendor SDKs.
package model
