// Package token defines lexical token kinds and trivia for ownership scripts.
// Invariants:
//   - Token.Text is the exact source text covered by Token.Span.
//   - Attributes are lexed as '@' (Kind: At) + Ident; no per-attribute token kinds.
//   - Type names (i32, String, usize, ...) are identifiers resolved by sema.
//   - Expectation comments (//~ ...) are kept as TriviaExpect and never appear
//     in the main token stream.
package token
