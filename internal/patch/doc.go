// Package patch reads the textual patch format into an expression tree.
//
// A patch is a sequence of statements, each either an assignment
// (`name = expr`) or a bare expression. Expressions are numbers,
// identifiers, or calls such as `Saw(440, 0.5)`. Tokens are produced by the
// HCL native-syntax lexer, so comments (`#`, `//`, `/* */`), newlines and
// source ranges behave the same way they do in HCL files.
//
// The package knows nothing about node kinds or arity; that is the
// compiler's job. It only guarantees the tree is syntactically well formed.
package patch
