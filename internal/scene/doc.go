// Package scene reads pbrt scene descriptions. A Parser tokenizes the text,
// resolves Include directives, validates parameter lists, and hands each
// Directive to a Target in source order. The Formatter reprints directives
// in canonical form for the reformatting modes.
package scene
