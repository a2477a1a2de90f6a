/*
Package officium assembles liturgical texts from plain-text data files that
mix literal content with a small directive language: named [Section] blocks
with optional condition guards, inline parenthesized conditionals that can
delete preceding text under a stopword-driven scope discipline, and
"@file:section:substitutions" directives that splice in content from other
files.

The entry point is the Resolver, which parses files through an injected
FileReader, evaluates conditions against a rubrics.Context, expands
inclusions to a bounded fixpoint, layers a fallback language underneath
translations, and caches the result per (version, language, filename) for
the lifetime of the process.
*/
package officium
