/*
Package rubrics evaluates the condition language embedded in liturgical data
files. A condition such as "rubrica monastica et tempore paschali" is an OR of
AND-chains ("aut" / "et"), where "nisi" flips the polarity of the rest of its
chain. Each term names a subject from a small closed vocabulary (defaulting to
"tempore" when omitted) and a predicate that is either looked up in a fixed
table or, for unknown names, matched as a case-insensitive pattern against the
subject's value.

Conditions are evaluated against a Context, built once per render request from
the rubric version, the calendar day and the office being rendered.
*/
package rubrics
