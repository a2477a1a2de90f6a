package rubrics

import "testing"

func testContext() *Context {
	return &Context{
		Version:      "Rubrics 1960",
		FallbackLang: "Latin",
		DayOfWeek:    0,
		Hora:         "Laudes",
		Season:       "Adventus",
		Office:       "Dominica I Adventus",
	}
}

func TestSatisfiesEmptyCondition(t *testing.T) {
	ctx := testContext()
	if !ctx.Satisfies("") {
		t.Error("empty condition should be vacuously true")
	}
	if !ctx.Satisfies("   ") {
		t.Error("blank condition should be vacuously true")
	}
}

func TestSatisfiesSubjectDefaults(t *testing.T) {
	ctx := testContext()
	ctx.Season = "Paschæ"

	// Subject omitted: predicate applies to "tempore".
	if !ctx.Satisfies("paschali") {
		t.Error("bare 'paschali' should match the paschal season")
	}
	if !ctx.Satisfies("tempore paschali") {
		t.Error("'tempore paschali' should match the paschal season")
	}
	ctx.Season = "Adventus"
	if ctx.Satisfies("paschali") {
		t.Error("'paschali' should not match Advent")
	}
}

func TestSatisfiesKnownPredicates(t *testing.T) {
	ctx := testContext()
	ctx.Version = "Tridentine - 1570"
	if !ctx.Satisfies("rubrica tridentina") {
		t.Error("tridentina should match a Tridentine version")
	}
	if ctx.Satisfies("rubrica monastica") {
		t.Error("monastica should not match a Tridentine version")
	}

	ctx.Version = "Divino Afflatu"
	if !ctx.Satisfies("rubrica summorum pontificum") {
		t.Error("summorum pontificum should match Divino Afflatu")
	}

	ctx.MissaNumber = "2"
	if !ctx.Satisfies("missa secunda") {
		t.Error("missa secunda should match mass number 2")
	}
	if ctx.Satisfies("missa prima") {
		t.Error("missa prima should not match mass number 2")
	}
}

func TestSatisfiesCaseInsensitive(t *testing.T) {
	ctx := testContext()
	ctx.Version = "Monastic Divino"
	if !ctx.Satisfies("rubrica MONASTICA") {
		t.Error("predicate names should be case-insensitive")
	}
	if !ctx.Satisfies("rubrica divino") {
		t.Error("pattern fallback should be case-insensitive")
	}
}

func TestSatisfiesOrShortCircuit(t *testing.T) {
	ctx := testContext()
	if !ctx.Satisfies("tempore paschali aut Adventus") {
		t.Error("second alternative should satisfy the disjunction")
	}
	if ctx.Satisfies("tempore paschali aut post septuagesimam") {
		t.Error("neither alternative holds in Advent")
	}
}

func TestSatisfiesNisiExtendsRightward(t *testing.T) {
	// "a et nisi b et c": a and b hold, c does not. The negation covers both
	// b and c, so the negated b makes the whole chain false.
	ctx := testContext()
	ctx.Version = "Rubrics 1960"
	ctx.Season = "Adventus"
	ctx.Hora = "Laudes"

	if ctx.Satisfies("rubrica 1960 et nisi Adventus et officio Vigilia") {
		t.Error("negated matching term should fail the chain")
	}
	// With the middle term not matching, its negation passes, but the final
	// (also negated) matching term fails the chain.
	if ctx.Satisfies("rubrica 1960 et nisi tempore paschali et officio Adventus") {
		t.Error("negation should extend to the final term")
	}
	// Both negated terms false: chain holds.
	if !ctx.Satisfies("rubrica 1960 et nisi tempore paschali et officio Vigilia") {
		t.Error("chain with only false negated terms should hold")
	}
}

func TestSatisfiesFeriaAndAd(t *testing.T) {
	ctx := testContext()
	ctx.DayOfWeek = 3 // Wednesday
	if !ctx.Satisfies("feria 4") {
		t.Error("feria should expose the 1-based weekday")
	}

	if !ctx.Satisfies("ad Laudes") {
		t.Error("'ad' should resolve to the current hour outside mass")
	}
	ctx.MissaNumber = "1"
	if !ctx.Satisfies("ad missam") {
		t.Error("'ad' should resolve to 'missam' in a mass context")
	}
}

func TestSatisfiesMalformedPattern(t *testing.T) {
	ctx := testContext()
	// An unregistered predicate that is not a valid regex is treated as
	// vacuously true rather than dropping content.
	if !ctx.Satisfies("die [unclosed") {
		t.Error("malformed pattern predicate should evaluate true")
	}
}

func TestSubjectValueUnknownSubject(t *testing.T) {
	ctx := testContext()
	if got := ctx.subjectValue("ignotum"); got != "ignotum" {
		t.Errorf("unknown subject should evaluate to itself, got %q", got)
	}
}
