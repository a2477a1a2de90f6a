package officium

import (
	"reflect"
	"testing"
)

func processWithVersion(tb testing.TB, version string, lines []string) ([]string, []omission) {
	tb.Helper()
	ctx := testContext()
	ctx.Version = version
	r := newTestResolver(tb, stubReader{}, ctx)
	return r.processConditionalLines(lines)
}

func TestConditionals_LineVersusChunkScope(t *testing.T) {
	// rubrica monastica is false for a Tridentine version, so the fragment
	// deletes backward. Line scope takes one line, chunk scope the whole
	// contiguous block.
	lineScoped := []string{"first", "second", "(sed rubrica monastica hic versus omittitur) keep-me"}
	got, _ := processWithVersion(t, "Tridentine - 1570", lineScoped)
	if !reflect.DeepEqual(got, []string{"first"}) {
		t.Errorf("line scope should remove only the preceding line, got %q", got)
	}

	chunkScoped := []string{"first", "second", "(sed rubrica monastica) keep-me"}
	got, _ = processWithVersion(t, "Tridentine - 1570", chunkScoped)
	if len(got) != 0 {
		t.Errorf("chunk scope should remove the whole preceding block, got %q", got)
	}
}

func TestConditionals_TrueConditionKeepsPayload(t *testing.T) {
	lines := []string{"first", "(sed rubrica monastica) keep-me"}
	got, omitted := processWithVersion(t, "Monastic Divino", lines)
	if !reflect.DeepEqual(got, []string{"first", "keep-me"}) {
		t.Errorf("true condition should keep the literal payload, got %q", got)
	}
	if len(omitted) != 0 {
		t.Errorf("true condition must not record omissions, got %v", omitted)
	}
}

func TestConditionals_BlankLineBoundsChunk(t *testing.T) {
	lines := []string{"before", "", "in-chunk", "(sed rubrica monastica) x"}
	got, _ := processWithVersion(t, "Tridentine - 1570", lines)
	if !reflect.DeepEqual(got, []string{"before", ""}) {
		t.Errorf("chunk deletion must stop at a blank line, got %q", got)
	}
}

func TestConditionals_DiciturGatesWithoutDeleting(t *testing.T) {
	lines := []string{"first", "(si rubrica monastica dicitur) Alleluja."}
	got, omitted := processWithVersion(t, "Tridentine - 1570", lines)
	if !reflect.DeepEqual(got, []string{"first"}) {
		t.Errorf("false dicitur fragment should drop only its own line, got %q", got)
	}
	if len(omitted) != 0 {
		t.Errorf("dicitur must never delete preceding text, got %v", omitted)
	}

	got, _ = processWithVersion(t, "Monastic Divino", lines)
	if !reflect.DeepEqual(got, []string{"first", "Alleluja."}) {
		t.Errorf("true dicitur fragment should keep its payload, got %q", got)
	}
}

func TestConditionals_StrongFenceBlocksDeletion(t *testing.T) {
	lines := []string{
		"intro",
		"(attamen rubrica monastica) Fortis",
		"more text",
		"(atque rubrica tridentina omittuntur)",
	}
	got, _ := processWithVersion(t, "Monastic Divino", lines)
	want := []string{"intro", "Fortis", "more text"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("a stronger open fence must block chunk deletion:\ngot  %q\nwant %q", got, want)
	}
}

func TestConditionals_WeakFenceClosesAndDeletes(t *testing.T) {
	lines := []string{
		"intro",
		"(sed rubrica monastica) Debilis",
		"more text",
		"(atque rubrica tridentina omittuntur)",
	}
	got, _ := processWithVersion(t, "Monastic Divino", lines)
	if !reflect.DeepEqual(got, []string{"intro"}) {
		t.Errorf("deletion should reach back to a weaker fence and close it, got %q", got)
	}
}

func TestConditionals_LocoMarksOmissionReplaceable(t *testing.T) {
	lines := []string{"the verse", "(sed rubrica monastica loco huius versus omittitur)"}
	got, omitted := processWithVersion(t, "Tridentine - 1570", lines)
	if len(got) != 0 {
		t.Errorf("expected the verse to be deleted, got %q", got)
	}
	if len(omitted) != 1 || !omitted[0].Replaceable {
		t.Fatalf("expected one replaceable omission, got %v", omitted)
	}
	if !reflect.DeepEqual(omitted[0].Lines, []string{"the verse"}) {
		t.Errorf("omission should carry the deleted span, got %q", omitted[0].Lines)
	}
}

func TestConditionals_LiteralParenthesesSurvive(t *testing.T) {
	lines := []string{
		"Laudate Dominum. (Alleluia.)",
		"V. Benedicamus Domino. (In Paschaltide add Alleluia)",
	}
	got, _ := processWithVersion(t, "Rubrics 1960", lines)
	if !reflect.DeepEqual(got, lines) {
		t.Errorf("plain parentheticals must pass through untouched, got %q", got)
	}
}

func TestConditionals_SiRequiresExplicitMarker(t *testing.T) {
	// Without a marker, "si" gates only its own line even on failure.
	lines := []string{"kept line", "(si rubrica monastica) own text"}
	got, omitted := processWithVersion(t, "Tridentine - 1570", lines)
	if !reflect.DeepEqual(got, []string{"kept line"}) {
		t.Errorf("si without marker must not delete backward, got %q", got)
	}
	if len(omitted) != 0 {
		t.Errorf("si without marker recorded omissions: %v", omitted)
	}
}

func TestConditionals_MidLineFragmentSeam(t *testing.T) {
	lines := []string{"Deus (si rubrica monastica dicitur) in adjutorium"}
	got, _ := processWithVersion(t, "Monastic Divino", lines)
	if !reflect.DeepEqual(got, []string{"Deus in adjutorium"}) {
		t.Errorf("stripping a mid-line fragment must not leave doubled spaces, got %q", got)
	}
}

func TestConditionals_MultipleFragmentsPerLine(t *testing.T) {
	// All fragments true: every span is stripped and each strong stopword
	// opens its own fence.
	lines := []string{
		"Deus (sed rubrica monastica) adjuva (attamen rubrica monastica) nos",
		"trailing",
		"(atque rubrica tridentina omittuntur)",
	}
	got, _ := processWithVersion(t, "Monastic Divino", lines)
	want := []string{"Deus adjuva nos", "trailing"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("attamen fence from a multi-fragment line must block the deletion:\ngot  %q\nwant %q", got, want)
	}

	// A false fragment anywhere on the line drops the whole line.
	lines = []string{"kept", "Alleluja. (sed rubrica monastica) (si rubrica tridentina dicitur) Amen."}
	got, _ = processWithVersion(t, "Monastic Divino", lines)
	if !reflect.DeepEqual(got, []string{"kept"}) {
		t.Errorf("a false fragment should drop its line, got %q", got)
	}
}

func TestFindFragments_SubjectKeywordRecognition(t *testing.T) {
	frags := findFragments("Text (tempore paschali) more")
	if len(frags) != 1 {
		t.Fatalf("subject-led parenthetical should be recognized as a conditional, got %d fragments", len(frags))
	}
	if frags[0].condition != "tempore paschali" {
		t.Errorf("unexpected condition: %q", frags[0].condition)
	}
	if frags := findFragments("Sung on weekdays (die)"); len(frags) != 0 {
		t.Errorf("single-word parenthetical must stay literal, got %+v", frags)
	}
}
