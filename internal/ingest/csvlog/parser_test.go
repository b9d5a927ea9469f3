package csvlog

import (
	"strings"
	"testing"
	"time"
)

const legacyCSV = `Date,Time,Workout Template,Exercise,Set Number,Reps,Weight (kg),Form,Notes
2025-01-15,18:30,Push Day,Bench Press,1,8,60.5,Good,"keep elbows in"
2025-01-15,18:30,Push Day,Bench Press,2,6,62.5,Perfect
2025-01-15,18:30,Push Day,Overhead Press,1,10,40,Meh
`

const orderedCSV = `Date,Time,Workout Template,Exercise,Exercise Order,Set Number,Reps,Weight (kg),Form,Notes
2025-01-15,18:30,Push Day,Bench Press,1,1,8,60.5,Good,
2025-01-15,18:30,Push Day,Overhead Press,2,1,10,40,Good,
`

// TestParseLegacyLayout verifies the 8/9-column layout without an
// Exercise Order column: orders default to 0, notes are optional.
func TestParseLegacyLayout(t *testing.T) {
	rows, err := Parse(strings.NewReader(legacyCSV))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}

	r := rows[0]
	want := time.Date(2025, 1, 15, 18, 30, 0, 0, time.UTC)
	if !r.Date.Equal(want) {
		t.Errorf("date = %v, want %v", r.Date, want)
	}
	if r.Template != "Push Day" {
		t.Errorf("template = %q", r.Template)
	}
	if r.Exercise != "Bench Press" {
		t.Errorf("exercise = %q", r.Exercise)
	}
	if r.ExerciseOrder != 0 {
		t.Errorf("exerciseOrder = %d, want 0 (legacy layout)", r.ExerciseOrder)
	}
	if r.SetNumber != 1 || r.Reps != 8 {
		t.Errorf("setNumber/reps = %d/%d, want 1/8", r.SetNumber, r.Reps)
	}
	if r.Weight != 60.5 {
		t.Errorf("weight = %v, want 60.5", r.Weight)
	}
	if r.Form != "Good" {
		t.Errorf("form = %q", r.Form)
	}
	if r.Notes != "keep elbows in" {
		t.Errorf("notes = %q, want unquoted text", r.Notes)
	}

	// Row without the optional notes column
	if rows[1].Notes != "" {
		t.Errorf("row 2 notes = %q, want empty", rows[1].Notes)
	}
}

// TestParseOrderedLayout verifies the layout with an explicit Exercise
// Order column, detected by case-insensitive header match.
func TestParseOrderedLayout(t *testing.T) {
	rows, err := Parse(strings.NewReader(orderedCSV))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].ExerciseOrder != 1 || rows[1].ExerciseOrder != 2 {
		t.Errorf("orders = %d,%d, want 1,2", rows[0].ExerciseOrder, rows[1].ExerciseOrder)
	}
	if rows[0].SetNumber != 1 {
		t.Errorf("setNumber = %d, want 1", rows[0].SetNumber)
	}
}

// TestHeaderDetectionCaseInsensitive verifies that "EXERCISE ORDER" in
// any case selects the ordered layout.
func TestHeaderDetectionCaseInsensitive(t *testing.T) {
	csv := "DATE,TIME,WORKOUT TEMPLATE,EXERCISE,EXERCISE ORDER,SET NUMBER,REPS,WEIGHT (KG),FORM\n" +
		"2025-01-15,18:30,Push Day,Bench Press,3,1,8,60.5,Good\n"
	rows, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].ExerciseOrder != 3 {
		t.Errorf("exerciseOrder = %d, want 3", rows[0].ExerciseOrder)
	}
}

// TestQuotedFieldWithComma verifies that commas inside quoted fields do
// not split the field.
func TestQuotedFieldWithComma(t *testing.T) {
	csv := "Date,Time,Workout Template,Exercise,Set Number,Reps,Weight (kg),Form,Notes\n" +
		`2025-01-15,18:30,"Push, Pull",Bench Press,1,8,60.5,Good,"slow, controlled reps"` + "\n"
	rows, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].Template != "Push, Pull" {
		t.Errorf("template = %q, want %q", rows[0].Template, "Push, Pull")
	}
	if rows[0].Notes != "slow, controlled reps" {
		t.Errorf("notes = %q", rows[0].Notes)
	}
}

// TestDoubledQuoteEscape verifies standard CSV quote doubling inside a
// quoted field.
func TestDoubledQuoteEscape(t *testing.T) {
	csv := "Date,Time,Workout Template,Exercise,Set Number,Reps,Weight (kg),Form,Notes\n" +
		`2025-01-15,18:30,Push Day,Bench Press,1,8,60.5,Good,"the ""arch"" cue"` + "\n"
	rows, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if rows[0].Notes != `the "arch" cue` {
		t.Errorf("notes = %q", rows[0].Notes)
	}
}

// TestShortLineDropped verifies that a line with fewer than the minimum
// column count is dropped silently.
func TestShortLineDropped(t *testing.T) {
	csv := "Date,Time,Workout Template,Exercise,Set Number,Reps,Weight (kg),Form\n" +
		"2025-01-15,18:30,Push Day\n" +
		"2025-01-15,18:30,Push Day,Bench Press,1,8,60.5,Good\n"
	rows, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("rows = %d, want 1 (short line dropped)", len(rows))
	}
}

// TestBadDateDropped verifies that a row with an unparseable date is
// dropped, not defaulted.
func TestBadDateDropped(t *testing.T) {
	csv := "Date,Time,Workout Template,Exercise,Set Number,Reps,Weight (kg),Form\n" +
		"15/01/2025,18:30,Push Day,Bench Press,1,8,60.5,Good\n" +
		"2025-01-15,25:99,Push Day,Bench Press,1,8,60.5,Good\n"
	rows, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rows = %d, want 0", len(rows))
	}
}

// TestBadNumericDefaultsToZero verifies that malformed numeric fields
// default to zero instead of dropping the row.
func TestBadNumericDefaultsToZero(t *testing.T) {
	csv := "Date,Time,Workout Template,Exercise,Set Number,Reps,Weight (kg),Form\n" +
		"2025-01-15,18:30,Push Day,Bench Press,one,eight,heavy,Good\n"
	rows, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1 (row kept despite bad numerics)", len(rows))
	}
	r := rows[0]
	if r.SetNumber != 0 || r.Reps != 0 || r.Weight != 0 {
		t.Errorf("numerics = %d/%d/%v, want 0/0/0", r.SetNumber, r.Reps, r.Weight)
	}
}

// TestCommaDecimalSeparator verifies that a European "60,5" weight
// inside a quoted field parses as 60.5.
func TestCommaDecimalSeparator(t *testing.T) {
	csv := "Date,Time,Workout Template,Exercise,Set Number,Reps,Weight (kg),Form\n" +
		`2025-01-15,18:30,Push Day,Bench Press,1,8,"60,5",Good` + "\n"
	rows, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if rows[0].Weight != 60.5 {
		t.Errorf("weight = %v, want 60.5", rows[0].Weight)
	}
}

// TestFieldTrimming verifies that fields are trimmed of surrounding
// whitespace.
func TestFieldTrimming(t *testing.T) {
	csv := "Date,Time,Workout Template,Exercise,Set Number,Reps,Weight (kg),Form\n" +
		"2025-01-15, 18:30 , Push Day ,  Bench Press , 1 , 8 , 60.5 , Good \n"
	rows, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].Template != "Push Day" || rows[0].Exercise != "Bench Press" {
		t.Errorf("template/exercise = %q/%q", rows[0].Template, rows[0].Exercise)
	}
	if rows[0].Reps != 8 || rows[0].Weight != 60.5 {
		t.Errorf("reps/weight = %d/%v", rows[0].Reps, rows[0].Weight)
	}
}

// TestCRLFInput verifies that Windows line endings are handled.
func TestCRLFInput(t *testing.T) {
	csv := "Date,Time,Workout Template,Exercise,Set Number,Reps,Weight (kg),Form\r\n" +
		"2025-01-15,18:30,Push Day,Bench Press,1,8,60.5,Good\r\n"
	rows, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].Form != "Good" {
		t.Errorf("form = %q (trailing CR not stripped?)", rows[0].Form)
	}
}

// TestEmptyInput verifies that empty and header-only inputs yield no
// rows and no error.
func TestEmptyInput(t *testing.T) {
	for _, in := range []string{"", "Date,Time,Workout Template,Exercise,Set Number,Reps,Weight (kg),Form\n"} {
		rows, err := Parse(strings.NewReader(in))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rows) != 0 {
			t.Errorf("rows = %d, want 0", len(rows))
		}
	}
}
