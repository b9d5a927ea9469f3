package csvlog

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"
)

// dateLayout is the combined Date+Time parse pattern used by the export
// format: "2025-01-15" + " " + "18:30".
const dateLayout = "2006-01-02 15:04"

// Row is one data line of a workout-log CSV file.
type Row struct {
	Date          time.Time
	Template      string
	Exercise      string
	ExerciseOrder int // 0 = unordered, infer from file order
	SetNumber     int
	Reps          int
	Weight        float64 // kilograms
	Form          string
	Notes         string
}

// Column layouts. The legacy layout predates the Exercise Order column;
// it is detected by the header not mentioning "exercise order".
//
//	legacy:  Date,Time,Template,Exercise,SetNumber,Reps,Weight,Form[,Notes]
//	ordered: Date,Time,Template,Exercise,ExerciseOrder,SetNumber,Reps,Weight,Form[,Notes]
const (
	legacyMinColumns  = 8
	orderedMinColumns = 9
)

// Parse reads a workout-log CSV export and returns its data rows in file
// order. The first line is the header and selects the column layout.
// Malformed lines (too few columns, unparseable date) are dropped
// silently; malformed numeric fields default to zero rather than
// dropping the row. The only error returned is a read failure.
func Parse(r io.Reader) ([]Row, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		return nil, scanner.Err()
	}
	ordered := strings.Contains(strings.ToLower(scanner.Text()), "exercise order")

	minColumns := legacyMinColumns
	if ordered {
		minColumns = orderedMinColumns
	}

	var rows []Row
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := splitFields(line)
		if len(fields) < minColumns {
			continue
		}

		date, err := time.Parse(dateLayout, fields[0]+" "+fields[1])
		if err != nil {
			continue
		}

		row := Row{
			Date:     date,
			Template: fields[2],
			Exercise: fields[3],
		}

		rest := fields[4:]
		if ordered {
			row.ExerciseOrder = parseInt(rest[0])
			rest = rest[1:]
		}
		row.SetNumber = parseInt(rest[0])
		row.Reps = parseInt(rest[1])
		row.Weight = parseWeight(rest[2])
		row.Form = rest[3]
		if len(rest) > 4 {
			row.Notes = rest[4]
		}

		rows = append(rows, row)
	}
	return rows, scanner.Err()
}

// splitFields splits a CSV line on commas, honoring double-quoted fields:
// commas inside quotes do not split, and a doubled quote inside a quoted
// field is a literal quote. Each field is trimmed of surrounding
// whitespace.
func splitFields(line string) []string {
	var fields []string
	var buf strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				buf.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(buf.String()))
			buf.Reset()
		default:
			buf.WriteByte(c)
		}
	}
	fields = append(fields, strings.TrimSpace(buf.String()))
	return fields
}

// parseInt parses a non-negative integer field, defaulting to 0 so a
// malformed value does not block the rest of the row.
func parseInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// parseWeight parses a decimal weight, accepting both "." and "," as the
// decimal separator. Defaults to 0 on failure.
func parseWeight(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

// quoteField applies standard CSV quoting on export: fields containing a
// comma, quote, or newline are wrapped in double quotes with internal
// quotes doubled.
func quoteField(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// formatWeight renders a weight for export with "." as the separator and
// no trailing zeros (60.5, not 60.50).
func formatWeight(w float64) string {
	s := strconv.FormatFloat(w, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" {
		return "0"
	}
	return s
}
