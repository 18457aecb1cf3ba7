package codec

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/arloliu/tally/compress"
	"github.com/arloliu/tally/dataset"
	"github.com/arloliu/tally/errs"
	"github.com/arloliu/tally/format"
)

// maxTextLine bounds a single line of a text file. Keys grow with sequence
// length, so the default bufio token limit is too small for long runs.
const maxTextLine = 1 << 20

// columnPlan maps declared columns onto an outcome schema. The schema is
// the outcome labels of the count and frequency columns in declaration
// order, plus the implied "minus" outcome when a lone "plus" column is
// paired with a total column (the one-qubit shorthand).
type columnPlan struct {
	columns  []format.Column
	outcomes []string
	totalAt  int // column index of the total column, -1 when absent
	implied  int // outcome position filled from the remainder, -1 when none
}

// analyzeColumns validates a declared column list and builds its plan.
func analyzeColumns(columns []format.Column) (*columnPlan, error) {
	plan := &columnPlan{columns: columns, totalAt: -1, implied: -1}
	seen := make(map[string]struct{}, len(columns))
	hasFrequency := false

	for i, col := range columns {
		switch col.Kind {
		case format.ColumnTotal:
			if plan.totalAt >= 0 {
				return nil, fmt.Errorf("%w: multiple count total columns", errs.ErrColumnSyntax)
			}
			plan.totalAt = i
		case format.ColumnCount, format.ColumnFrequency:
			if _, dup := seen[col.Label]; dup {
				return nil, fmt.Errorf("%w: outcome %q declared twice", errs.ErrColumnSyntax, col.Label)
			}
			seen[col.Label] = struct{}{}
			plan.outcomes = append(plan.outcomes, col.Label)
			if col.Kind == format.ColumnFrequency {
				hasFrequency = true
			}
		default:
			return nil, fmt.Errorf("%w: unrecognized column kind %d", errs.ErrColumnSyntax, uint8(col.Kind))
		}
	}

	if len(plan.outcomes) == 0 {
		return nil, fmt.Errorf("%w: no outcome columns declared", errs.ErrColumnSyntax)
	}
	if hasFrequency && plan.totalAt < 0 {
		return nil, fmt.Errorf("%w: frequency columns require a count total column", errs.ErrColumnSyntax)
	}
	if len(plan.outcomes) == 1 && plan.outcomes[0] == "plus" && plan.totalAt >= 0 {
		plan.outcomes = append(plan.outcomes, "minus")
		plan.implied = 1
	}

	return plan, nil
}

// defaultPlan is the column plan used when a file declares no header:
// "plus count, minus count", the original one-qubit layout.
func defaultPlan() *columnPlan {
	plan, err := analyzeColumns(format.CountColumns([]string{"plus", "minus"}))
	if err != nil {
		panic(err)
	}

	return plan
}

// rowCounts converts one line's column values into a count vector over the
// plan's outcome schema. Frequencies are scaled by the total column; an
// implied outcome receives the remainder, clamped at zero against float
// noise.
func (p *columnPlan) rowCounts(values []float64) []float64 {
	counts := make([]float64, len(p.outcomes))
	var total float64
	if p.totalAt >= 0 {
		total = values[p.totalAt]
	}

	pos := 0
	for i, col := range p.columns {
		switch col.Kind {
		case format.ColumnCount:
			counts[pos] = values[i]
			pos++
		case format.ColumnFrequency:
			counts[pos] = values[i] * total
			pos++
		}
	}

	if p.implied >= 0 {
		var explicit float64
		for i, v := range counts {
			if i != p.implied {
				explicit += v
			}
		}
		remainder := total - explicit
		if remainder < 0 {
			remainder = 0
		}
		counts[p.implied] = remainder
	}

	return counts
}

// textScanner walks a text stream line by line, classifying each line and
// tracking its 1-based number for error reporting.
type textScanner struct {
	scanner *bufio.Scanner
	lineNo  int
}

func newTextScanner(r io.Reader) *textScanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxTextLine)

	return &textScanner{scanner: scanner}
}

// next returns the next non-blank, non-comment line. Directive lines
// (leading "##") are returned with directive set; comment lines (leading
// "#") are skipped.
func (s *textScanner) next() (line string, directive bool, ok bool) {
	for s.scanner.Scan() {
		s.lineNo++
		line = strings.TrimSpace(s.scanner.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "##"):
			return line, true, true
		case strings.HasPrefix(line, "#"):
			continue
		default:
			return line, false, true
		}
	}

	return "", false, false
}

// parseDirective splits a "## Name = value" line. Directives without an
// assignment are reported with ok=false and are ignored by the readers.
func parseDirective(line string) (name, value string, ok bool) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "##"))
	eq := strings.IndexByte(rest, '=')
	if eq < 0 {
		return "", "", false
	}

	return strings.TrimSpace(rest[:eq]), strings.TrimSpace(rest[eq+1:]), true
}

// parseColumnHeader parses the comma-separated column descriptors of a
// "## Columns =" directive.
func parseColumnHeader(value string) ([]format.Column, error) {
	parts := strings.Split(value, ",")
	columns := make([]format.Column, 0, len(parts))
	for _, part := range parts {
		col, err := format.ParseColumn(part)
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}

	return columns, nil
}

// parseDataLine splits a data line into its key and the trailing numeric
// column values. The last numCols fields are the values; everything before
// them is the key, with "{}" denoting the empty key.
func parseDataLine(line string, numCols int) (dataset.Key, []float64, error) {
	fields := strings.Fields(line)
	if len(fields) < numCols+1 {
		return dataset.Key{}, nil, fmt.Errorf("%w: %q has %d fields, want at least %d",
			errs.ErrDataSyntax, line, len(fields), numCols+1)
	}

	values := make([]float64, numCols)
	for i, field := range fields[len(fields)-numCols:] {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return dataset.Key{}, nil, fmt.Errorf("%w: %q: bad numeric field %q", errs.ErrDataSyntax, line, field)
		}
		values[i] = v
	}

	key := dataset.ParseKey(strings.Join(fields[:len(fields)-numCols], " "))

	return key, values, nil
}

// ReadText parses the text format into a new frozen dynamic dataset.
//
// The "## Columns =" directive fixes the outcome schema; without one the
// default "plus count, minus count" layout applies. Unknown "##" directives
// and "#" comment lines are skipped. The loaded dataset keeps the declared
// columns as its annotation, so writing it back reproduces the same style.
//
// Returns:
//   - *dataset.DataSet: Frozen dynamic dataset holding the parsed rows
//   - error: errs.ErrHeaderSyntax, errs.ErrColumnSyntax, or
//     errs.ErrDataSyntax naming the offending line; I/O errors unchanged
func ReadText(r io.Reader, opts ...Option) (*dataset.DataSet, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	scanner := newTextScanner(r)

	var plan *columnPlan
	var ds *dataset.DataSet
	headerDeclared := false

	for {
		line, directive, ok := scanner.next()
		if !ok {
			break
		}

		if directive {
			name, value, assigned := parseDirective(line)
			if !assigned || name != "Columns" {
				continue
			}
			if ds != nil {
				return nil, fmt.Errorf("%w: line %d: column header after data lines", errs.ErrHeaderSyntax, scanner.lineNo)
			}
			if headerDeclared {
				return nil, fmt.Errorf("%w: line %d: duplicate column header", errs.ErrHeaderSyntax, scanner.lineNo)
			}
			columns, err := parseColumnHeader(value)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", scanner.lineNo, err)
			}
			if plan, err = analyzeColumns(columns); err != nil {
				return nil, fmt.Errorf("line %d: %w", scanner.lineNo, err)
			}
			headerDeclared = true

			continue
		}

		if plan == nil {
			plan = defaultPlan()
		}
		if ds == nil {
			if ds, err = newTextDataSet(plan, headerDeclared, cfg); err != nil {
				return nil, err
			}
		}

		key, values, err := parseDataLine(line, len(plan.columns))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", scanner.lineNo, err)
		}
		if err := ds.InsertCountList(key, plan.rowCounts(values)); err != nil {
			return nil, fmt.Errorf("line %d: %w", scanner.lineNo, err)
		}
	}
	if err := scanner.scanner.Err(); err != nil {
		return nil, err
	}

	if ds == nil {
		if plan == nil {
			plan = defaultPlan()
		}
		if ds, err = newTextDataSet(plan, headerDeclared, cfg); err != nil {
			return nil, err
		}
	}
	if err := ds.Finalize(); err != nil {
		return nil, err
	}

	cfg.logger.Debug("text dataset loaded", "rows", ds.Len(), "outcomes", len(plan.outcomes), "lines", scanner.lineNo)

	return ds, nil
}

// newTextDataSet builds the building dataset a text load populates. A
// declared header becomes the dataset's column annotation; the default
// layout stays unannotated since it equals the canonical count columns.
func newTextDataSet(plan *columnPlan, headerDeclared bool, cfg *config) (*dataset.DataSet, error) {
	dsOpts := []dataset.Option{dataset.WithCollisionPolicy(cfg.policy)}
	if headerDeclared {
		dsOpts = append(dsOpts, dataset.WithColumns(plan.columns))
	}

	return dataset.New(plan.outcomes, dsOpts...)
}

// ReadTextFile reads a text-format dataset from path, decompressing
// transparently when the path carries a recognized compression suffix.
func ReadTextFile(path string, opts ...Option) (*dataset.DataSet, error) {
	var ds *dataset.DataSet
	err := readFile(path, func(r io.Reader) error {
		var err error
		ds, err = ReadText(r, opts...)

		return err
	})
	if err != nil {
		return nil, err
	}

	return ds, nil
}

// groupHeader is the parsed member-qualified column header of a group text
// file: the member names in first-appearance order, the shared column shape,
// and each member's value positions within a data line.
type groupHeader struct {
	names    []string
	shape    []format.Column
	valueIdx map[string][]int
	numCols  int
}

// parseGroupHeader parses "DS0 plus count, DS0 minus count, DS1 plus count,
// ..." descriptors. Every member must declare the same column shape.
func parseGroupHeader(value string) (*groupHeader, error) {
	parts := strings.Split(value, ",")
	header := &groupHeader{
		valueIdx: make(map[string][]int),
		numCols:  len(parts),
	}
	memberCols := make(map[string][]format.Column)

	for i, part := range parts {
		fields := strings.Fields(part)
		if len(fields) < 3 {
			return nil, fmt.Errorf("%w: %q is not member-qualified", errs.ErrColumnSyntax, strings.TrimSpace(part))
		}
		col, err := format.ParseColumn(strings.Join(fields[1:], " "))
		if err != nil {
			return nil, err
		}

		member := fields[0]
		if _, known := memberCols[member]; !known {
			header.names = append(header.names, member)
		}
		memberCols[member] = append(memberCols[member], col)
		header.valueIdx[member] = append(header.valueIdx[member], i)
	}

	header.shape = memberCols[header.names[0]]
	for _, name := range header.names[1:] {
		if !sameColumns(memberCols[name], header.shape) {
			return nil, fmt.Errorf("%w: member %q columns differ from member %q",
				errs.ErrColumnSyntax, name, header.names[0])
		}
	}

	return header, nil
}

func sameColumns(a, b []format.Column) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

// ReadGroupText parses the member-qualified text format into a new group.
// The column header is mandatory; members are admitted in first-appearance
// order, each as a frozen dynamic dataset.
func ReadGroupText(r io.Reader, opts ...Option) (*dataset.Group, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	scanner := newTextScanner(r)

	var header *groupHeader
	var plan *columnPlan
	var members []*dataset.DataSet

	for {
		line, directive, ok := scanner.next()
		if !ok {
			break
		}

		if directive {
			name, value, assigned := parseDirective(line)
			if !assigned || name != "Columns" {
				continue
			}
			if members != nil {
				return nil, fmt.Errorf("%w: line %d: column header after data lines", errs.ErrHeaderSyntax, scanner.lineNo)
			}
			if header != nil {
				return nil, fmt.Errorf("%w: line %d: duplicate column header", errs.ErrHeaderSyntax, scanner.lineNo)
			}
			if header, err = parseGroupHeader(value); err != nil {
				return nil, fmt.Errorf("line %d: %w", scanner.lineNo, err)
			}
			if plan, err = analyzeColumns(header.shape); err != nil {
				return nil, fmt.Errorf("line %d: %w", scanner.lineNo, err)
			}

			continue
		}

		if header == nil {
			return nil, fmt.Errorf("%w: line %d: data before the member-qualified column header", errs.ErrHeaderSyntax, scanner.lineNo)
		}
		if members == nil {
			members = make([]*dataset.DataSet, len(header.names))
			for i := range header.names {
				if members[i], err = newTextDataSet(plan, true, cfg); err != nil {
					return nil, err
				}
			}
		}

		key, values, err := parseDataLine(line, header.numCols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", scanner.lineNo, err)
		}
		memberValues := make([]float64, len(plan.columns))
		for i, name := range header.names {
			for j, idx := range header.valueIdx[name] {
				memberValues[j] = values[idx]
			}
			if err := members[i].InsertCountList(key, plan.rowCounts(memberValues)); err != nil {
				return nil, fmt.Errorf("line %d: member %q: %w", scanner.lineNo, name, err)
			}
		}
	}
	if err := scanner.scanner.Err(); err != nil {
		return nil, err
	}

	if header == nil {
		return nil, fmt.Errorf("%w: missing member-qualified column header", errs.ErrHeaderSyntax)
	}
	if members == nil {
		members = make([]*dataset.DataSet, len(header.names))
		for i := range header.names {
			if members[i], err = newTextDataSet(plan, true, cfg); err != nil {
				return nil, err
			}
		}
	}

	group, err := dataset.NewGroup(plan.outcomes)
	if err != nil {
		return nil, err
	}
	for i, name := range header.names {
		if err := members[i].Finalize(); err != nil {
			return nil, err
		}
		if err := group.Admit(name, members[i]); err != nil {
			return nil, err
		}
	}

	cfg.logger.Debug("text group loaded", "members", len(header.names), "rows", len(group.Keys()), "lines", scanner.lineNo)

	return group, nil
}

// ReadGroupTextFile reads a member-qualified text file from path, with
// suffix-chosen transparent decompression.
func ReadGroupTextFile(path string, opts ...Option) (*dataset.Group, error) {
	var group *dataset.Group
	err := readFile(path, func(r io.Reader) error {
		var err error
		group, err = ReadGroupText(r, opts...)

		return err
	})
	if err != nil {
		return nil, err
	}

	return group, nil
}

// readFile opens path, wraps it with the decompression the path suffix
// selects, and hands the wrapped reader to parse.
func readFile(path string, parse func(io.Reader) error) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	rc, err := compress.WrapReader(f, compress.TypeForPath(path))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rc.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return parse(rc)
}
