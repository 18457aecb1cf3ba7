package codec

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/arloliu/tally/compress"
	"github.com/arloliu/tally/dataset"
	"github.com/arloliu/tally/errs"
	"github.com/arloliu/tally/format"
	"github.com/arloliu/tally/internal/pool"
)

// WriteText renders ds in the line-oriented text format: a "## Columns ="
// header, then one line per key holding the key's rendered labels followed
// by the declared columns' values.
//
// The column layout comes from WithColumns, the dataset's own column
// annotation, or plain count columns named after the outcome labels, in
// that order. Frequency columns emit count/total, or 0 for a zero-total row.
func WriteText(w io.Writer, ds *dataset.DataSet, opts ...Option) error {
	cfg, err := newConfig(opts...)
	if err != nil {
		return err
	}

	columns := cfg.columns
	if columns == nil {
		columns = ds.Columns()
	}
	if columns == nil {
		columns = format.CountColumns(ds.Outcomes())
	}
	if err := checkWriteColumns(columns, ds.Outcomes()); err != nil {
		return err
	}

	bb := pool.GetSnapshotBuffer()
	defer pool.PutSnapshotBuffer(bb)

	renderColumnHeader(bb, nil, columns)
	for row := range ds.Rows() {
		bb.B = append(bb.B, row.Key().String()...)
		for _, col := range columns {
			bb.B = append(bb.B, ' ')
			bb.B = strconv.AppendFloat(bb.B, columnValue(row, col), 'g', -1, 64)
		}
		bb.B = append(bb.B, '\n')
	}

	cfg.logger.Debug("text dataset written", "rows", ds.Len(), "columns", len(columns), "bytes", bb.Len())

	_, err = bb.WriteTo(w)

	return err
}

// WriteTextFile writes ds to path in the text format. A recognized
// compression suffix on the path compresses the whole file transparently.
func WriteTextFile(path string, ds *dataset.DataSet, opts ...Option) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteText(w, ds, opts...)
	})
}

// WriteGroupText renders a dataset group in the member-qualified text
// format: every member contributes one block of columns, each column header
// prefixed with the member name, and every data line carries the key
// followed by all members' values.
//
// All members share one column shape: WithColumns, the first member's column
// annotation, or plain count columns over the group outcomes.
func WriteGroupText(w io.Writer, group *dataset.Group, opts ...Option) error {
	cfg, err := newConfig(opts...)
	if err != nil {
		return err
	}

	names := group.Names()
	if len(names) == 0 {
		return fmt.Errorf("%w: group has no members to write", errs.ErrMemberNotFound)
	}

	members := make([]*dataset.DataSet, len(names))
	for i, name := range names {
		member, err := group.Member(name)
		if err != nil {
			return err
		}
		members[i] = member
	}

	columns := cfg.columns
	if columns == nil {
		columns = members[0].Columns()
	}
	if columns == nil {
		columns = format.CountColumns(group.Outcomes())
	}
	if err := checkWriteColumns(columns, group.Outcomes()); err != nil {
		return err
	}

	bb := pool.GetSnapshotBuffer()
	defer pool.PutSnapshotBuffer(bb)

	renderColumnHeader(bb, names, columns)
	for pos, key := range group.Keys() {
		bb.B = append(bb.B, key.String()...)
		for _, member := range members {
			row, err := member.RowAt(pos)
			if err != nil {
				return err
			}
			for _, col := range columns {
				bb.B = append(bb.B, ' ')
				bb.B = strconv.AppendFloat(bb.B, columnValue(row, col), 'g', -1, 64)
			}
		}
		bb.B = append(bb.B, '\n')
	}

	cfg.logger.Debug("text group written", "members", len(names), "rows", len(group.Keys()), "bytes", bb.Len())

	_, err = bb.WriteTo(w)

	return err
}

// WriteGroupTextFile writes a group to path in the member-qualified text
// format, with suffix-chosen whole-file compression.
func WriteGroupTextFile(path string, group *dataset.Group, opts ...Option) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteGroupText(w, group, opts...)
	})
}

// renderColumnHeader appends the "## Columns = ..." line. A non-empty
// members list qualifies every column with each member name in turn.
func renderColumnHeader(bb *pool.ByteBuffer, members []string, columns []format.Column) {
	bb.B = append(bb.B, "## Columns ="...)
	first := true
	writeCol := func(prefix string, col format.Column) {
		if !first {
			bb.B = append(bb.B, ',')
		}
		first = false
		bb.B = append(bb.B, ' ')
		if prefix != "" {
			bb.B = append(bb.B, prefix...)
			bb.B = append(bb.B, ' ')
		}
		bb.B = append(bb.B, col.String()...)
	}

	if len(members) == 0 {
		for _, col := range columns {
			writeCol("", col)
		}
	} else {
		for _, member := range members {
			for _, col := range columns {
				writeCol(member, col)
			}
		}
	}
	bb.B = append(bb.B, '\n')
}

// columnValue computes one column's value for a row.
func columnValue(row dataset.Row, col format.Column) float64 {
	switch col.Kind {
	case format.ColumnFrequency:
		total := row.Total()
		if total == 0 {
			return 0
		}

		return row.Count(col.Label) / total
	case format.ColumnTotal:
		return row.Total()
	default:
		return row.Count(col.Label)
	}
}

// checkWriteColumns verifies the declared columns can be produced from the
// given outcome schema.
func checkWriteColumns(columns []format.Column, outcomes []string) error {
	registered := make(map[string]struct{}, len(outcomes))
	for _, label := range outcomes {
		registered[label] = struct{}{}
	}

	hasTotal := false
	for _, col := range columns {
		if col.Kind == format.ColumnTotal {
			hasTotal = true
		}
	}
	for _, col := range columns {
		switch col.Kind {
		case format.ColumnCount, format.ColumnFrequency:
			if _, ok := registered[col.Label]; !ok {
				return fmt.Errorf("%w: column %q", errs.ErrUnknownOutcome, col.String())
			}
			if col.Kind == format.ColumnFrequency && !hasTotal {
				return fmt.Errorf("%w: frequency column %q has no count total column", errs.ErrColumnSyntax, col.String())
			}
		case format.ColumnTotal:
		default:
			return fmt.Errorf("%w: unrecognized column kind %d", errs.ErrColumnSyntax, uint8(col.Kind))
		}
	}

	return nil
}

// writeFile opens path for writing, wraps it with the compression the path
// suffix selects, and hands the wrapped writer to render. The compressed
// stream is flushed and the file closed on every exit path.
func writeFile(path string, render func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	wc, err := compress.WrapWriter(f, compress.TypeForPath(path))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := wc.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return render(wc)
}
