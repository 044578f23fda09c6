package results

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strconv"

	"github.com/klauspost/compress/zip"
	"github.com/programme-lv/competitions/leaderboard"
	"github.com/programme-lv/competitions/srvcerror"
	"github.com/programme-lv/competitions/subm"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatZIP  Format = "zip"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatCSV, FormatZIP:
		return f, nil
	}
	return "", srvcerror.ErrInvalidRequest("unsupported export format: " + s)
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatZIP:
		return "application/x-zip-compressed"
	}
	return "application/json"
}

func participantName(p subm.Participant) string {
	if p.Username != "" {
		return p.Username
	}
	return p.UUID.String()
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// writeJSON renders {key: {participant: {column title: value}}}. Maps
// would lose participant and column order, so objects are written by hand.
func writeJSON(buf *bytes.Buffer, res []leaderboard.Result) error {
	buf.WriteByte('{')
	for i, r := range res {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONKey(buf, Key(r.Leaderboard.Title, r.Leaderboard.ID)); err != nil {
			return err
		}
		buf.WriteByte('{')
		for j, row := range r.Rows {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONKey(buf, participantName(row.Participant)); err != nil {
				return err
			}
			buf.WriteByte('{')
			first := true
			for k, cell := range row.Cells {
				if !cell.Valid {
					continue
				}
				if !first {
					buf.WriteByte(',')
				}
				first = false
				if err := writeJSONKey(buf, r.Columns[k].Title); err != nil {
					return err
				}
				val, err := json.Marshal(cell.Value)
				if err != nil {
					return err
				}
				buf.Write(val)
			}
			buf.WriteByte('}')
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return nil
}

func writeJSONKey(buf *bytes.Buffer, key string) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	return nil
}

// Header is the csv header row of a computed leaderboard.
func Header(r leaderboard.Result) []string {
	header := make([]string, 0, len(r.Columns)+1)
	header = append(header, "participant")
	for _, c := range r.Columns {
		header = append(header, Key(c.Title, c.ID))
	}
	return header
}

func writeCSV(buf *bytes.Buffer, r leaderboard.Result) error {
	w := csv.NewWriter(buf)
	err := w.Write(Header(r))
	if err != nil {
		return err
	}
	for _, row := range r.Rows {
		record := make([]string, 0, len(row.Cells)+1)
		record = append(record, participantName(row.Participant))
		for _, cell := range row.Cells {
			if cell.Valid {
				record = append(record, formatValue(cell.Value))
			} else {
				record = append(record, "")
			}
		}
		err = w.Write(record)
		if err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// writeCSVBlocks separates leaderboards with one empty line.
func writeCSVBlocks(buf *bytes.Buffer, res []leaderboard.Result) error {
	for i, r := range res {
		if i > 0 {
			buf.WriteByte('\n')
		}
		if err := writeCSV(buf, r); err != nil {
			return err
		}
	}
	return nil
}

func writeZip(buf *bytes.Buffer, res []leaderboard.Result) error {
	zw := zip.NewWriter(buf)
	for _, r := range res {
		f, err := zw.Create(Key(r.Leaderboard.Title, r.Leaderboard.ID) + ".csv")
		if err != nil {
			return err
		}
		var doc bytes.Buffer
		err = writeCSV(&doc, r)
		if err != nil {
			return err
		}
		_, err = f.Write(doc.Bytes())
		if err != nil {
			return err
		}
	}
	return zw.Close()
}
