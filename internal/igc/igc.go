// Package igc parses IGC flight recorder files into the fix series the
// flight pipeline consumes. Only the records the pipeline needs are
// handled: the A record (logger id), H header records and B position
// fixes. All other record types, including I extension declarations,
// are skipped; the B-record pattern anchors only the fixed prefix, so
// declared extensions never disturb it.
package igc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/ahsparrow/fgfs/internal/flight"
)

var (
	// ErrMissingARecord reports a file that does not start with the
	// mandatory A record.
	ErrMissingARecord = errors.New("missing A record")

	// ErrNoFixes reports a file with no parseable B records.
	ErrNoFixes = errors.New("no B records")
)

var bRecordRe = regexp.MustCompile(
	`^B(\d{2})(\d{2})(\d{2})(\d{2})(\d{5})([NS])(\d{3})(\d{5})([EW])A(\d{5}|-\d{4})(\d{5}|-\d{4})`)

// Header holds the identification fields of a log. Fields carries every
// H record keyed by its three-letter mnemonic; the common ones are
// lifted into typed accessors.
type Header struct {
	LoggerID string // A record: manufacturer + serial
	Date     string // HFDTE value, ddmmyy
	Fields   map[string]string
}

// CompetitionID returns the HFCID value if present.
func (h *Header) CompetitionID() (string, bool) {
	v, ok := h.Fields["cid"]
	return v, ok && v != ""
}

// GliderID returns the HFGID registration if present.
func (h *Header) GliderID() (string, bool) {
	v, ok := h.Fields["gid"]
	return v, ok && v != ""
}

// Ident resolves the display identifier for the log: the competition
// id, else the glider id, else the logger serial. The fields are
// checked in that order with explicit presence tests.
func (h *Header) Ident() string {
	if cid, ok := h.CompetitionID(); ok {
		return cid
	}
	if gid, ok := h.GliderID(); ok {
		return gid
	}
	return h.LoggerID
}

// Parse reads an IGC file and returns its header and fix series. The
// series has strictly increasing unique timestamps: duplicate times, a
// known logger bug, are dropped keeping the first occurrence.
func Parse(r io.Reader) (*Header, flight.FixSeries, error) {
	scanner := bufio.NewScanner(r)

	hdr := &Header{Fields: map[string]string{}}
	var fixes flight.FixSeries

	first := true
	seen := map[float64]bool{}
	var lastT float64 = -1

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}

		if first {
			if !strings.HasPrefix(line, "A") {
				return nil, nil, ErrMissingARecord
			}
			if len(line) >= 7 {
				hdr.LoggerID = line[1:7]
			} else {
				hdr.LoggerID = line[1:]
			}
			first = false
			continue
		}

		switch line[0] {
		case 'H':
			parseHeaderRecord(hdr, line)
		case 'B':
			fix, ok := parseBRecord(line)
			if !ok {
				continue
			}
			if seen[fix.T] || fix.T <= lastT {
				continue
			}
			seen[fix.T] = true
			lastT = fix.T
			fixes = append(fixes, fix)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read igc: %w", err)
	}
	if len(fixes) == 0 {
		return nil, nil, ErrNoFixes
	}

	return hdr, fixes, nil
}

func parseHeaderRecord(hdr *Header, line string) {
	if len(line) < 5 {
		return
	}
	key := strings.ToLower(line[2:5])

	var value string
	if i := strings.Index(line, ":"); i >= 0 {
		value = strings.TrimSpace(line[i+1:])
	} else if len(line) > 5 {
		value = strings.TrimSpace(line[5:])
	}
	hdr.Fields[key] = value

	if key == "dte" {
		// Some loggers write HFDTEDATE:ddmmyy,nn
		if i := strings.Index(value, ","); i >= 0 {
			value = value[:i]
		}
		hdr.Date = value
	}
}

func parseBRecord(line string) (flight.Fix, bool) {
	m := bRecordRe.FindStringSubmatch(line)
	if m == nil {
		return flight.Fix{}, false
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	second, _ := strconv.Atoi(m[3])

	latDeg, _ := strconv.Atoi(m[4])
	latMin, _ := strconv.Atoi(m[5])
	lonDeg, _ := strconv.Atoi(m[7])
	lonMin, _ := strconv.Atoi(m[8])

	lat := float64(latDeg) + float64(latMin)/60000
	if m[6] == "S" {
		lat = -lat
	}
	lon := float64(lonDeg) + float64(lonMin)/60000
	if m[9] == "W" {
		lon = -lon
	}

	pressure, _ := strconv.Atoi(m[10])
	gps, _ := strconv.Atoi(m[11])

	return flight.Fix{
		T:           float64(hour*3600 + minute*60 + second),
		Lat:         lat,
		Lon:         lon,
		PressureAlt: float64(pressure),
		GPSAlt:      float64(gps),
	}, true
}

// DiscardLeading drops the first n fixes of a series; loggers often
// record garbage while acquiring satellites. A series shorter than n is
// returned unchanged.
func DiscardLeading(fixes flight.FixSeries, n int) flight.FixSeries {
	if n >= len(fixes) {
		return fixes
	}
	return fixes[n:]
}
