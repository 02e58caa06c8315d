// Package dxf reads the ENTITIES section of an ASCII DXF (tag/value) stream.
//
// The reader is permissive: malformed values become NaN, unknown entities are skipped,
// and a stream that ends early yields whatever entities were complete. Only failures of
// the underlying io.Reader are returned as errors.
package dxf

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/levels-ingest/internal/entity"
)

// Entity keywords the parser turns into geometry.
const (
	EntityPoint      = "POINT"
	EntityText       = "TEXT"
	EntityMText      = "MTEXT"
	EntityLWPolyline = "LWPOLYLINE"
	EntityLine       = "LINE"
)

const (
	sectionMarker = "ENTITIES"
	endSection    = "ENDSEC"
	endOfFile     = "EOF"
)

// Stats describes one parse pass.
type Stats struct {
	Lines         int  // lines consumed
	Entities      int  // recognized entities opened
	Skipped       int  // unrecognized entities skipped
	Dropped       int  // recognized entities discarded (e.g. POINT without x/y)
	BadCodes      int  // lines where a group code was expected but not an integer
	FoundEntities bool // ENTITIES marker seen
	Terminated    bool // ENDSEC/EOF seen; false means the stream was truncated
	ElapsedMs     int64
}

// Parser turns a tag/value stream into a RawExtraction.
type Parser struct {
	logger *slog.Logger
}

func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// ParseString is Parse over an in-memory stream.
func (p *Parser) ParseString(content string) (*entity.RawExtraction, Stats, error) {
	return p.Parse(strings.NewReader(content))
}

// Parse reads r to the end of the ENTITIES section (or end of input).
func (p *Parser) Parse(r io.Reader) (out *entity.RawExtraction, st Stats, err error) {
	start := time.Now()
	lr := &lineReader{br: bufio.NewReaderSize(r, 64<<10)}
	out = &entity.RawExtraction{}

	defer func() {
		st.Lines = lr.n
		st.ElapsedMs = time.Since(start).Milliseconds()
	}()

	// Seek the ENTITIES section.
	for {
		line, ok, err := lr.next()
		if err != nil {
			return out, st, err
		}
		if !ok {
			p.logger.Warn("dxf.parse.no_entities_section", "lines", lr.n)
			return out, st, nil
		}
		if strings.Contains(line, sectionMarker) {
			st.FoundEntities = true
			break
		}
	}

	var cur *builder
	commit := func() {
		if cur == nil {
			return
		}
		if !cur.commit(out) {
			st.Dropped++
		}
		cur = nil
	}

	for {
		codeLine, ok, err := lr.next()
		if err != nil {
			commit()
			return out, st, err
		}
		if !ok {
			break
		}
		code, cerr := strconv.Atoi(strings.TrimSpace(codeLine))
		if cerr != nil {
			// Out of step with the pairs; consume one line and try again.
			st.BadCodes++
			continue
		}
		value, ok, err := lr.next()
		if err != nil {
			commit()
			return out, st, err
		}
		if !ok {
			break
		}

		if code != 0 {
			if cur != nil {
				cur.apply(code, value)
			}
			continue
		}

		commit()
		value = strings.TrimSpace(value)
		switch value {
		case endSection, endOfFile:
			st.Terminated = true
		case EntityPoint, EntityText, EntityMText, EntityLWPolyline, EntityLine:
			st.Entities++
			cur = newBuilder(value)
			continue
		default:
			st.Skipped++
			continue
		}
		break
	}
	commit()

	p.logger.Debug("dxf.parse.ok",
		"lines", lr.n,
		"entities", st.Entities,
		"points", len(out.Points),
		"annotations", len(out.Annotations),
		"polylines", len(out.Polylines),
		"skipped", st.Skipped,
		"dropped", st.Dropped,
		"terminated", st.Terminated,
	)
	return out, st, nil
}

type lineReader struct {
	br *bufio.Reader
	n  int
}

// next returns the next line without its terminator; ok is false at end of input.
func (l *lineReader) next() (string, bool, error) {
	s, err := l.br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, err
	}
	if s == "" && err != nil {
		return "", false, nil
	}
	l.n++
	return strings.TrimRight(s, "\r\n"), true, nil
}

// builder accumulates group codes for the entity currently open.
type builder struct {
	kind  string
	layer string

	x, y, z    float64
	hasZ       bool
	x2, y2, z2 float64

	text   string
	chunks []string

	flags     int
	expected  int
	elevation float64
	pendingX  float64
	vertices  []entity.Vertex
}

func newBuilder(kind string) *builder {
	nan := math.NaN()
	return &builder{kind: kind, x: nan, y: nan, x2: nan, y2: nan, pendingX: nan}
}

func (b *builder) apply(code int, value string) {
	if code == 8 {
		b.layer = strings.TrimSpace(value)
		return
	}
	switch b.kind {
	case EntityPoint:
		switch code {
		case 10:
			b.x = parseFloat(value)
		case 20:
			b.y = parseFloat(value)
		case 30:
			b.z, b.hasZ = parseFloat(value), true
		}
	case EntityText, EntityMText:
		switch code {
		case 1:
			b.text = value
		case 3:
			b.chunks = append(b.chunks, value)
		case 10:
			b.x = parseFloat(value)
		case 20:
			b.y = parseFloat(value)
		}
	case EntityLWPolyline:
		switch code {
		case 70:
			b.flags = parseInt(value)
		case 90:
			b.expected = parseInt(value)
		case 38:
			b.elevation = parseFloat(value)
		case 10:
			b.pendingX = parseFloat(value)
		case 20:
			b.vertices = append(b.vertices, entity.Vertex{X: b.pendingX, Y: parseFloat(value), Z: b.elevation})
		}
	case EntityLine:
		switch code {
		case 10:
			b.x = parseFloat(value)
		case 20:
			b.y = parseFloat(value)
		case 30:
			b.z = parseFloat(value)
		case 11:
			b.x2 = parseFloat(value)
		case 21:
			b.y2 = parseFloat(value)
		case 31:
			b.z2 = parseFloat(value)
		}
	}
}

// commit adds the entity to out; false means it was discarded.
func (b *builder) commit(out *entity.RawExtraction) bool {
	switch b.kind {
	case EntityPoint:
		if !finite(b.x) || !finite(b.y) {
			return false
		}
		pt := entity.Point{X: b.x, Y: b.y, Layer: b.layer, Source: entity.SourceDXF}
		if b.hasZ {
			pt.Z = entity.Float(b.z)
		}
		out.AddPoint(pt)
	case EntityText, EntityMText:
		out.AddAnnotation(entity.TextAnnotation{
			Content: strings.Join(b.chunks, "") + b.text,
			X:       b.x,
			Y:       b.y,
			Layer:   b.layer,
		})
	case EntityLWPolyline:
		if len(b.vertices) == 0 {
			return false
		}
		out.AddPolyline(entity.Polyline{Vertices: b.vertices, Layer: b.layer, Closed: b.flags&1 == 1})
	case EntityLine:
		out.AddPolyline(entity.Polyline{
			Vertices: []entity.Vertex{{X: b.x, Y: b.y, Z: b.z}, {X: b.x2, Y: b.y2, Z: b.z2}},
			Layer:    b.layer,
		})
	default:
		return false
	}
	return true
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func parseInt(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && finite(f) {
		return int(f)
	}
	return 0
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
