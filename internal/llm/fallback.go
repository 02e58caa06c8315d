package llm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/levels-ingest/internal/entity"
)

var (
	// "P12: NGL=580.50, FGL=581.20"
	reLevelTriple = regexp.MustCompile(`(?i)([A-Za-z0-9][A-Za-z0-9_.\-/]*)\s*:\s*NGL\s*[:=]\s*(\d+\.?\d*)\s*,\s*FGL\s*[:=]\s*(\d+\.?\d*)`)
	reNGL         = regexp.MustCompile(`(?i)ngl[:=]\s*(\d+\.?\d*)`)
	reFGL         = regexp.MustCompile(`(?i)fgl[:=]\s*(\d+\.?\d*)`)
)

// placeholderStep spaces synthesized coordinates so they stay distinct on a plot.
const placeholderStep = 10.0

// coordinates hands out sequential placeholder positions for levels that came without
// geometry.
type coordinates struct{ n int }

func (c *coordinates) next() (float64, float64) {
	x := float64(c.n) * placeholderStep
	c.n++
	return x, x
}

// RegexFallback scans free text for level annotations. Triples become an NGL and a
// Design point sharing one coordinate plus a cut/fill record; remaining standalone
// NGL/FGL values become one point each. The text is passed through NormalizeReply
// first. It never fails; no match yields an empty arena.
func RegexFallback(text string) *entity.RawExtraction {
	out := &entity.RawExtraction{}
	coords := &coordinates{}
	regexFallbackInto(out, NormalizeReply(text), coords)
	return out
}

func regexFallbackInto(out *entity.RawExtraction, text string, coords *coordinates) {
	rest := []byte(text)
	for _, m := range reLevelTriple.FindAllStringSubmatchIndex(text, -1) {
		id := text[m[2]:m[3]]
		ngl, errN := strconv.ParseFloat(text[m[4]:m[5]], 64)
		fgl, errF := strconv.ParseFloat(text[m[6]:m[7]], 64)
		if errN != nil || errF != nil {
			continue
		}
		x, y := coords.next()
		out.AddPoint(entity.Point{ID: id + "-NGL", X: x, Y: y, Z: entity.Float(ngl), Kind: entity.KindNGL, Explicit: true, Label: id, Source: entity.SourceRegex})
		out.AddPoint(entity.Point{ID: id + "-FGL", X: x, Y: y, Z: entity.Float(fgl), Kind: entity.KindDesign, Explicit: true, Label: id, Source: entity.SourceRegex})
		out.AddCutFill(entity.NewCutFill(id, ngl, fgl))

		// Blank the span so its values are not picked up again as standalone levels.
		for i := m[0]; i < m[1]; i++ {
			rest[i] = ' '
		}
	}

	remaining := string(rest)
	standalone := func(re *regexp.Regexp, kind entity.Kind, prefix string) {
		for i, m := range re.FindAllStringSubmatch(remaining, -1) {
			z, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				continue
			}
			x, y := coords.next()
			out.AddPoint(entity.Point{
				ID:       fmt.Sprintf("%s-%d", prefix, i+1),
				X:        x,
				Y:        y,
				Z:        entity.Float(z),
				Kind:     kind,
				Explicit: true,
				Label:    strings.TrimSpace(m[0]),
				Source:   entity.SourceRegex,
			})
		}
	}
	standalone(reNGL, entity.KindNGL, "NGL")
	standalone(reFGL, entity.KindDesign, "FGL")
}
