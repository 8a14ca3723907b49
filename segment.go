package mdv

import (
	"regexp"
	"sort"
	"strings"
)

var (
	inlineImagePattern    = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
	referenceImagePattern = regexp.MustCompile(`!\[([^\]]*)\]\[([^\]]*)\]`)
)

type segmentKind uint8

// SegmentKind is the exported alias of segmentKind.
type SegmentKind = segmentKind

const (
	segmentText segmentKind = iota
	segmentImage
)

const (
	// SegmentText is a run of Markdown between image mentions.
	SegmentText SegmentKind = segmentText
	// SegmentImage is a single resolved image mention.
	SegmentImage SegmentKind = segmentImage
)

// Segment is one piece of a split document. Start and End are byte offsets
// of the segment's span in the source text.
type Segment struct {
	Kind   SegmentKind
	Text   string
	Alt    string
	Target string
	Start  int
	End    int
}

// imageMention is a located, resolved image reference.
type imageMention struct {
	start  int
	end    int
	alt    string
	target string
}

// Split partitions text into text and image segments in source order.
// Reference-style mentions whose label is not in refs are left in the
// surrounding text. Whitespace-only text spans are dropped.
func Split(text string, refs ReferenceMap) []Segment {
	mentions := findMentions(text, refs)
	segments := make([]Segment, 0, len(mentions)*2+1)
	last := 0
	for _, m := range mentions {
		if m.start < last {
			continue
		}
		if chunk := text[last:m.start]; strings.TrimSpace(chunk) != "" {
			segments = append(segments, Segment{Kind: segmentText, Text: chunk, Start: last, End: m.start})
		}
		segments = append(segments, Segment{
			Kind:   segmentImage,
			Alt:    m.alt,
			Target: m.target,
			Start:  m.start,
			End:    m.end,
		})
		last = m.end
	}
	if chunk := text[last:]; strings.TrimSpace(chunk) != "" {
		segments = append(segments, Segment{Kind: segmentText, Text: chunk, Start: last, End: len(text)})
	}
	return segments
}

// HasImages reports whether segments contains at least one image.
func HasImages(segments []Segment) bool {
	for _, seg := range segments {
		if seg.Kind == segmentImage {
			return true
		}
	}
	return false
}

func findMentions(text string, refs ReferenceMap) []imageMention {
	var mentions []imageMention
	for _, loc := range inlineImagePattern.FindAllStringSubmatchIndex(text, -1) {
		mentions = append(mentions, imageMention{
			start:  loc[0],
			end:    loc[1],
			alt:    text[loc[2]:loc[3]],
			target: text[loc[4]:loc[5]],
		})
	}
	for _, loc := range referenceImagePattern.FindAllStringSubmatchIndex(text, -1) {
		alt := text[loc[2]:loc[3]]
		label := text[loc[4]:loc[5]]
		if label == "" {
			label = alt
		}
		target, ok := refs.Resolve(label)
		if !ok {
			continue
		}
		mentions = append(mentions, imageMention{
			start:  loc[0],
			end:    loc[1],
			alt:    alt,
			target: target,
		})
	}
	sort.SliceStable(mentions, func(i, j int) bool {
		return mentions[i].start < mentions[j].start
	})
	return mentions
}
