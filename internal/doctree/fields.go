package doctree

// AttachmentItem is one entry of a document's attachment list. Index runs
// densely from 1 after normalization.
type AttachmentItem struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// StructuredFields is the metadata record kept alongside the body tree.
type StructuredFields struct {
	Title             string           `json:"title"`
	MainTo            string           `json:"mainTo"`
	SignOff           string           `json:"signOff"`
	DocNo             string           `json:"docNo"`
	Signatory         string           `json:"signatory"`
	CopyNo            string           `json:"copyNo"`
	Date              string           `json:"date"`
	Attachments       []AttachmentItem `json:"attachments"`
	ExportWithRedhead bool             `json:"exportWithRedhead"`

	TopicID            string         `json:"topicId,omitempty"`
	TopicName          string         `json:"topicName,omitempty"`
	TopicTemplateRules *TemplateRules `json:"topicTemplateRules,omitempty"`
}

// NewStructuredFields returns the record a freshly created document starts with.
func NewStructuredFields() StructuredFields {
	return StructuredFields{Attachments: []AttachmentItem{}, ExportWithRedhead: true}
}

// Clone deep-copies the fields. Template rules are shared: the engine
// treats them as read-only.
func (f StructuredFields) Clone() StructuredFields {
	out := f
	out.Attachments = append([]AttachmentItem{}, f.Attachments...)
	return out
}

// StyleRule is one rule bucket. Unset values fall through to the next
// precedence layer.
type StyleRule struct {
	FontFamily           string   `json:"fontFamily,omitempty" yaml:"font_family,omitempty"`
	FontSizePt           *float64 `json:"fontSizePt,omitempty" yaml:"font_size_pt,omitempty"`
	LineSpacingPt        *float64 `json:"lineSpacingPt,omitempty" yaml:"line_spacing_pt,omitempty"`
	FirstLineIndentPt    *float64 `json:"firstLineIndentPt,omitempty" yaml:"first_line_indent_pt,omitempty"`
	FirstLineIndentChars *float64 `json:"firstLineIndentChars,omitempty" yaml:"first_line_indent_chars,omitempty"`
	Bold                 *bool    `json:"bold,omitempty" yaml:"bold,omitempty"`
	SpaceBeforePt        *float64 `json:"spaceBeforePt,omitempty" yaml:"space_before_pt,omitempty"`
}

// HeadingRules holds one bucket per heading level.
type HeadingRules struct {
	Level1 StyleRule `json:"level1" yaml:"level1"`
	Level2 StyleRule `json:"level2" yaml:"level2"`
	Level3 StyleRule `json:"level3" yaml:"level3"`
	Level4 StyleRule `json:"level4" yaml:"level4"`
}

// Level returns the bucket for a heading level; out-of-range levels clamp.
func (h HeadingRules) Level(n int) StyleRule {
	switch ClampLevel(n) {
	case 1:
		return h.Level1
	case 2:
		return h.Level2
	case 3:
		return h.Level3
	default:
		return h.Level4
	}
}

// ContentTemplate carries the fixed leading and trailing node snapshots.
type ContentTemplate struct {
	LeadingNodes    []Block `json:"leadingNodes"`
	TrailingNodes   []Block `json:"trailingNodes"`
	BodyPlaceholder string  `json:"bodyPlaceholder,omitempty"`
}

// PageMargins are page margins in centimetres. Zero values use the defaults.
type PageMargins struct {
	TopCm    float64 `json:"topCm,omitempty" yaml:"top_cm,omitempty"`
	BottomCm float64 `json:"bottomCm,omitempty" yaml:"bottom_cm,omitempty"`
	LeftCm   float64 `json:"leftCm,omitempty" yaml:"left_cm,omitempty"`
	RightCm  float64 `json:"rightCm,omitempty" yaml:"right_cm,omitempty"`
}

// TemplateRules is the inferred or authored formatting record of a topic.
type TemplateRules struct {
	Body            StyleRule       `json:"body"`
	Headings        HeadingRules    `json:"headings"`
	SuffixLabel     StyleRule       `json:"suffixLabel"`
	ContentTemplate ContentTemplate `json:"contentTemplate"`
	Page            *PageMargins    `json:"page,omitempty"`
}
