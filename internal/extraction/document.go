package extraction

// DocumentType is the category the model assigns to a document.
// Values outside the known set are passed through unchanged.
type DocumentType string

const (
	Conference      DocumentType = "CONFERENCE"
	ResearchFunding DocumentType = "RESEARCH_FUNDING"
	Patent          DocumentType = "PATENT"
	Unknown         DocumentType = "UNKNOWN"
)

// DocumentTypes lists the admissible document types in prompt order
var DocumentTypes = []DocumentType{Conference, ResearchFunding, Patent, Unknown}

// FieldKind is the placeholder a field is given in the prompt
type FieldKind int

const (
	// TextField is rendered as an empty string
	TextField FieldKind = iota
	// DateField is rendered as "YYYY-MM-DD"
	DateField
	// NullField is rendered as null
	NullField
)

// Field is a single named entry of a FieldSchema
type Field struct {
	Name string
	Kind FieldKind
}

// FieldSchema is the ordered set of fields the model is asked to fill for a document type
type FieldSchema struct {
	Type   DocumentType
	Fields []Field
}

// Schemas holds the field schema of every known document type, in prompt order
var Schemas = []FieldSchema{
	{
		Type: Conference,
		Fields: []Field{
			{Name: "title", Kind: TextField},
			{Name: "conference_name", Kind: TextField},
			{Name: "author_position", Kind: NullField},
			{Name: "conference_date", Kind: DateField},
			{Name: "proceedings_details", Kind: TextField},
			{Name: "conference_link", Kind: TextField},
			{Name: "indexing_details", Kind: TextField},
		},
	},
	{
		Type: ResearchFunding,
		Fields: []Field{
			{Name: "funding_agency", Kind: TextField},
			{Name: "project_title", Kind: TextField},
			{Name: "amount", Kind: NullField},
			{Name: "start_date", Kind: DateField},
			{Name: "end_date", Kind: DateField},
		},
	},
	{
		Type: Patent,
		Fields: []Field{
			{Name: "patent_title", Kind: TextField},
			{Name: "application_no", Kind: TextField},
			{Name: "patent_status", Kind: TextField},
			{Name: "filed_date", Kind: DateField},
			{Name: "published_date", Kind: DateField},
			{Name: "granted_date", Kind: DateField},
		},
	},
}

// Result is the normalized answer of the model for one document
type Result struct {
	DocumentType  DocumentType   `json:"document_type"`
	ExtractedData map[string]any `json:"extracted_data"`
	Confidence    float64        `json:"confidence"`
}
