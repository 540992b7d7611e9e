package ai

// ContentType names what is being analyzed.
type ContentType string

const (
	ContentQuestion ContentType = "question"
	ContentAnswer   ContentType = "answer"
)

// MaxTags caps the tags returned by GenerateTags.
const MaxTags = 5

// MaxSuggestions caps the queries returned by SuggestSearches.
const MaxSuggestions = 5

// ContentAnalysis is the quality assessment of a question or answer. QualityScore
// is in [0, 100] and SpamProbability in [0, 1].
type ContentAnalysis struct {
	QualityScore    float64  `json:"quality_score"`
	Issues          []string `json:"issues"`
	Suggestions     []string `json:"suggestions"`
	SpamProbability float64  `json:"spam_probability"`
}

// ImprovedQuestion is a clearer rewrite of a question.
type ImprovedQuestion struct {
	ImprovedTitle       string `json:"improved_title"`
	ImprovedDescription string `json:"improved_description"`
}

// Replies as decoded from the model. Pointer fields distinguish absent keys from zero values.

type analysisReply struct {
	QualityScore    *float64  `json:"quality_score" validate:"required,gte=0,lte=100"`
	Issues          *[]string `json:"issues" validate:"required"`
	Suggestions     *[]string `json:"suggestions" validate:"required"`
	SpamProbability *float64  `json:"spam_probability" validate:"required,gte=0,lte=1"`
}

type improvementReply struct {
	ImprovedTitle       string `json:"improved_title" validate:"required"`
	ImprovedDescription string `json:"improved_description" validate:"required"`
}

type tagsReply struct {
	Tags *[]string `json:"tags" validate:"required"`
}

type suggestionsReply struct {
	Suggestions *[]string `json:"suggestions" validate:"required"`
}

// listReply is a reply whose payload is a single string list.
type listReply interface {
	items() *[]string
}

func (r *tagsReply) items() *[]string {
	return r.Tags
}

func (r *suggestionsReply) items() *[]string {
	return r.Suggestions
}
