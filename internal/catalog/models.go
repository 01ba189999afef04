package catalog

// Collection categories. Only classwork is subject to the network-location
// gate; anything unrecognized gets homework treatment.
type Category string

const (
	CategoryClasswork Category = "classwork"
	CategoryHomework  Category = "homework"
)

// Normalize maps unknown/empty categories to homework.
func (c Category) Normalize() Category {
	if c == CategoryClasswork {
		return CategoryClasswork
	}
	return CategoryHomework
}

type Choice struct {
	Label string `json:"label"`
	Text  string `json:"text,omitempty"`
}

// Question lives inside an assignment's questions_json array. The array
// position is the question's identity for progress tracking, so the slice
// order is canonical and must never be re-sorted.
type Question struct {
	ID     string `json:"id,omitempty"`
	Type   string `json:"type"` // numerical | multiple_choice
	Prompt string `json:"prompt,omitempty"`

	Target           float64  `json:"target,omitempty"`            // numerical
	TolerancePercent float64  `json:"tolerance_percent,omitempty"` // numerical
	Choices          []Choice `json:"choices,omitempty"`           // multiple_choice
	CorrectLabel     string   `json:"correct_label,omitempty"`     // multiple_choice

	SolutionText  string `json:"solution_text,omitempty"`
	SolutionAsset string `json:"solution_asset,omitempty"` // blob-store key for a diagram
}

type Assignment struct {
	ID                 string     `json:"id"`
	ClassroomID        string     `json:"classroom_id"`
	CollectionID       string     `json:"collection_id,omitempty"`
	OrderIndex         int        `json:"order_index"`
	Title              string     `json:"title"`
	Published          bool       `json:"published"`
	RequiredVariations int        `json:"required_variations"` // 0 = linear mode
	ShowAllQuestions   bool       `json:"show_all_questions"`
	Questions          []Question `json:"questions"`
	CreatedAt          int64      `json:"created_at,omitempty"`
}

// VariationMode reports whether the assignment treats its questions as
// interchangeable variations of one problem.
func (a Assignment) VariationMode() bool { return a.RequiredVariations > 0 }

// Meta is the slice of assignment state the progress controller needs for
// gating decisions: publication, mode, and which gate policy applies.
type Meta struct {
	ID                 string
	ClassroomID        string
	CollectionID       string
	OrderIndex         int
	Title              string
	Published          bool
	RequiredVariations int
	ShowAllQuestions   bool
	QuestionCount      int
	CollectionCategory Category // homework when the assignment has no collection
}

func (m Meta) VariationMode() bool { return m.RequiredVariations > 0 }

type Collection struct {
	ID            string   `json:"id"`
	ClassroomID   string   `json:"classroom_id"`
	Title         string   `json:"title"`
	Category      Category `json:"category"`
	ScheduledDate int64    `json:"scheduled_date,omitempty"` // unix; 0 = always visible
	CreatedAt     int64    `json:"created_at,omitempty"`
}

type Classroom struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	AllowedIP      string `json:"allowed_ip,omitempty"`
	IPCheckEnabled bool   `json:"ip_check_enabled"`
	CreatedAt      int64  `json:"created_at,omitempty"`
}

// StudentView strips everything a student must not see before answering:
// correctness data and solutions. Solutions come back only through the
// reveal flow.
func (a Assignment) StudentView() Assignment {
	out := a
	out.Questions = make([]Question, len(a.Questions))
	for i, q := range a.Questions {
		q.Target = 0
		q.TolerancePercent = 0
		q.CorrectLabel = ""
		q.SolutionText = ""
		q.SolutionAsset = ""
		out.Questions[i] = q
	}
	return out
}
