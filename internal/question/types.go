package question

import "strings"

// Letter is a single multiple-choice answer label.
type Letter string

const (
	LetterA Letter = "A"
	LetterB Letter = "B"
	LetterC Letter = "C"
	LetterD Letter = "D"
	// Unparseable marks an attempt that produced no usable letter.
	Unparseable Letter = "unparseable"
)

// Letters lists the valid answer labels in choice order.
var Letters = []Letter{LetterA, LetterB, LetterC, LetterD}

// Valid reports whether the letter is one of A-D.
func (l Letter) Valid() bool {
	switch l {
	case LetterA, LetterB, LetterC, LetterD:
		return true
	default:
		return false
	}
}

// Subject is an MBE subject area.
type Subject string

const (
	CivilProcedure    Subject = "civil_procedure"
	ConstitutionalLaw Subject = "constitutional_law"
	Contracts         Subject = "contracts"
	CriminalLaw       Subject = "criminal_law"
	Evidence          Subject = "evidence"
	RealProperty      Subject = "real_property"
	Torts             Subject = "torts"
)

var subjectTitles = map[Subject]string{
	CivilProcedure:    "Civil Procedure",
	ConstitutionalLaw: "Constitutional Law",
	Contracts:         "Contracts",
	CriminalLaw:       "Criminal Law and Procedure",
	Evidence:          "Evidence",
	RealProperty:      "Real Property",
	Torts:             "Torts",
}

var subjectAliases = map[string]Subject{
	"civil procedure":            CivilProcedure,
	"civ pro":                    CivilProcedure,
	"constitutional law":         ConstitutionalLaw,
	"con law":                    ConstitutionalLaw,
	"contracts":                  Contracts,
	"contracts and sales":        Contracts,
	"criminal law":               CriminalLaw,
	"criminal law and procedure": CriminalLaw,
	"criminal procedure":         CriminalLaw,
	"evidence":                   Evidence,
	"real property":              RealProperty,
	"property":                   RealProperty,
	"torts":                      Torts,
}

// ParseSubject resolves a slug or display name into a Subject.
func ParseSubject(value string) (Subject, bool) {
	key := strings.ToLower(strings.TrimSpace(value))
	if key == "" {
		return "", false
	}
	if _, ok := subjectTitles[Subject(key)]; ok {
		return Subject(key), true
	}
	if subject, ok := subjectAliases[strings.ReplaceAll(key, "_", " ")]; ok {
		return subject, true
	}
	return "", false
}

// Title returns the display name of the subject.
func (s Subject) Title() string {
	if title, ok := subjectTitles[s]; ok {
		return title
	}
	return string(s)
}

// Choice is one labelled answer option.
type Choice struct {
	Label Letter `json:"label"`
	Text  string `json:"text"`
}

// Question is a single exam item. Values are read-only after Load.
type Question struct {
	ID            int      `json:"id"`
	Subject       Subject  `json:"subject"`
	FactPattern   string   `json:"fact_pattern"`
	Stem          string   `json:"stem"`
	Choices       []Choice `json:"choices"`
	CorrectAnswer Letter   `json:"correct_answer"`
}

// ChoiceText returns the option text for a label.
func (q Question) ChoiceText(label Letter) string {
	for _, choice := range q.Choices {
		if choice.Label == label {
			return choice.Text
		}
	}
	return ""
}

// Bank is the ordered question set for one run.
type Bank struct {
	Source    string
	Title     string
	Questions []Question
}

// IDs returns the question ids in exam order.
func (b Bank) IDs() []int {
	ids := make([]int, 0, len(b.Questions))
	for _, item := range b.Questions {
		ids = append(ids, item.ID)
	}
	return ids
}

// fileSpec is the on-disk question file schema. The question_* aliases
// match the layout of the published MBE sample file.
type fileSpec struct {
	Title     string         `json:"title" yaml:"title"`
	Source    string         `json:"source" yaml:"source"`
	Questions []record       `json:"questions" yaml:"questions"`
	AnswerKey map[int]string `json:"answer_key" yaml:"answer_key"`
}

type record struct {
	ID             int            `json:"id" yaml:"id"`
	QuestionNumber int            `json:"question_number" yaml:"question_number"`
	Subject        string         `json:"subject" yaml:"subject"`
	FactPattern    string         `json:"fact_pattern" yaml:"fact_pattern"`
	QuestionText   string         `json:"question_text" yaml:"question_text"`
	Stem           string         `json:"stem" yaml:"stem"`
	QuestionStem   string         `json:"question_stem" yaml:"question_stem"`
	Choices        []choiceRecord `json:"choices" yaml:"choices"`
	CorrectAnswer  string         `json:"correct_answer" yaml:"correct_answer"`
}

type choiceRecord struct {
	Label string `json:"label" yaml:"label" validate:"required,oneof=A B C D"`
	Text  string `json:"text" yaml:"text" validate:"required"`
}

// recordCheck is the alias-resolved view of a record used for tag validation.
type recordCheck struct {
	ID            int            `json:"id" validate:"gt=0"`
	Subject       string         `json:"subject" validate:"required"`
	FactPattern   string         `json:"fact_pattern" validate:"required"`
	Stem          string         `json:"stem" validate:"required"`
	Choices       []choiceRecord `json:"choices" validate:"len=4,dive"`
	CorrectAnswer string         `json:"correct_answer" validate:"required,oneof=A B C D"`
}
