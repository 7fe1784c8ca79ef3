package question

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Issue captures a validation problem in a question file.
type Issue struct {
	Field   string
	Message string
}

// MalformedDataError reports a question file that cannot be trusted.
type MalformedDataError struct {
	Source string
	Issues []Issue
}

// Error returns a readable message for validation failures.
func (err *MalformedDataError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return ""
	}
	parts := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	if err.Source != "" {
		return fmt.Sprintf("malformed question data in %s: %s", err.Source, strings.Join(parts, "; "))
	}
	return fmt.Sprintf("malformed question data: %s", strings.Join(parts, "; "))
}

type issueCollector struct {
	issues []Issue
}

func (collector *issueCollector) add(field, message string) {
	collector.issues = append(collector.issues, Issue{Field: field, Message: message})
}

// addValidation converts validator tag failures into issues under prefix.
func (collector *issueCollector) addValidation(prefix string, err error) {
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		collector.add(prefix, err.Error())
		return
	}
	for _, fe := range fieldErrs {
		field := fe.Namespace()
		if idx := strings.Index(field, "."); idx >= 0 {
			field = field[idx+1:]
		}
		collector.add(prefix+"."+field, tagMessage(fe))
	}
}

func (collector *issueCollector) result() error {
	if len(collector.issues) == 0 {
		return nil
	}
	return &MalformedDataError{Issues: collector.issues}
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of %s, got %q", fe.Param(), fmt.Sprint(fe.Value()))
	case "len":
		return fmt.Sprintf("must have exactly %s entries", fe.Param())
	case "gt":
		return "must be a positive integer"
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}

var recordValidator = newRecordValidator()

func newRecordValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// normalizeSpec resolves field aliases, validates every record, and returns
// the questions sorted by id.
func normalizeSpec(spec fileSpec) (Bank, error) {
	collector := &issueCollector{}
	if len(spec.Questions) == 0 {
		collector.add("questions", "must include at least one entry")
	}

	seenIDs := map[int]struct{}{}
	questions := make([]Question, 0, len(spec.Questions))
	for i, rec := range spec.Questions {
		prefix := fmt.Sprintf("questions[%d]", i)
		check := resolveRecord(rec, spec.AnswerKey, prefix, collector)
		collector.addValidation(prefix, recordValidator.Struct(check))

		if check.ID > 0 {
			if _, exists := seenIDs[check.ID]; exists {
				collector.add(prefix+".id", fmt.Sprintf("duplicate id %d", check.ID))
			} else {
				seenIDs[check.ID] = struct{}{}
			}
		}

		subject, ok := ParseSubject(check.Subject)
		if check.Subject != "" && !ok {
			collector.add(prefix+".subject", fmt.Sprintf("unknown subject %q", check.Subject))
		}

		choices := make([]Choice, 0, len(check.Choices))
		for j, choice := range check.Choices {
			if len(check.Choices) == len(Letters) && choice.Label != "" && Letter(choice.Label) != Letters[j] {
				collector.add(fmt.Sprintf("%s.choices[%d].label", prefix, j), fmt.Sprintf("expected %s, got %q", Letters[j], choice.Label))
			}
			choices = append(choices, Choice{Label: Letter(choice.Label), Text: choice.Text})
		}

		questions = append(questions, Question{
			ID:            check.ID,
			Subject:       subject,
			FactPattern:   check.FactPattern,
			Stem:          check.Stem,
			Choices:       choices,
			CorrectAnswer: Letter(check.CorrectAnswer),
		})
	}

	keyIDs := make([]int, 0, len(spec.AnswerKey))
	for id := range spec.AnswerKey {
		keyIDs = append(keyIDs, id)
	}
	sort.Ints(keyIDs)
	for _, id := range keyIDs {
		if _, ok := seenIDs[id]; !ok {
			collector.add(fmt.Sprintf("answer_key[%d]", id), "does not match any question")
		}
	}

	if err := collector.result(); err != nil {
		return Bank{}, err
	}
	sort.SliceStable(questions, func(i, j int) bool { return questions[i].ID < questions[j].ID })
	return Bank{Title: strings.TrimSpace(spec.Title), Questions: questions}, nil
}

// resolveRecord merges field aliases and the answer key into one view.
func resolveRecord(rec record, answerKey map[int]string, prefix string, collector *issueCollector) recordCheck {
	id := rec.ID
	if id == 0 {
		id = rec.QuestionNumber
	} else if rec.QuestionNumber != 0 && rec.QuestionNumber != id {
		collector.add(prefix+".question_number", fmt.Sprintf("conflicts with id %d", id))
	}

	check := recordCheck{
		ID:          id,
		Subject:     strings.TrimSpace(rec.Subject),
		FactPattern: pickAlias(rec.FactPattern, rec.QuestionText, prefix+".question_text", collector),
		Stem:        pickAlias(rec.Stem, rec.QuestionStem, prefix+".question_stem", collector),
	}
	for _, choice := range rec.Choices {
		check.Choices = append(check.Choices, choiceRecord{
			Label: normalizeLabel(choice.Label),
			Text:  strings.TrimSpace(choice.Text),
		})
	}

	correct := normalizeLabel(rec.CorrectAnswer)
	keyed := normalizeLabel(answerKey[id])
	switch {
	case correct == "":
		correct = keyed
	case keyed != "" && keyed != correct:
		collector.add(prefix+".correct_answer", fmt.Sprintf("%s disagrees with answer_key %s", correct, keyed))
	}
	check.CorrectAnswer = correct
	return check
}

func pickAlias(primary, alias, aliasField string, collector *issueCollector) string {
	primary = strings.TrimSpace(primary)
	alias = strings.TrimSpace(alias)
	if primary == "" {
		return alias
	}
	if alias != "" && alias != primary {
		collector.add(aliasField, "conflicts with canonical field")
	}
	return primary
}

func normalizeLabel(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}
