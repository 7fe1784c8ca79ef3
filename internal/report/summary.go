package report

import (
	"sort"

	"mbebench/internal/evaluation"
	"mbebench/internal/question"
)

// ProviderScore aggregates one provider's attempts.
type ProviderScore struct {
	ProviderID string  `json:"provider_id"`
	Model      string  `json:"model"`
	Correct    int     `json:"correct"`
	Incorrect  int     `json:"incorrect"`
	Errors     int     `json:"errors"`
	Total      int     `json:"total"`
	Accuracy   float64 `json:"accuracy"`
}

// SubjectScore breaks provider scores down for one subject.
type SubjectScore struct {
	Subject   question.Subject `json:"subject"`
	Questions int              `json:"questions"`
	Providers []ProviderScore  `json:"providers"`
}

// PairAgreement counts how often two providers chose the same letter on
// questions both answered.
type PairAgreement struct {
	First    string `json:"first"`
	Second   string `json:"second"`
	Agree    int    `json:"agree"`
	Compared int    `json:"compared"`
}

// Summary is derived from questions and attempts and is never a source of
// truth on its own.
type Summary struct {
	Questions        int             `json:"questions"`
	Providers        []ProviderScore `json:"providers"`
	Subjects         []SubjectScore  `json:"subjects"`
	Agreement        int             `json:"agreement"`
	UnanimousCorrect int             `json:"unanimous_correct"`
	Pairwise         []PairAgreement `json:"pairwise"`
}

// Provider returns the score for id.
func (s Summary) Provider(id string) (ProviderScore, bool) {
	for _, score := range s.Providers {
		if score.ProviderID == id {
			return score, true
		}
	}
	return ProviderScore{}, false
}

// Summarize scores attempts against the answer key. Providers keep the order
// they first appear in attempts; subjects follow exam order.
func Summarize(questions []question.Question, attempts []evaluation.Attempt) Summary {
	index := newAttemptIndex(questions, attempts)
	summary := Summary{
		Questions: len(questions),
		Providers: make([]ProviderScore, 0, len(index.providers)),
		Pairwise:  []PairAgreement{},
	}

	subjectOrder := []question.Subject{}
	subjectCounts := map[question.Subject]int{}
	for _, item := range questions {
		if _, seen := subjectCounts[item.Subject]; !seen {
			subjectOrder = append(subjectOrder, item.Subject)
		}
		subjectCounts[item.Subject]++
	}

	for _, providerID := range index.providers {
		summary.Providers = append(summary.Providers, index.score(providerID, questions, ""))
	}
	summary.Subjects = make([]SubjectScore, 0, len(subjectOrder))
	for _, subject := range subjectOrder {
		entry := SubjectScore{Subject: subject, Questions: subjectCounts[subject]}
		for _, providerID := range index.providers {
			entry.Providers = append(entry.Providers, index.score(providerID, questions, subject))
		}
		summary.Subjects = append(summary.Subjects, entry)
	}

	for _, item := range questions {
		letter, agreed := index.agreement(item.ID)
		if !agreed {
			continue
		}
		summary.Agreement++
		if letter == item.CorrectAnswer {
			summary.UnanimousCorrect++
		}
	}

	for i := 0; i < len(index.providers); i++ {
		for j := i + 1; j < len(index.providers); j++ {
			pair := PairAgreement{First: index.providers[i], Second: index.providers[j]}
			for _, item := range questions {
				first, okFirst := index.get(item.ID, pair.First)
				second, okSecond := index.get(item.ID, pair.Second)
				if !okFirst || !okSecond || first.Failed() || second.Failed() {
					continue
				}
				pair.Compared++
				if first.Letter == second.Letter {
					pair.Agree++
				}
			}
			summary.Pairwise = append(summary.Pairwise, pair)
		}
	}
	return summary
}

// attemptIndex looks attempts up by question and provider.
type attemptIndex struct {
	providers []string
	models    map[string]string
	byPair    map[int]map[string]evaluation.Attempt
}

func newAttemptIndex(questions []question.Question, attempts []evaluation.Attempt) attemptIndex {
	known := make(map[int]struct{}, len(questions))
	for _, item := range questions {
		known[item.ID] = struct{}{}
	}
	index := attemptIndex{models: map[string]string{}, byPair: map[int]map[string]evaluation.Attempt{}}
	for _, attempt := range attempts {
		if _, ok := known[attempt.QuestionID]; !ok {
			continue
		}
		if _, seen := index.models[attempt.ProviderID]; !seen {
			index.providers = append(index.providers, attempt.ProviderID)
			index.models[attempt.ProviderID] = attempt.Model
		}
		row := index.byPair[attempt.QuestionID]
		if row == nil {
			row = map[string]evaluation.Attempt{}
			index.byPair[attempt.QuestionID] = row
		}
		row[attempt.ProviderID] = attempt
	}
	return index
}

func (idx attemptIndex) get(questionID int, providerID string) (evaluation.Attempt, bool) {
	attempt, ok := idx.byPair[questionID][providerID]
	return attempt, ok
}

// score tallies a provider; an empty subject means every question.
func (idx attemptIndex) score(providerID string, questions []question.Question, subject question.Subject) ProviderScore {
	score := ProviderScore{ProviderID: providerID, Model: idx.models[providerID]}
	for _, item := range questions {
		if subject != "" && item.Subject != subject {
			continue
		}
		attempt, ok := idx.get(item.ID, providerID)
		if !ok {
			continue
		}
		score.Total++
		switch {
		case attempt.Failed():
			score.Errors++
		case attempt.Letter == item.CorrectAnswer:
			score.Correct++
		default:
			score.Incorrect++
		}
	}
	if score.Total > 0 {
		score.Accuracy = float64(score.Correct) / float64(score.Total)
	}
	return score
}

// agreement reports the shared letter when at least two providers answered
// and every provider chose the same valid letter.
func (idx attemptIndex) agreement(questionID int) (question.Letter, bool) {
	if len(idx.providers) < 2 {
		return "", false
	}
	var shared question.Letter
	for _, providerID := range idx.providers {
		attempt, ok := idx.get(questionID, providerID)
		if !ok || attempt.Failed() || !attempt.Letter.Valid() {
			return "", false
		}
		if shared == "" {
			shared = attempt.Letter
		} else if attempt.Letter != shared {
			return "", false
		}
	}
	return shared, true
}

// sortedProviders returns provider ids sorted by accuracy then id.
func sortedProviders(scores []ProviderScore) []ProviderScore {
	out := append([]ProviderScore(nil), scores...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Accuracy != out[j].Accuracy {
			return out[i].Accuracy > out[j].Accuracy
		}
		return out[i].ProviderID < out[j].ProviderID
	})
	return out
}
