package attempt

import "github.com/stemsi/onlinexam-backend/internal/model"

// Score counts the answers that exactly equal the correct answer of the
// question at the same index. Missing, empty and surplus answers score 0.
// Comparison is case-sensitive and untrimmed.
func Score(questions []model.Question, answers []string) int {
	score := 0
	for i, q := range questions {
		if i >= len(answers) {
			break
		}
		if answers[i] != "" && answers[i] == q.Answer {
			score++
		}
	}
	return score
}

// Grade reports per-question correctness using the same rules as Score.
func Grade(questions []model.Question, answers []string) []bool {
	result := make([]bool, len(questions))
	for i, q := range questions {
		result[i] = i < len(answers) && answers[i] != "" && answers[i] == q.Answer
	}
	return result
}
