package model

// Choice is one of the three playable hand shapes
type Choice string

const (
	ChoiceRock     Choice = "rock"
	ChoicePaper    Choice = "paper"
	ChoiceScissors Choice = "scissors"
)

// Choices lists every valid choice, in a fixed order
var Choices = []Choice{ChoiceRock, ChoicePaper, ChoiceScissors}

// ParseChoice validates a raw string against the choice enum
func ParseChoice(s string) (Choice, error) {
	switch Choice(s) {
	case ChoiceRock, ChoicePaper, ChoiceScissors:
		return Choice(s), nil
	default:
		return "", ErrInvalidChoice
	}
}

// Outcome is the result of resolving two choices against each other
type Outcome int

const (
	OutcomeTie Outcome = iota
	OutcomeFirstWins
	OutcomeSecondWins
)

// Resolve maps a pair of choices to an outcome.
// Rock beats scissors, scissors beats paper, paper beats rock.
func Resolve(a, b Choice) Outcome {
	if a == b {
		return OutcomeTie
	}
	if (a == ChoiceRock && b == ChoiceScissors) ||
		(a == ChoiceScissors && b == ChoicePaper) ||
		(a == ChoicePaper && b == ChoiceRock) {
		return OutcomeFirstWins
	}
	return OutcomeSecondWins
}
