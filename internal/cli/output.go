package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case User:
		o.printUser(v)
	case AuthResult:
		o.printAuthResult(v)
	case Match:
		o.printMatch(v)
	case []OpenMatch:
		o.printOpenMatches(v)
	case PlayResult:
		o.printPlayResult(v)
	case []RankingEntry:
		o.printRanking(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// User response type (matches API)
type User struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	GamesPlayed int     `json:"gamesPlayed"`
	WinRate     float64 `json:"winRate"`
}

// AuthResult combines user and token
type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Participant response type
type Participant struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Machine  bool   `json:"machine"`
}

// Round response type
type Round struct {
	Number        int     `json:"number"`
	Player1Choice *string `json:"player1Choice"`
	Player2Choice *string `json:"player2Choice"`
	Winner        string  `json:"winner"`
}

// Match response type
type Match struct {
	ID           string       `json:"id"`
	Player1      Participant  `json:"player1"`
	Player2      *Participant `json:"player2"`
	Status       string       `json:"status"`
	Player1Score int          `json:"player1Score"`
	Player2Score int          `json:"player2Score"`
	Winner       *Participant `json:"winner"`
	Rounds       []Round      `json:"rounds"`
}

// OpenMatch response type
type OpenMatch struct {
	ID        string      `json:"id"`
	Player1   Participant `json:"player1"`
	CreatedAt time.Time   `json:"createdAt"`
}

// PlayResult response type
type PlayResult struct {
	State         string `json:"state"`
	MatchFinished bool   `json:"matchFinished"`
	Match         Match  `json:"match"`
	Round         *Round `json:"round"`
}

// RankingEntry response type
type RankingEntry struct {
	Rank        int     `json:"rank"`
	UserID      string  `json:"userId"`
	Username    string  `json:"username"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	GamesPlayed int     `json:"gamesPlayed"`
	WinRate     float64 `json:"winRate"`
}

func (o *Output) printUser(u User) {
	fmt.Printf("User: %s (%s)\n", u.Username, u.ID)
	fmt.Printf("Record: %d wins / %d losses over %d games (%.0f%%)\n",
		u.Wins, u.Losses, u.GamesPlayed, u.WinRate*100)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printUser(a.User)
	fmt.Printf("Token: %s\n", a.Token)
}

func participantName(p *Participant) string {
	if p == nil {
		return "(open slot)"
	}
	return p.Username
}

func (o *Output) printMatch(m Match) {
	fmt.Printf("Match: %s\n", m.ID)
	fmt.Printf("Status: %s\n", m.Status)
	fmt.Printf("%s %d - %d %s\n",
		m.Player1.Username, m.Player1Score, m.Player2Score, participantName(m.Player2))

	for _, r := range m.Rounds {
		p1 := "?"
		p2 := "?"
		if r.Player1Choice != nil {
			p1 = *r.Player1Choice
		}
		if r.Player2Choice != nil {
			p2 = *r.Player2Choice
		}
		result := r.Winner
		if result == "" {
			result = "open"
		}
		fmt.Printf("  Round %d: %s vs %s (%s)\n", r.Number, p1, p2, result)
	}

	if m.Winner != nil {
		fmt.Printf("Winner: %s\n", m.Winner.Username)
	}
}

func (o *Output) printOpenMatches(matches []OpenMatch) {
	if len(matches) == 0 {
		fmt.Println("No open matches")
		return
	}
	fmt.Printf("Open matches (%d):\n", len(matches))
	for _, m := range matches {
		fmt.Printf("  %s - created by %s at %s\n",
			m.ID, m.Player1.Username, m.CreatedAt.Format(time.RFC3339))
	}
}

func (o *Output) printPlayResult(p PlayResult) {
	if p.State == "pending" {
		fmt.Println("Choice recorded, waiting for opponent")
		return
	}

	if p.Round != nil {
		result := p.Round.Winner
		if result == "tie" {
			fmt.Printf("Round %d: tie\n", p.Round.Number)
		} else {
			fmt.Printf("Round %d: %s wins\n", p.Round.Number, result)
		}
	}

	o.printMatch(p.Match)

	if p.MatchFinished {
		fmt.Println("Match finished!")
	}
}

func (o *Output) printRanking(entries []RankingEntry) {
	if len(entries) == 0 {
		fmt.Println("No ranked players yet")
		return
	}
	fmt.Println("Leaderboard:")
	for _, e := range entries {
		fmt.Printf("  %2d. %s - %d wins / %d games (%.0f%%)\n",
			e.Rank, e.Username, e.Wins, e.GamesPlayed, e.WinRate*100)
	}
}
