package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
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
		o.printJSON(map[string]string{"message": msg})
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case AuthResult:
		o.printAuthResult(v)
	case Run:
		o.printRun(v)
	case []Run:
		o.printRuns(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Experience int    `json:"experience"`
}

// AuthResult combines player and token
type AuthResult struct {
	Player       Player `json:"player"`
	SessionToken string `json:"sessionToken"`
}

// Run response type
type Run struct {
	ID           string    `json:"id"`
	PlayerID     string    `json:"playerId"`
	Score        int       `json:"score"`
	TimeElapsed  float64   `json:"timeElapsed"`
	LevelReached int       `json:"levelReached"`
	CreatedAt    time.Time `json:"createdAt"`
}

// HealthResult response type
type HealthResult struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

func (o *Output) printPlayer(p Player) {
	fmt.Fprintf(o.w, "Player: %s (%s)\n", p.Username, p.ID)
	fmt.Fprintf(o.w, "Experience: %d\n", p.Experience)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printPlayer(a.Player)
	fmt.Fprintf(o.w, "Token: %s\n", a.SessionToken)
}

func (o *Output) printRun(r Run) {
	fmt.Fprintf(o.w, "Run: %s\n", r.ID)
	fmt.Fprintf(o.w, "Player: %s\n", r.PlayerID)
	fmt.Fprintf(o.w, "Score: %d\n", r.Score)
	fmt.Fprintf(o.w, "Time: %s\n", formatSeconds(r.TimeElapsed))
	fmt.Fprintf(o.w, "Level: %d\n", r.LevelReached)
}

func (o *Output) printRuns(runs []Run) {
	if len(runs) == 0 {
		fmt.Fprintln(o.w, "No runs recorded")
		return
	}

	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSCORE\tLEVEL\tTIME\tID")
	for i, r := range runs {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%s\n", i+1, r.Score, r.LevelReached, formatSeconds(r.TimeElapsed), r.ID)
	}
	_ = tw.Flush()
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	if h.Storage != "" {
		fmt.Fprintf(o.w, "Storage: %s\n", h.Storage)
	}
}

func formatSeconds(s float64) string {
	return (time.Duration(s * float64(time.Second))).Round(10 * time.Millisecond).String()
}
