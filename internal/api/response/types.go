package response

import (
	"time"

	"github.com/musyaffa-iman/EchoShift/internal/model"
	"github.com/musyaffa-iman/EchoShift/internal/services/auth"
)

// Player is the public projection of a player. The password hash never
// leaves the service.
type Player struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Experience int    `json:"experience"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:         p.ID.String(),
		Username:   p.Username,
		Experience: p.Experience,
	}
}

// AuthResponse is the response for register and login
type AuthResponse struct {
	Player       Player `json:"player"`
	SessionToken string `json:"sessionToken"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Player:       PlayerFromModel(&s.Player),
		SessionToken: s.Token,
	}
}

// Run represents a gameplay run in API responses
type Run struct {
	ID           string    `json:"id"`
	PlayerID     string    `json:"playerId"`
	Score        int       `json:"score"`
	TimeElapsed  float64   `json:"timeElapsed"`
	LevelReached int       `json:"levelReached"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RunFromModel converts a model.Run to a response Run
func RunFromModel(r *model.Run) Run {
	return Run{
		ID:           r.ID.String(),
		PlayerID:     r.PlayerID.String(),
		Score:        r.Score,
		TimeElapsed:  r.TimeElapsed,
		LevelReached: r.LevelReached,
		CreatedAt:    r.CreatedAt,
	}
}

// RunsFromModel converts a list of runs, keeping their order.
// The result is never nil so it encodes as [].
func RunsFromModel(runs []*model.Run) []Run {
	out := make([]Run, len(runs))
	for i, r := range runs {
		out[i] = RunFromModel(r)
	}
	return out
}

// Health is the payload of the health endpoint
type Health struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}
