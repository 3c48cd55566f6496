package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// NewRouter builds the read-only REST surface. Nothing here mutates game
// state.
func (g *Gateway) NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", g.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/info", g.handleInfo).Methods(http.MethodGet)
	r.HandleFunc("/api/sessions", g.handleSessions).Methods(http.MethodGet)
	r.HandleFunc("/api/sessions/{code}/check", g.handleCheckCode).Methods(http.MethodGet)
	return r
}

type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

type infoResponse struct {
	ActiveSessions   int    `json:"activeSessions"`
	ConnectedPlayers int    `json:"connectedPlayers"`
	ActiveWorlds     int    `json:"activeWorlds"`
	WorldSeed        int64  `json:"worldSeed"`
	UptimeSeconds    int64  `json:"uptimeSeconds"`
	StartedAt        string `json:"startedAt"`
}

type checkCodeResponse struct {
	Valid       bool   `json:"valid"`
	SessionID   string `json:"sessionId,omitempty"`
	HostName    string `json:"hostName,omitempty"`
	PlayerCount int    `json:"playerCount,omitempty"`
	MaxPlayers  int    `json:"maxPlayers,omitempty"`
}

func (g *Gateway) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Uptime: time.Since(g.startedAt).Round(time.Second).String(),
	})
}

func (g *Gateway) handleInfo(w http.ResponseWriter, _ *http.Request) {
	sessions, players := g.registry.Stats()
	writeJSON(w, http.StatusOK, infoResponse{
		ActiveSessions:   sessions,
		ConnectedPlayers: players,
		ActiveWorlds:     g.worlds.Count(),
		WorldSeed:        g.seed,
		UptimeSeconds:    int64(time.Since(g.startedAt).Seconds()),
		StartedAt:        g.startedAt.UTC().Format(time.RFC3339),
	})
}

func (g *Gateway) handleSessions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, g.registry.PublicSessions())
}

func (g *Gateway) handleCheckCode(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	info, ok := g.registry.CheckCode(code)
	if !ok {
		writeJSON(w, http.StatusNotFound, checkCodeResponse{Valid: false})
		return
	}
	writeJSON(w, http.StatusOK, checkCodeResponse{
		Valid:       true,
		SessionID:   info.ID,
		HostName:    info.HostName,
		PlayerCount: info.PlayerCount,
		MaxPlayers:  info.MaxPlayers,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
