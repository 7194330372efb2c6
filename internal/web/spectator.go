package web

import (
	"net/http"
	"sort"
	"time"

	"github.com/tapchess/tapchess/internal/engine"
)

// SessionIndex summarizes a session for spectators browsing the list
type SessionIndex struct {
	SessionID    string      `json:"sessionId"`
	CreatedAt    time.Time   `json:"createdAt"`
	SideToMove   engine.Side `json:"sideToMove"`
	MoveCount    int         `json:"moveCount"`
	CursorIndex  int         `json:"cursorIndex"`
	AutoPlaying  bool        `json:"autoPlaying"`
	WatcherCount int         `json:"watcherCount"`
}

// ListSessionsHandler returns the live sessions, newest first
func (s *Service) ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	sessions := s.registry.List()

	index := make([]SessionIndex, 0, len(sessions))
	for _, session := range sessions {
		entry := SessionIndex{
			SessionID:    session.ID,
			CreatedAt:    session.CreatedAt,
			WatcherCount: s.hub.WatcherCount(session.ID),
		}
		session.WithGame(func(g *engine.Game) {
			entry.SideToMove = g.SideToMove()
			entry.MoveCount = g.TotalMoves()
			entry.CursorIndex = g.CurrentMoveIndex()
			entry.AutoPlaying = g.IsAutoPlaying()
		})
		index = append(index, entry)
	}

	sort.Slice(index, func(i, j int) bool {
		return index[i].CreatedAt.After(index[j].CreatedAt)
	})

	writeJSON(w, map[string]interface{}{
		"sessions": index,
		"total":    len(index),
	})
}
