package server

import (
	"net/http"

	"github.com/jonathan/talenttrek/internal/recommend"
)

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}

	result, err := s.recommender.Recommend(r.Context(), user.ID)
	if err != nil {
		s.fail(w, r, err, "Error getting recommendations")
		return
	}

	if result.NoProfileData {
		s.ok(w, http.StatusOK, map[string]any{
			"recommendations": []recommend.Match{},
			"message":         recommend.NoProfileDataMessage,
		})
		return
	}

	s.ok(w, http.StatusOK, map[string]any{
		"recommendations": result.Matches,
		"userSkills":      result.Skills,
		"skillSource":     result.Source,
	})
}
