package server

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/talenttrek/internal/storage"
	"github.com/jonathan/talenttrek/internal/types"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}
	s.ok(w, http.StatusOK, map[string]any{"user": user})
}

// respondUser writes the updated account with a message.
func (s *Server) respondUser(w http.ResponseWriter, user *types.User, message string) {
	s.ok(w, http.StatusOK, map[string]any{"message": message, "user": user})
}

func (s *Server) handleUpdateBasicProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}

	var req types.UpdateBasicProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err, "Error updating profile")
		return
	}
	if err := req.Validate(); err != nil {
		s.fail(w, r, validationError(err), "Error updating profile")
		return
	}

	updated, err := s.userService.UpdateBasic(r.Context(), user.ID, &req)
	if err != nil {
		s.fail(w, r, err, "Error updating profile")
		return
	}
	s.respondUser(w, updated, "Basic profile updated successfully")
}

func (s *Server) handleUpdateJobSeekerProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}

	var req types.UpdateJobSeekerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err, "Error updating job seeker profile")
		return
	}

	updated, err := s.userService.UpdateJobSeeker(r.Context(), user.ID, &req)
	if err != nil {
		s.fail(w, r, err, "Error updating job seeker profile")
		return
	}
	s.respondUser(w, updated, "Job seeker profile updated successfully")
}

func (s *Server) handleUpdateRecruiterProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}

	var req types.RecruiterProfile
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err, "Error updating recruiter profile")
		return
	}

	updated, err := s.userService.UpdateRecruiter(r.Context(), user.ID, &req)
	if err != nil {
		s.fail(w, r, err, "Error updating recruiter profile")
		return
	}
	s.respondUser(w, updated, "Recruiter profile updated successfully")
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}

	var req types.UpdateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err, msgServerError)
		return
	}

	updated, err := s.userService.UpdateUser(r.Context(), user.ID, &req)
	if err != nil {
		s.fail(w, r, err, msgServerError)
		return
	}
	s.respondUser(w, updated, "Profile updated successfully")
}

func (s *Server) handleAddExperience(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}

	var in types.ExperienceInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.fail(w, r, err, "Error adding experience")
		return
	}
	if err := in.Validate(); err != nil {
		s.fail(w, r, validationError(err), "Error adding experience")
		return
	}

	updated, err := s.userService.AddExperience(r.Context(), user.ID, &in)
	if err != nil {
		s.fail(w, r, err, "Error adding experience")
		return
	}
	s.respondUser(w, updated, "Experience added successfully")
}

// entryID parses a path value naming a profile sub-entry.
func entryID(r *http.Request, name, kind string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, &ErrInvalidID{Kind: kind}
	}
	return id, nil
}

func (s *Server) handleUpdateExperience(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}
	id, err := entryID(r, "experienceId", "experience")
	if err != nil {
		s.fail(w, r, err, "Error updating experience")
		return
	}

	var in types.ExperienceInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.fail(w, r, err, "Error updating experience")
		return
	}
	if err := in.Validate(); err != nil {
		s.fail(w, r, validationError(err), "Error updating experience")
		return
	}

	updated, err := s.userService.UpdateExperience(r.Context(), user.ID, id, &in)
	if err != nil {
		s.fail(w, r, err, "Error updating experience")
		return
	}
	s.respondUser(w, updated, "Experience updated successfully")
}

func (s *Server) handleDeleteExperience(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}
	id, err := entryID(r, "experienceId", "experience")
	if err != nil {
		s.fail(w, r, err, "Error deleting experience")
		return
	}

	updated, err := s.userService.DeleteExperience(r.Context(), user.ID, id)
	if err != nil {
		s.fail(w, r, err, "Error deleting experience")
		return
	}
	s.respondUser(w, updated, "Experience deleted successfully")
}

func (s *Server) handleAddEducation(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}

	var in types.EducationInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.fail(w, r, err, "Error adding education")
		return
	}
	if err := in.Validate(); err != nil {
		s.fail(w, r, validationError(err), "Error adding education")
		return
	}

	updated, err := s.userService.AddEducation(r.Context(), user.ID, &in)
	if err != nil {
		s.fail(w, r, err, "Error adding education")
		return
	}
	s.respondUser(w, updated, "Education added successfully")
}

func (s *Server) handleUploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}

	file, err := s.saveUpload(w, r, "profilePicture", storage.KindImage)
	if err != nil {
		s.fail(w, r, err, "Error uploading profile picture")
		return
	}
	if file == nil {
		s.reject(w, http.StatusBadRequest, "No profile picture uploaded")
		return
	}

	updated, err := s.userService.SetProfilePicture(r.Context(), user.ID, file.Path)
	if err != nil {
		s.discardUpload(r.Context(), file)
		s.fail(w, r, err, "Error uploading profile picture")
		return
	}
	s.ok(w, http.StatusOK, map[string]any{
		"message":        "Profile picture updated successfully",
		"profilePicture": file.Path,
		"user":           updated,
	})
}

func (s *Server) handleUploadCompanyLogo(w http.ResponseWriter, r *http.Request) {
	user, ok := s.caller(w, r)
	if !ok {
		return
	}

	file, err := s.saveUpload(w, r, "companyLogo", storage.KindImage)
	if err != nil {
		s.fail(w, r, err, "Error uploading company logo")
		return
	}
	if file == nil {
		s.reject(w, http.StatusBadRequest, "No company logo uploaded")
		return
	}

	updated, err := s.userService.SetCompanyLogo(r.Context(), user.ID, file.Path)
	if err != nil {
		s.discardUpload(r.Context(), file)
		s.fail(w, r, err, "Error uploading company logo")
		return
	}
	s.ok(w, http.StatusOK, map[string]any{
		"message":     "Company logo updated successfully",
		"companyLogo": file.Path,
		"user":        updated,
	})
}
