package server

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/talenttrek/internal/config"
	"github.com/jonathan/talenttrek/internal/db"
	"github.com/jonathan/talenttrek/internal/logger"
	"github.com/jonathan/talenttrek/internal/recommend"
	"github.com/jonathan/talenttrek/internal/types"
)

// UserService provides business logic for accounts and their profile documents
type UserService struct {
	db             Store
	passwordConfig config.PasswordConfig
	logger         *zap.Logger
	now            func() time.Time
}

// NewUserService creates a new UserService with the given dependencies
func NewUserService(store Store, passwordConfig config.PasswordConfig, log *zap.Logger) *UserService {
	return &UserService{
		db:             store,
		passwordConfig: passwordConfig,
		logger:         logger.OrNop(log),
		now:            time.Now,
	}
}

// Signup creates a new account with password authentication
func (s *UserService) Signup(ctx context.Context, req *types.SignupRequest) (*types.User, error) {
	existing, err := s.db.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if existing != nil {
		return nil, &ErrEmailAlreadyExists{Email: req.Email}
	}

	passwordHash, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	record, err := s.db.CreateUser(ctx, &db.UserCreateInput{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         req.Role,
		Profile:      initialProfile(req.Role),
	})
	if err != nil {
		// Lost a race with a concurrent signup for the same address.
		if errors.Is(err, db.ErrUniqueViolation) {
			return nil, &ErrEmailAlreadyExists{Email: req.Email}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return record.Public(), nil
}

func initialProfile(role string) types.Profile {
	var profile types.Profile
	if role == types.RoleJobSeeker {
		profile.EnsureJobSeeker()
	} else {
		profile.EnsureRecruiter()
	}
	return profile
}

// Login authenticates a user and returns user data
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*types.User, error) {
	record, err := s.db.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	// Security: Always return generic error if user not found or password wrong
	if record == nil || !record.IsActive {
		return nil, &ErrInvalidCredentials{}
	}
	if !s.passwordConfig.VerifyPassword(req.Password, record.PasswordHash) {
		return nil, &ErrInvalidCredentials{}
	}

	if err := s.db.TouchLastLogin(ctx, record.ID); err != nil {
		s.logger.Warn("failed to record login", zap.String("user_id", record.ID.String()), zap.Error(err))
	} else {
		now := s.now()
		record.LastLoginAt = &now
	}

	return record.Public(), nil
}

// LoadUser returns the public view of an account, or nil when it does not exist.
// It implements middleware.UserLoader.
func (s *UserService) LoadUser(ctx context.Context, id uuid.UUID) (*types.User, error) {
	record, err := s.db.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	return record.Public(), nil
}

// GetUser returns the public view of an account or ErrUserNotFound.
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*types.User, error) {
	user, err := s.LoadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &ErrUserNotFound{UserID: id}
	}
	return user, nil
}

// UpdatePassword updates a user's password
func (s *UserService) UpdatePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	record, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if record == nil {
		return &ErrUserNotFound{UserID: userID}
	}

	if !s.passwordConfig.VerifyPassword(currentPassword, record.PasswordHash) {
		return &ErrPasswordMismatch{}
	}

	newPasswordHash, err := s.passwordConfig.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.db.UpdatePassword(ctx, userID, newPasswordHash)
}

// DeleteAccount removes an account together with its applications and resumes.
func (s *UserService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	return s.db.DeleteUser(ctx, userID)
}

// modify applies fn to an account under the store's row lock and returns the result.
func (s *UserService) modify(ctx context.Context, userID uuid.UUID, fn func(u *db.UserRecord) error) (*types.User, error) {
	updated, err := s.db.ModifyUser(ctx, userID, fn)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, &ErrUserNotFound{UserID: userID}
	}
	return updated.Public(), nil
}

// UpdateBasic replaces the common profile fields.
func (s *UserService) UpdateBasic(ctx context.Context, userID uuid.UUID, req *types.UpdateBasicProfileRequest) (*types.User, error) {
	return s.modify(ctx, userID, func(u *db.UserRecord) error {
		p := &u.Profile
		p.FirstName = req.FirstName
		p.LastName = req.LastName
		p.Phone = req.Phone
		p.DateOfBirth = req.DateOfBirth
		p.Gender = req.Gender
		p.Address = req.Address
		p.SocialLinks = req.SocialLinks
		return nil
	})
}

// UpdateJobSeeker replaces the job-seeker sub-document. Resume data from earlier uploads
// is kept.
func (s *UserService) UpdateJobSeeker(ctx context.Context, userID uuid.UUID, req *types.UpdateJobSeekerRequest) (*types.User, error) {
	return s.modify(ctx, userID, func(u *db.UserRecord) error {
		previous := u.Profile.EnsureJobSeeker()
		u.Profile.JobSeeker = &types.JobSeekerProfile{
			Skills:             nonNil(req.Skills),
			Experience:         withExperienceIDs(req.Experience),
			Education:          withEducationIDs(req.Education),
			Certifications:     nonNil(req.Certifications),
			Projects:           nonNil(req.Projects),
			ResumePath:         previous.ResumePath,
			ParsedResume:       previous.ParsedResume,
			PreferredJobTypes:  nonNil(req.PreferredJobTypes),
			PreferredLocations: nonNil(req.PreferredLocations),
			ExpectedSalary:     req.ExpectedSalary,
			Availability:       req.Availability,
			WorkAuthorization:  req.WorkAuthorization,
			Bio:                req.Bio,
		}
		return nil
	})
}

// UpdateRecruiter replaces the recruiter sub-document. The stored company logo is kept
// when the request carries none.
func (s *UserService) UpdateRecruiter(ctx context.Context, userID uuid.UUID, req *types.RecruiterProfile) (*types.User, error) {
	return s.modify(ctx, userID, func(u *db.UserRecord) error {
		next := *req
		if next.CompanyLogo == "" {
			next.CompanyLogo = u.Profile.EnsureRecruiter().CompanyLogo
		}
		next.Specializations = nonNil(next.Specializations)
		u.Profile.Recruiter = &next
		return nil
	})
}

// UpdateUser applies the general self-service update. Resume data is never replaced
// through it.
func (s *UserService) UpdateUser(ctx context.Context, userID uuid.UUID, req *types.UpdateUserRequest) (*types.User, error) {
	return s.modify(ctx, userID, func(u *db.UserRecord) error {
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return &ErrValidation{Field: "name", Message: "required"}
			}
			u.Name = name
		}
		if req.Profile == nil {
			return nil
		}

		next := *req.Profile
		if previous := u.Profile.JobSeeker; previous != nil {
			js := next.EnsureJobSeeker()
			js.ResumePath = previous.ResumePath
			js.ParsedResume = previous.ParsedResume
			js.Experience = withExperienceIDs(js.Experience)
			js.Education = withEducationIDs(js.Education)
		}
		u.Profile = next
		return nil
	})
}

// AddExperience appends an experience entry with a generated ID.
func (s *UserService) AddExperience(ctx context.Context, userID uuid.UUID, in *types.ExperienceInput) (*types.User, error) {
	return s.modify(ctx, userID, func(u *db.UserRecord) error {
		js := u.Profile.EnsureJobSeeker()
		js.Experience = append(js.Experience, experienceFromInput(uuid.New(), in))
		return nil
	})
}

// UpdateExperience replaces one experience entry.
func (s *UserService) UpdateExperience(ctx context.Context, userID, entryID uuid.UUID, in *types.ExperienceInput) (*types.User, error) {
	return s.modify(ctx, userID, func(u *db.UserRecord) error {
		js := u.Profile.EnsureJobSeeker()
		i := slices.IndexFunc(js.Experience, func(e types.Experience) bool { return e.ID == entryID })
		if i < 0 {
			return &ErrEntryNotFound{Kind: "Experience", ID: entryID.String()}
		}
		js.Experience[i] = experienceFromInput(entryID, in)
		return nil
	})
}

// DeleteExperience removes one experience entry.
func (s *UserService) DeleteExperience(ctx context.Context, userID, entryID uuid.UUID) (*types.User, error) {
	return s.modify(ctx, userID, func(u *db.UserRecord) error {
		js := u.Profile.EnsureJobSeeker()
		i := slices.IndexFunc(js.Experience, func(e types.Experience) bool { return e.ID == entryID })
		if i < 0 {
			return &ErrEntryNotFound{Kind: "Experience", ID: entryID.String()}
		}
		js.Experience = slices.Delete(js.Experience, i, i+1)
		return nil
	})
}

// AddEducation appends an education entry with a generated ID.
func (s *UserService) AddEducation(ctx context.Context, userID uuid.UUID, in *types.EducationInput) (*types.User, error) {
	return s.modify(ctx, userID, func(u *db.UserRecord) error {
		js := u.Profile.EnsureJobSeeker()
		js.Education = append(js.Education, types.Education{
			ID:           uuid.New(),
			Institution:  in.Institution,
			Degree:       in.Degree,
			FieldOfStudy: in.FieldOfStudy,
			StartDate:    in.StartDate,
			EndDate:      in.EndDate,
			GPA:          in.GPA,
			Description:  in.Description,
		})
		return nil
	})
}

// SetProfilePicture records the path of an uploaded profile picture.
func (s *UserService) SetProfilePicture(ctx context.Context, userID uuid.UUID, path string) (*types.User, error) {
	return s.modify(ctx, userID, func(u *db.UserRecord) error {
		u.Profile.ProfilePicture = path
		return nil
	})
}

// SetCompanyLogo records the path of an uploaded company logo.
func (s *UserService) SetCompanyLogo(ctx context.Context, userID uuid.UUID, path string) (*types.User, error) {
	return s.modify(ctx, userID, func(u *db.UserRecord) error {
		u.Profile.EnsureRecruiter().CompanyLogo = path
		return nil
	})
}

// AttachResume records an uploaded resume and its parse results. Explicit skills are left
// untouched.
func (s *UserService) AttachResume(ctx context.Context, userID uuid.UUID, path string, parsed *types.ParsedResume) (*types.User, error) {
	return s.modify(ctx, userID, func(u *db.UserRecord) error {
		js := u.Profile.EnsureJobSeeker()
		js.ResumePath = path
		js.ParsedResume = parsed
		return nil
	})
}

// LoadCandidate returns the skill lists the recommender resolves from.
// It implements recommend.CandidateLoader.
func (s *UserService) LoadCandidate(ctx context.Context, userID uuid.UUID) (recommend.Candidate, error) {
	record, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		return recommend.Candidate{}, err
	}
	if record == nil {
		return recommend.Candidate{}, &ErrUserNotFound{UserID: userID}
	}

	var candidate recommend.Candidate
	if js := record.Profile.JobSeeker; js != nil {
		candidate.ExplicitSkills = js.Skills
		if js.ParsedResume != nil {
			candidate.ResumeSkills = js.ParsedResume.Skills
		}
	}
	return candidate, nil
}

func experienceFromInput(id uuid.UUID, in *types.ExperienceInput) types.Experience {
	return types.Experience{
		ID:          id,
		Company:     in.Company,
		Position:    in.Position,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Current:     in.Current,
		Description: in.Description,
		Location:    in.Location,
	}
}

func withExperienceIDs(entries []types.Experience) []types.Experience {
	out := nonNil(entries)
	for i := range out {
		if out[i].ID == uuid.Nil {
			out[i].ID = uuid.New()
		}
	}
	return out
}

func withEducationIDs(entries []types.Education) []types.Education {
	out := nonNil(entries)
	for i := range out {
		if out[i].ID == uuid.Nil {
			out[i].ID = uuid.New()
		}
	}
	return out
}

func nonNil[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return values
}
