package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/uniplex/academic-api/internal/models"
	appErrors "github.com/uniplex/academic-api/pkg/errors"
)

// ProfileService resolves the role-specific profile behind a user account.
type ProfileService struct {
	db     *sqlx.DB
	stores storesFactory
	users  userRepository
	logger *zap.Logger
}

// NewProfileService constructs a ProfileService instance.
func NewProfileService(db *sqlx.DB, users userRepository, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{db: db, stores: NewStores, users: users, logger: logger}
}

// ForUser returns the profile matching the user's role. Staff roles carry
// no group or teaching payload and are synthesised from the account row.
func (s *ProfileService) ForUser(ctx context.Context, userID string) (models.Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	st := s.stores(s.db)
	switch user.Role {
	case models.RoleStudent:
		student, err := st.Students.GetByUserID(ctx, userID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
		}
		if student == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return student, nil
	case models.RoleTeacher:
		teacher, err := st.Students.GetTeacherByUserID(ctx, userID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher profile")
		}
		if teacher == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher profile not found")
		}
		return teacher, nil
	default:
		return &models.StaffProfile{
			ID:       user.ID,
			UserID:   user.ID,
			Role:     user.Role,
			FullName: user.FullName,
		}, nil
	}
}

// Student returns the student profile behind an account, for endpoints
// that only make sense for students.
func (s *ProfileService) Student(ctx context.Context, userID string) (*models.StudentProfile, error) {
	st := s.stores(s.db)
	student, err := st.Students.GetByUserID(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}
	if student == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
	}
	return student, nil
}

// GroupRoster returns the active students of a group.
func (s *ProfileService) GroupRoster(ctx context.Context, groupID string) ([]models.StudentProfile, error) {
	st := s.stores(s.db)
	group, err := st.Structure.GetGroup(ctx, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	if group == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
	}
	roster, err := st.Students.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list group students")
	}
	return roster, nil
}
