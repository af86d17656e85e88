package planning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/productforge-backend/internal/domain"
	"github.com/yungbote/productforge-backend/internal/platform/dbctx"
	"github.com/yungbote/productforge-backend/internal/platform/logger"
)

// RevisionRepo has no update. Deletes exist only for artifact cascades.
type RevisionRepo interface {
	Create(dbc dbctx.Context, rows []*types.Revision) ([]*types.Revision, error)
	ListByArtifact(dbc dbctx.Context, kind types.ArtifactKind, artifactID uuid.UUID) ([]*types.Revision, error)
	CountByArtifacts(dbc dbctx.Context, kind types.ArtifactKind, artifactIDs []uuid.UUID) (int64, error)
	DeleteByArtifacts(dbc dbctx.Context, kind types.ArtifactKind, artifactIDs []uuid.UUID) error
}

type revisionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRevisionRepo(db *gorm.DB, baseLog *logger.Logger) RevisionRepo {
	return &revisionRepo{db: db, log: baseLog.With("repo", "RevisionRepo")}
}

func (r *revisionRepo) Create(dbc dbctx.Context, rows []*types.Revision) ([]*types.Revision, error) {
	if len(rows) == 0 {
		return []*types.Revision{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByArtifact returns the audit trail oldest first.
func (r *revisionRepo) ListByArtifact(dbc dbctx.Context, kind types.ArtifactKind, artifactID uuid.UUID) ([]*types.Revision, error) {
	var out []*types.Revision
	if artifactID == uuid.Nil {
		return out, nil
	}
	err := dbc.DB(r.db).
		Where("artifact_kind = ? AND artifact_id = ?", kind, artifactID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *revisionRepo) CountByArtifacts(dbc dbctx.Context, kind types.ArtifactKind, artifactIDs []uuid.UUID) (int64, error) {
	var n int64
	if len(artifactIDs) == 0 {
		return 0, nil
	}
	err := dbc.DB(r.db).Model(&types.Revision{}).
		Where("artifact_kind = ? AND artifact_id IN ?", kind, artifactIDs).
		Count(&n).Error
	return n, err
}

func (r *revisionRepo) DeleteByArtifacts(dbc dbctx.Context, kind types.ArtifactKind, artifactIDs []uuid.UUID) error {
	if len(artifactIDs) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Where("artifact_kind = ? AND artifact_id IN ?", kind, artifactIDs).
		Delete(&types.Revision{}).Error
}
