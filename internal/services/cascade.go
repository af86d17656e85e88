package services

import (
	"github.com/google/uuid"

	"github.com/yungbote/productforge-backend/internal/data/repos"
	types "github.com/yungbote/productforge-backend/internal/domain"
	"github.com/yungbote/productforge-backend/internal/platform/dbctx"
)

// cascade deletes bottom-up: revisions of each level go before its rows.
// Callers run it inside one transaction.
type cascade struct {
	r repos.Repos
}

func (c cascade) requirements(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if err := c.r.Revision.DeleteByArtifacts(dbc, types.KindRequirement, ids); err != nil {
		return err
	}
	return c.r.Requirement.FullDeleteByIDs(dbc, ids)
}

func (c cascade) stories(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	reqIDs, err := c.r.Requirement.ListIDsByStoryIDs(dbc, ids)
	if err != nil {
		return err
	}
	if err := c.requirements(dbc, reqIDs); err != nil {
		return err
	}
	if err := c.r.Revision.DeleteByArtifacts(dbc, types.KindUserStory, ids); err != nil {
		return err
	}
	return c.r.UserStory.FullDeleteByIDs(dbc, ids)
}

func (c cascade) epics(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	storyIDs, err := c.r.UserStory.ListIDsByEpicIDs(dbc, ids)
	if err != nil {
		return err
	}
	if err := c.stories(dbc, storyIDs); err != nil {
		return err
	}
	if err := c.r.Revision.DeleteByArtifacts(dbc, types.KindEpic, ids); err != nil {
		return err
	}
	return c.r.Epic.FullDeleteByIDs(dbc, ids)
}

// products also removes stories that never had an epic, the backlog and
// personas.
func (c cascade) products(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	storyIDs, err := c.r.UserStory.ListIDsByProductIDs(dbc, ids)
	if err != nil {
		return err
	}
	if err := c.stories(dbc, storyIDs); err != nil {
		return err
	}
	epicIDs, err := c.r.Epic.ListIDsByProductIDs(dbc, ids)
	if err != nil {
		return err
	}
	if err := c.epics(dbc, epicIDs); err != nil {
		return err
	}
	backlogIDs, err := c.r.Backlog.ListIDsByProductIDs(dbc, ids)
	if err != nil {
		return err
	}
	if len(backlogIDs) > 0 {
		if err := c.r.Revision.DeleteByArtifacts(dbc, types.KindBacklog, backlogIDs); err != nil {
			return err
		}
		if err := c.r.Backlog.FullDeleteByIDs(dbc, backlogIDs); err != nil {
			return err
		}
	}
	if err := c.r.Persona.FullDeleteByProductIDs(dbc, ids); err != nil {
		return err
	}
	return c.r.Product.FullDeleteByIDs(dbc, ids)
}
