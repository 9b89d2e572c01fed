package lead

import (
	"fmt"
	"time"

	"github.com/estatecrm/api/internal/apperror"
	"github.com/estatecrm/api/internal/auth"
	"github.com/estatecrm/api/internal/campaign"
	"github.com/estatecrm/api/internal/interaction"
	"github.com/estatecrm/api/internal/pipeline"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service is the lead lifecycle engine: stage transitions, archiving and the
// convert-back path. Every operation takes the acting user explicitly.
type Service struct {
	Repo            Repository
	CampaignRepo    campaign.Repository
	PipelineRepo    pipeline.Repository
	InteractionRepo interaction.Repository
	Logger          *zap.Logger
}

func NewService() *Service {
	return &Service{
		Repo:            NewRepository(),
		CampaignRepo:    campaign.NewRepository(),
		PipelineRepo:    pipeline.NewRepository(),
		InteractionRepo: interaction.NewRepository(),
		Logger:          zap.NewNop(),
	}
}

// currentStageName resolves the lead's stage name for interaction text. A
// stage that fails to resolve means the lead references a missing stage,
// which is worth surfacing in the logs.
func (s *Service) currentStageName(db *gorm.DB, l *Lead) string {
	stage, err := s.PipelineRepo.FindStage(db, l.CurrentStageID)
	if err != nil {
		s.Logger.Warn("current stage lookup failed",
			zap.Uint("leadId", l.ID),
			zap.Uint("stageId", l.CurrentStageID),
			zap.Error(err))
		return "unknown"
	}
	return stage.Name
}

// loadForWrite resolves the campaign, checks the actor's access, and loads
// the lead. Preconditions are checked in this order and each failure is
// reported distinctly.
func (s *Service) loadForWrite(db *gorm.DB, actor auth.Actor, campaignID, leadID uint) (*campaign.Campaign, *Lead, error) {
	c, err := s.CampaignRepo.FindByID(db, campaignID)
	if err != nil {
		return nil, nil, apperror.NotFound("campaign not found")
	}
	if !campaign.CanAccess(c, actor) {
		return nil, nil, apperror.AccessDenied("access denied to campaign")
	}
	l, err := s.Repo.FindInCampaign(db, campaignID, leadID)
	if err != nil {
		return nil, nil, apperror.NotFound("lead not found")
	}
	return c, l, nil
}

// MoveStage moves the lead to targetStageID and logs a STAGE_CHANGE
// interaction, atomically. Cross-pipeline stages are always rejected. Moving
// a lead to the stage it already occupies is allowed and still logs.
func (s *Service) MoveStage(db *gorm.DB, actor auth.Actor, campaignID, leadID, targetStageID uint) (*Lead, error) {
	c, l, err := s.loadForWrite(db, actor, campaignID, leadID)
	if err != nil {
		return nil, err
	}

	target, err := s.PipelineRepo.FindStage(db, targetStageID)
	if err != nil {
		return nil, apperror.NotFound("stage not found")
	}
	if target.PipelineID != c.PipelineID {
		return nil, apperror.Validation("stage does not belong to the campaign's pipeline")
	}

	oldName := s.currentStageName(db, l)

	err = db.Transaction(func(tx *gorm.DB) error {
		l.CurrentStageID = target.ID
		if err := s.Repo.Save(tx, l); err != nil {
			return err
		}
		return s.InteractionRepo.Create(tx, &interaction.Interaction{
			LeadID:  l.ID,
			UserID:  actor.ID,
			Type:    interaction.TypeStageChange,
			Content: fmt.Sprintf("Stage changed from %q to %q", oldName, target.Name),
		})
	})
	if err != nil {
		return nil, apperror.Internal("could not move lead")
	}
	return l, nil
}

// Archive hides the lead from active views without touching its stage. The
// reason is optional.
func (s *Service) Archive(db *gorm.DB, actor auth.Actor, campaignID, leadID uint, reason *string) (*Lead, error) {
	_, l, err := s.loadForWrite(db, actor, campaignID, leadID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = db.Transaction(func(tx *gorm.DB) error {
		l.IsArchived = true
		l.ArchivedAt = &now
		l.ArchivedReason = reason
		if err := s.Repo.Save(tx, l); err != nil {
			return err
		}
		content := "Lead archived"
		if reason != nil && *reason != "" {
			content = fmt.Sprintf("Lead archived: %s", *reason)
		}
		return s.InteractionRepo.Create(tx, &interaction.Interaction{
			LeadID:  l.ID,
			UserID:  actor.ID,
			Type:    interaction.TypeNote,
			Content: content,
		})
	})
	if err != nil {
		return nil, apperror.Internal("could not archive lead")
	}
	return l, nil
}

// Unarchive clears the archive fields. The stage never changes here; use
// ConvertToLead to unarchive and move in one step.
func (s *Service) Unarchive(db *gorm.DB, actor auth.Actor, campaignID, leadID uint) (*Lead, error) {
	_, l, err := s.loadForWrite(db, actor, campaignID, leadID)
	if err != nil {
		return nil, err
	}

	l.IsArchived = false
	l.ArchivedAt = nil
	l.ArchivedReason = nil
	if err := s.Repo.Save(db, l); err != nil {
		return nil, apperror.Internal("could not unarchive lead")
	}
	return l, nil
}

// ConvertToLead moves an archived lead back onto the board: unarchive plus a
// stage transition to a non-final stage, as one step. Two interactions are
// written, a NOTE and a STAGE_CHANGE.
func (s *Service) ConvertToLead(db *gorm.DB, actor auth.Actor, campaignID, leadID, targetStageID uint) (*Lead, error) {
	c, l, err := s.loadForWrite(db, actor, campaignID, leadID)
	if err != nil {
		return nil, err
	}

	if !l.IsArchived {
		return nil, apperror.Conflict("lead is not archived")
	}

	target, err := s.PipelineRepo.FindStage(db, targetStageID)
	if err != nil {
		return nil, apperror.NotFound("stage not found")
	}
	if target.PipelineID != c.PipelineID {
		return nil, apperror.Validation("stage does not belong to the campaign's pipeline")
	}
	if target.IsFinal {
		return nil, apperror.Validation("cannot convert into a final stage")
	}

	oldName := s.currentStageName(db, l)

	err = db.Transaction(func(tx *gorm.DB) error {
		l.IsArchived = false
		l.ArchivedAt = nil
		l.ArchivedReason = nil
		l.CurrentStageID = target.ID
		if err := s.Repo.Save(tx, l); err != nil {
			return err
		}
		note := &interaction.Interaction{
			LeadID:  l.ID,
			UserID:  actor.ID,
			Type:    interaction.TypeNote,
			Content: fmt.Sprintf("Converted back from archived, was in stage %q", oldName),
		}
		if err := s.InteractionRepo.Create(tx, note); err != nil {
			return err
		}
		return s.InteractionRepo.Create(tx, &interaction.Interaction{
			LeadID:  l.ID,
			UserID:  actor.ID,
			Type:    interaction.TypeStageChange,
			Content: fmt.Sprintf("Stage changed from %q to %q", oldName, target.Name),
		})
	})
	if err != nil {
		return nil, apperror.Internal("could not convert lead")
	}
	return l, nil
}
